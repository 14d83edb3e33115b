package database

import (
	"context"

	"btcpay-plugins/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateAuditLog writes an audit entry. Failures are logged and swallowed.
func CreateAuditLog(ctx context.Context, db *gorm.DB, entry models.AuditLog) {
	if db == nil {
		return
	}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		logrus.WithError(err).
			WithFields(logrus.Fields{"entity": entry.Entity, "entity_id": entry.EntityID, "action": entry.Action}).
			Warn("failed to write audit log")
	}
}
