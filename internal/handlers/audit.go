package handlers

import (
	"net/http"

	"btcpay-plugins/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const auditPageSize = 200

// ListAuditLogs shows the latest audit entries, optionally narrowed by ?store=.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Order("created_at desc").Limit(auditPageSize)
	storeID := c.Query("store")
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	}

	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		logrus.WithError(err).Error("failed to list audit logs")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	render(c, http.StatusOK, "audit_list.html", gin.H{
		"logs":        logs,
		"storeFilter": storeID,
	})
}
