package models

import (
	"strconv"
	"time"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	StoreID string `gorm:"size:64;index"`
	Actor   string `gorm:"size:100;not null"` // "admin:<id>", "payroll:<id>", "cli"

	Entity   string `gorm:"size:50;not null"` // "payroll_invoice", "payroll_user", "store", "invoice"
	EntityID string `gorm:"size:64"`
	Action   string `gorm:"size:50;not null"`
	Details  string `gorm:"type:text"`
}

const ActorCLI = "cli"

func AdminActor(userID uint) string {
	return "admin:" + strconv.FormatUint(uint64(userID), 10)
}

func PayrollActor(userID string) string {
	return "payroll:" + userID
}
