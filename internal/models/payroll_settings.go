package models

import "time"

const DefaultCurrency = "USD"

// PayrollSettings is the per-store payroll configuration.
type PayrollSettings struct {
	StoreID                  string `gorm:"primaryKey;size:64"`
	PurchaseOrdersRequired   bool   `gorm:"not null;default:false"`
	MakeInvoiceFilesOptional bool   `gorm:"not null;default:false"`
	DefaultCurrency          string `gorm:"size:10"`
	UpdatedAt                time.Time
}

func (PayrollSettings) TableName() string {
	return "payroll_settings"
}

// PayrollGlobalSettings is a single-row table with server-wide payroll settings.
type PayrollGlobalSettings struct {
	ID uint `gorm:"primaryKey"`
	// host user that uploaded invoice files are attributed to
	AdminUserID uint
	UpdatedAt   time.Time
}

func (PayrollGlobalSettings) TableName() string {
	return "payroll_global_settings"
}

const PayrollGlobalSettingsID = 1
