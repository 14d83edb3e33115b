package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the host checkout invoice status.
type InvoiceStatus string

const (
	InvoiceNew        InvoiceStatus = "new"
	InvoiceProcessing InvoiceStatus = "processing"
	InvoiceExpired    InvoiceStatus = "expired"
	InvoiceInvalid    InvoiceStatus = "invalid"
	InvoiceSettled    InvoiceStatus = "settled"
)

// SettleableStatuses lists the statuses from which staff may mark an invoice settled.
var SettleableStatuses = []InvoiceStatus{
	InvoiceNew,
	InvoiceProcessing,
	InvoiceExpired,
	InvoiceInvalid,
}

func (s InvoiceStatus) CanMarkSettled() bool {
	return slices.Contains(SettleableStatuses, s)
}

// Invoice is a host checkout invoice, distinct from PayrollInvoice.
type Invoice struct {
	ID              string          `gorm:"primaryKey;size:64"`
	StoreID         string          `gorm:"size:64;index;not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Currency        string          `gorm:"size:10;not null"`
	Status          InvoiceStatus   `gorm:"type:varchar(20);not null"`
	MerchantRefLink string          `gorm:"size:2048"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
