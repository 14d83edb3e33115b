package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayrollInvoiceState string

const (
	PayrollAwaitingApproval PayrollInvoiceState = "awaiting_approval"
	PayrollApproved         PayrollInvoiceState = "approved"
	PayrollInProgress       PayrollInvoiceState = "in_progress"
	PayrollCompleted        PayrollInvoiceState = "completed"
	PayrollCancelled        PayrollInvoiceState = "cancelled"
)

var payrollTransitions = map[PayrollInvoiceState][]PayrollInvoiceState{
	PayrollAwaitingApproval: {PayrollApproved, PayrollCancelled},
	PayrollApproved:         {PayrollInProgress, PayrollCompleted, PayrollCancelled},
	PayrollInProgress:       {PayrollCompleted, PayrollCancelled},
	PayrollCompleted:        nil,
	PayrollCancelled:        nil,
}

func ParsePayrollInvoiceState(s string) (PayrollInvoiceState, bool) {
	st := PayrollInvoiceState(s)
	_, ok := payrollTransitions[st]
	return st, ok
}

func (s PayrollInvoiceState) CanTransitionTo(next PayrollInvoiceState) bool {
	return slices.Contains(payrollTransitions[s], next)
}

func (s PayrollInvoiceState) IsTerminal() bool {
	return s == PayrollCompleted || s == PayrollCancelled
}

// Deletable reports whether the submitter may still remove the invoice.
func (s PayrollInvoiceState) Deletable() bool {
	return s == PayrollAwaitingApproval
}

func (s PayrollInvoiceState) Label() string {
	switch s {
	case PayrollAwaitingApproval:
		return "Awaiting Approval"
	case PayrollApproved:
		return "Approved"
	case PayrollInProgress:
		return "In Progress"
	case PayrollCompleted:
		return "Completed"
	case PayrollCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// PayrollInvoice is a payout request submitted by a PayrollUser.
//
// ActiveDestination mirrors Destination while the invoice is not terminal and is
// NULL otherwise; its unique index enforces one open invoice per address.
type PayrollInvoice struct {
	ID                string              `gorm:"primaryKey;size:36"`
	UserID            string              `gorm:"size:36;not null;index"`
	User              PayrollUser         `gorm:"foreignKey:UserID"`
	CreatedAt         time.Time           `gorm:"index"`
	UpdatedAt         time.Time
	Destination       string              `gorm:"size:255;not null"`
	ActiveDestination *string             `gorm:"size:255;uniqueIndex"`
	Amount            decimal.Decimal     `gorm:"type:numeric(20,8);not null"`
	Currency          string              `gorm:"size:10;not null"`
	PurchaseOrder     string              `gorm:"size:255"`
	Description       string              `gorm:"type:text"`
	InvoiceFilename   string              `gorm:"size:36"` // StoredFile.ID
	TxnID             string              `gorm:"size:255"`
	State             PayrollInvoiceState `gorm:"type:varchar(32);not null;index"`
	IsArchived        bool                `gorm:"not null;default:false"`
}

func (PayrollInvoice) TableName() string {
	return "payroll_invoices"
}

func (i *PayrollInvoice) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.State == "" {
		i.State = PayrollAwaitingApproval
	}
	i.syncActiveDestination()
	return nil
}

func (i *PayrollInvoice) syncActiveDestination() {
	if i.State.IsTerminal() {
		i.ActiveDestination = nil
		return
	}
	d := i.Destination
	i.ActiveDestination = &d
}

// SetState moves the invoice to next and keeps ActiveDestination in step.
// Callers check CanTransitionTo first.
func (i *PayrollInvoice) SetState(next PayrollInvoiceState) {
	i.State = next
	i.syncActiveDestination()
}
