// Package cash implements the "pay with cash" checkout method: a per-store
// toggle and a staff action that marks an invoice as settled.
package cash

import (
	"context"
	"errors"
	"fmt"

	"btcpay-plugins/internal/database"
	"btcpay-plugins/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const PaymentMethodID = "CASH"

var ErrInvoiceNotFound = errors.New("invoice not found")

// PaymentMethodConfig is the per-store config record of the cash method. It has
// no settings yet; its presence marks the method as configured for the store.
type PaymentMethodConfig struct{}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Enabled reports whether cash is offered at checkout for the store.
func Enabled(store *models.Store) bool {
	return !store.GetBlob().IsExcluded(PaymentMethodID)
}

// SetEnabled flips the store's exclusion entry for cash, makes sure a method
// config exists and persists the store.
func (s *Service) SetEnabled(ctx context.Context, store *models.Store, enabled bool, actor string) error {
	blob := store.GetBlob()

	var cfg PaymentMethodConfig
	found, err := blob.PaymentMethodConfig(PaymentMethodID, &cfg)
	if err != nil {
		logrus.WithError(err).WithField("store_id", store.ID).Warn("discarding unreadable cash method config")
		found = false
	}
	if !found {
		if err := blob.SetPaymentMethodConfig(PaymentMethodID, PaymentMethodConfig{}); err != nil {
			return fmt.Errorf("set cash method config: %w", err)
		}
	}

	blob.SetExcluded(PaymentMethodID, !enabled)
	store.SetBlob(blob)

	if err := s.db.WithContext(ctx).Model(store).Update("store_blob", store.Blob).Error; err != nil {
		return fmt.Errorf("update store: %w", err)
	}

	action := "cash_disabled"
	if enabled {
		action = "cash_enabled"
	}
	database.CreateAuditLog(ctx, s.db, models.AuditLog{
		StoreID:  store.ID,
		Actor:    actor,
		Entity:   "store",
		EntityID: store.ID,
		Action:   action,
	})
	return nil
}

type MarkResult int

const (
	// MarkSettled: the invoice is now settled.
	MarkSettled MarkResult = iota
	// MarkOtherStore: the invoice belongs to another store; nothing changed.
	MarkOtherStore
	// MarkRejected: the invoice status does not allow settling; nothing changed.
	MarkRejected
)

// MarkAsPaid settles an invoice of the current store. The invoice is returned
// unless it belongs to another store.
func (s *Service) MarkAsPaid(ctx context.Context, storeID, invoiceID, actor string) (MarkResult, *models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.WithContext(ctx).First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MarkRejected, nil, ErrInvoiceNotFound
		}
		return MarkRejected, nil, fmt.Errorf("load invoice: %w", err)
	}
	if invoice.StoreID != storeID {
		return MarkOtherStore, nil, nil
	}

	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND status IN ?", invoice.ID, models.SettleableStatuses).
		Update("status", models.InvoiceSettled)
	if res.Error != nil {
		return MarkRejected, &invoice, fmt.Errorf("settle invoice: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		logrus.WithFields(logrus.Fields{
			"store_id":   storeID,
			"invoice_id": invoice.ID,
			"status":     invoice.Status,
		}).Warn("mark as paid rejected")
		return MarkRejected, &invoice, nil
	}

	database.CreateAuditLog(ctx, s.db, models.AuditLog{
		StoreID:  storeID,
		Actor:    actor,
		Entity:   "invoice",
		EntityID: invoice.ID,
		Action:   "mark_settled",
		Details:  "from " + string(invoice.Status),
	})
	invoice.Status = models.InvoiceSettled
	return MarkSettled, &invoice, nil
}
