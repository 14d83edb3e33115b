package models

import (
	"encoding/json"
	"slices"
	"time"

	"gorm.io/datatypes"
)

// Store is a merchant account on the host platform. Every plugin row is scoped to one.
type Store struct {
	ID        string                        `gorm:"primaryKey;size:64"`
	Name      string                        `gorm:"size:255;not null"`
	Blob      datatypes.JSONType[StoreBlob] `gorm:"column:store_blob"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoreBlob holds loosely structured store settings, serialised as one JSON column.
type StoreBlob struct {
	DefaultCurrency        string                     `json:"defaultCurrency,omitempty"`
	ExcludedPaymentMethods []string                   `json:"excludedPaymentMethods,omitempty"`
	PaymentMethods         map[string]json.RawMessage `json:"paymentMethods,omitempty"`
}

func (s *Store) GetBlob() StoreBlob {
	return s.Blob.Data()
}

func (s *Store) SetBlob(b StoreBlob) {
	s.Blob = datatypes.NewJSONType(b)
}

// IsExcluded reports whether the payment method is hidden from checkout.
func (b StoreBlob) IsExcluded(paymentMethodID string) bool {
	return slices.Contains(b.ExcludedPaymentMethods, paymentMethodID)
}

func (b *StoreBlob) SetExcluded(paymentMethodID string, excluded bool) {
	idx := slices.Index(b.ExcludedPaymentMethods, paymentMethodID)
	switch {
	case excluded && idx < 0:
		b.ExcludedPaymentMethods = append(b.ExcludedPaymentMethods, paymentMethodID)
	case !excluded && idx >= 0:
		b.ExcludedPaymentMethods = slices.Delete(b.ExcludedPaymentMethods, idx, idx+1)
	}
}

// PaymentMethodConfig decodes the stored config for the method into dst.
// It returns false when no config is stored.
func (b StoreBlob) PaymentMethodConfig(paymentMethodID string, dst any) (bool, error) {
	raw, ok := b.PaymentMethods[paymentMethodID]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (b *StoreBlob) SetPaymentMethodConfig(paymentMethodID string, cfg any) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if b.PaymentMethods == nil {
		b.PaymentMethods = map[string]json.RawMessage{}
	}
	b.PaymentMethods[paymentMethodID] = raw
	return nil
}
