package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBlobExclusionToggle(t *testing.T) {
	var b StoreBlob
	assert.False(t, b.IsExcluded("CASH"))

	b.SetExcluded("CASH", true)
	b.SetExcluded("CASH", true)
	assert.Equal(t, []string{"CASH"}, b.ExcludedPaymentMethods)

	b.SetExcluded("BTC-CHAIN", true)
	b.SetExcluded("CASH", false)
	assert.False(t, b.IsExcluded("CASH"))
	assert.True(t, b.IsExcluded("BTC-CHAIN"))
}

func TestStoreBlobPaymentMethodConfig(t *testing.T) {
	type cfg struct {
		Note string `json:"note"`
	}
	var b StoreBlob

	var got cfg
	found, err := b.PaymentMethodConfig("CASH", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.SetPaymentMethodConfig("CASH", cfg{Note: "till"}))
	found, err = b.PaymentMethodConfig("CASH", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "till", got.Note)
}

func TestStoreBlobRoundTripOnStore(t *testing.T) {
	s := &Store{ID: "s1"}
	b := s.GetBlob()
	b.DefaultCurrency = "EUR"
	b.SetExcluded("CASH", true)
	s.SetBlob(b)

	assert.Equal(t, "EUR", s.GetBlob().DefaultCurrency)
	assert.True(t, s.GetBlob().IsExcluded("CASH"))
}

func TestInvoiceStatusCanMarkSettled(t *testing.T) {
	assert.True(t, InvoiceNew.CanMarkSettled())
	assert.True(t, InvoiceExpired.CanMarkSettled())
	assert.False(t, InvoiceSettled.CanMarkSettled())
}
