package cash

import (
	"context"
	"testing"

	"btcpay-plugins/internal/models"
	"btcpay-plugins/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func reloadStore(t *testing.T, db *gorm.DB, id string) *models.Store {
	t.Helper()
	var s models.Store
	require.NoError(t, db.First(&s, "id = ?", id).Error)
	return &s
}

func createInvoice(t *testing.T, db *gorm.DB, id, storeID string, status models.InvoiceStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.Invoice{
		ID:       id,
		StoreID:  storeID,
		Amount:   decimal.NewFromInt(25),
		Currency: "USD",
		Status:   status,
	}).Error)
}

func invoiceStatus(t *testing.T, db *gorm.DB, id string) models.InvoiceStatus {
	t.Helper()
	var inv models.Invoice
	require.NoError(t, db.First(&inv, "id = ?", id).Error)
	return inv.Status
}

func TestToggleRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	store := testutil.CreateStore(t, db, "store-a", "Store A")

	assert.True(t, Enabled(store))

	require.NoError(t, svc.SetEnabled(ctx, store, false, "admin:1"))
	reloaded := reloadStore(t, db, store.ID)
	assert.False(t, Enabled(reloaded))
	assert.Contains(t, reloaded.GetBlob().ExcludedPaymentMethods, PaymentMethodID)

	require.NoError(t, svc.SetEnabled(ctx, reloaded, true, "admin:1"))
	reloaded = reloadStore(t, db, store.ID)
	assert.True(t, Enabled(reloaded))
	assert.NotContains(t, reloaded.GetBlob().ExcludedPaymentMethods, PaymentMethodID)

	var cfg PaymentMethodConfig
	found, err := reloaded.GetBlob().PaymentMethodConfig(PaymentMethodID, &cfg)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "USD", reloaded.GetBlob().DefaultCurrency)
}

func TestToggleKeepsOtherExclusions(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	store := testutil.CreateStore(t, db, "store-a", "Store A")
	blob := store.GetBlob()
	blob.SetExcluded("BTC-LN", true)
	store.SetBlob(blob)
	require.NoError(t, db.Save(store).Error)

	require.NoError(t, svc.SetEnabled(context.Background(), store, false, "admin:1"))
	require.NoError(t, svc.SetEnabled(context.Background(), store, true, "admin:1"))

	reloaded := reloadStore(t, db, store.ID)
	assert.Equal(t, []string{"BTC-LN"}, reloaded.GetBlob().ExcludedPaymentMethods)
}

func TestMarkAsPaid(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	testutil.CreateStore(t, db, "store-a", "Store A")
	testutil.CreateStore(t, db, "store-b", "Store B")
	createInvoice(t, db, "inv-new", "store-a", models.InvoiceNew)
	createInvoice(t, db, "inv-settled", "store-a", models.InvoiceSettled)
	createInvoice(t, db, "inv-b", "store-b", models.InvoiceNew)

	res, inv, err := svc.MarkAsPaid(ctx, "store-a", "inv-new", "admin:1")
	require.NoError(t, err)
	assert.Equal(t, MarkSettled, res)
	require.NotNil(t, inv)
	assert.Equal(t, models.InvoiceSettled, inv.Status)
	assert.Equal(t, models.InvoiceSettled, invoiceStatus(t, db, "inv-new"))

	res, inv, err = svc.MarkAsPaid(ctx, "store-a", "inv-b", "admin:1")
	require.NoError(t, err)
	assert.Equal(t, MarkOtherStore, res)
	assert.Nil(t, inv)
	assert.Equal(t, models.InvoiceNew, invoiceStatus(t, db, "inv-b"))

	res, inv, err = svc.MarkAsPaid(ctx, "store-a", "inv-settled", "admin:1")
	require.NoError(t, err)
	assert.Equal(t, MarkRejected, res)
	assert.NotNil(t, inv)

	_, _, err = svc.MarkAsPaid(ctx, "store-a", "missing", "admin:1")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}
