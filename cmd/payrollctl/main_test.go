package main

import (
	"bytes"
	"testing"

	"btcpay-plugins/internal/models"
	"btcpay-plugins/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func run(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func() (*gorm.DB, error) { return db, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStoresAndUsers(t *testing.T) {
	db := testutil.NewDB(t)

	out, err := run(t, db, "stores", "create", "store-a", "Store A", "--currency", "eur")
	require.NoError(t, err)
	assert.Contains(t, out, "created store store-a")

	out, err = run(t, db, "stores", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "store-a")
	assert.Contains(t, out, "currency=EUR")
	assert.Contains(t, out, "cash=true")

	out, err = run(t, db, "users", "create", "store-a", "Alice@Example.com", "Alice", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com")

	_, err = run(t, db, "users", "state", "store-a", "alice@example.com", "disabled")
	require.NoError(t, err)

	out, err = run(t, db, "users", "list", "store-a")
	require.NoError(t, err)
	assert.Contains(t, out, "disabled")

	_, err = run(t, db, "users", "state", "store-a", "alice@example.com", "gone")
	assert.ErrorContains(t, err, "unknown state")

	_, err = run(t, db, "users", "create", "missing", "bob@example.com", "Bob", "--password", "secret1")
	assert.Error(t, err)
}

func TestAdminCreate(t *testing.T) {
	db := testutil.NewDB(t)

	out, err := run(t, db, "admin", "create", "ops@example.com", "--password", "adminpass", "--role", "viewer")
	require.NoError(t, err)
	assert.Contains(t, out, "created viewer ops@example.com")

	_, err = run(t, db, "admin", "create", "x@example.com", "--password", "adminpass", "--role", "root")
	assert.ErrorContains(t, err, "unknown role")
}

func TestInvoiceWorkflow(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateStore(t, db, "store-a", "Store A")
	user := testutil.CreatePayrollUser(t, db, "store-a", "alice@example.com", "secret1", models.PayrollUserActive)
	inv := &models.PayrollInvoice{
		UserID:      user.ID,
		Destination: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		Amount:      decimal.NewFromInt(42),
		Currency:    "USD",
	}
	require.NoError(t, db.Create(inv).Error)

	out, err := run(t, db, "invoices", "list", "store-a")
	require.NoError(t, err)
	assert.Contains(t, out, inv.ID)

	_, err = run(t, db, "invoices", "archive", inv.ID)
	assert.Error(t, err)

	_, err = run(t, db, "invoices", "complete", inv.ID)
	assert.Error(t, err, "txn flag is required")

	out, err = run(t, db, "invoices", "approve", inv.ID)
	require.NoError(t, err)
	assert.Contains(t, out, models.PayrollApproved.Label())

	out, err = run(t, db, "invoices", "list", "store-a", "--state", "awaiting_approval")
	require.NoError(t, err)
	assert.NotContains(t, out, inv.ID)

	_, err = run(t, db, "invoices", "list", "store-a", "--state", "paid")
	assert.ErrorContains(t, err, "unknown state")

	out, err = run(t, db, "invoices", "complete", inv.ID, "--txn", "abc123")
	require.NoError(t, err)
	assert.Contains(t, out, models.PayrollCompleted.Label())

	_, err = run(t, db, "invoices", "cancel", inv.ID)
	assert.Error(t, err)

	_, err = run(t, db, "invoices", "archive", inv.ID)
	require.NoError(t, err)

	out, err = run(t, db, "invoices", "list", "store-a")
	require.NoError(t, err)
	assert.NotContains(t, out, inv.ID)

	out, err = run(t, db, "invoices", "list", "store-a", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, inv.ID)

	var reloaded models.PayrollInvoice
	require.NoError(t, db.First(&reloaded, "id = ?", inv.ID).Error)
	assert.Equal(t, "abc123", reloaded.TxnID)
	assert.Nil(t, reloaded.ActiveDestination)
}

func TestSettings(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateStore(t, db, "store-a", "Store A")

	out, err := run(t, db, "settings", "show", "store-a")
	require.NoError(t, err)
	assert.Contains(t, out, "purchase-orders-required=false")
	assert.Contains(t, out, "default-currency=USD")

	_, err = run(t, db, "settings", "set", "store-a", "--purchase-orders-required", "--currency", "chf")
	require.NoError(t, err)

	_, err = run(t, db, "settings", "set", "store-a", "--files-optional")
	require.NoError(t, err)

	out, err = run(t, db, "settings", "show", "store-a")
	require.NoError(t, err)
	assert.Contains(t, out, "purchase-orders-required=true")
	assert.Contains(t, out, "files-optional=true")
	assert.Contains(t, out, "default-currency=CHF")
}
