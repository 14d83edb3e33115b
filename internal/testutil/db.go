package testutil

import (
	"context"
	"fmt"
	"testing"

	"btcpay-plugins/internal/auth"
	"btcpay-plugins/internal/database"
	"btcpay-plugins/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns an isolated in-memory sqlite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func CreateStore(t *testing.T, db *gorm.DB, id, name string) *models.Store {
	t.Helper()
	store := &models.Store{ID: id, Name: name}
	store.SetBlob(models.StoreBlob{DefaultCurrency: "USD"})
	require.NoError(t, db.Create(store).Error)
	return store
}

func CreatePayrollUser(t *testing.T, db *gorm.DB, storeID, email, password string, state models.PayrollUserState) *models.PayrollUser {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.PayrollUser{
		StoreID:  storeID,
		Email:    email,
		Password: hash,
		Name:     "Vendor " + email,
		State:    state,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateAdmin(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()
	admin, err := database.EnsureDefaultAdmin(context.Background(), db, username, password)
	require.NoError(t, err)
	require.NotNil(t, admin)
	return admin
}
