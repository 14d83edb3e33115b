package database_test

import (
	"context"
	"testing"

	"btcpay-plugins/internal/database"
	"btcpay-plugins/internal/models"
	"btcpay-plugins/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	first, err := database.EnsureDefaultAdmin(ctx, db, "admin@test.local", "Admin123!")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := database.EnsureDefaultAdmin(ctx, db, "other@test.local", "Other123!")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var gs models.PayrollGlobalSettings
	require.NoError(t, db.First(&gs, models.PayrollGlobalSettingsID).Error)
	assert.Equal(t, first.ID, gs.AdminUserID)
}

func TestEnsureDefaultAdminWithoutPassword(t *testing.T) {
	db := testutil.NewDB(t)

	admin, err := database.EnsureDefaultAdmin(context.Background(), db, "admin@test.local", "")
	require.NoError(t, err)
	assert.Nil(t, admin)
}

func TestCreateAuditLog(t *testing.T) {
	db := testutil.NewDB(t)

	database.CreateAuditLog(context.Background(), db, models.AuditLog{
		StoreID:  "store-1",
		Actor:    models.PayrollActor("u1"),
		Entity:   "payroll_invoice",
		EntityID: "inv-1",
		Action:   "create",
	})

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "payroll:u1", logs[0].Actor)
}
