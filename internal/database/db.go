package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"btcpay-plugins/internal/auth"
	"btcpay-plugins/internal/config"
	"btcpay-plugins/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// Open connects to the configured database, retrying while it comes up, and
// migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		logrus.WithField("attempt", i).Info("connecting to database")

		db, err = gorm.Open(dialector, gormConfig())
		if err == nil {
			break
		}

		logrus.WithError(err).Warn("failed to connect to database")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", maxAttempts, err)
	}

	if cfg.DBType != TypeSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case TypePostgres:
		return postgres.Open(cfg.DBDSN), nil
	case TypeMySQL:
		return mysql.Open(cfg.DBDSN), nil
	case TypeSQLite:
		path := cfg.DBPath
		if path == "" {
			path = "data/plugins.db"
		}
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir %q: %w", dir, err)
			}
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(
			logrus.StandardLogger(),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		TranslateError: true,
	}
}

// OpenSQLite opens a sqlite database by DSN without retrying. Used by tests and
// the CLI.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Invoice{},
		&models.StoredFile{},
		&models.PayrollUser{},
		&models.PayrollInvoice{},
		&models.PayrollSettings{},
		&models.PayrollGlobalSettings{},
		&models.AuditLog{},
	)
}

// EnsureDefaultAdmin creates the host admin if no admin exists yet and points the
// payroll global settings at it. A blank password leaves the database untouched.
func EnsureDefaultAdmin(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	var admin models.User
	err := db.WithContext(ctx).
		Where("role = ?", models.RoleAdmin).
		Order("id asc").
		First(&admin).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		if password == "" {
			logrus.Warn("no admin user exists and ADMIN_PASSWORD is not set")
			return nil, nil
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash default admin password: %w", err)
		}
		admin = models.User{
			Username:     username,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
		}
		if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
			return nil, fmt.Errorf("create default admin: %w", err)
		}
		logrus.WithField("username", username).Info("created default admin user")
	default:
		return nil, fmt.Errorf("look up admin user: %w", err)
	}

	if err := ensureGlobalSettings(ctx, db, admin.ID); err != nil {
		return nil, err
	}
	return &admin, nil
}

func ensureGlobalSettings(ctx context.Context, db *gorm.DB, adminID uint) error {
	var gs models.PayrollGlobalSettings
	err := db.WithContext(ctx).First(&gs, models.PayrollGlobalSettingsID).Error
	if err == nil {
		if gs.AdminUserID != 0 {
			return nil
		}
		return db.WithContext(ctx).Model(&gs).Update("admin_user_id", adminID).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load payroll global settings: %w", err)
	}
	gs = models.PayrollGlobalSettings{ID: models.PayrollGlobalSettingsID, AdminUserID: adminID}
	return db.WithContext(ctx).Create(&gs).Error
}
