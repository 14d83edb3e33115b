package payroll

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"btcpay-plugins/internal/auth"
	"btcpay-plugins/internal/database"
	"btcpay-plugins/internal/models"

	"gorm.io/gorm"
)

// CreateUser registers a payroll user for a store.
func (s *Service) CreateUser(ctx context.Context, storeID, email, name, password string) (*models.PayrollUser, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	var store models.Store
	if err := s.db.WithContext(ctx).First(&store, "id = ?", storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("load store: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.PayrollUser{
		StoreID:  storeID,
		Email:    email,
		Password: hash,
		Name:     strings.TrimSpace(name),
		State:    models.PayrollUserActive,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("payroll user %s already exists in store %s", email, storeID)
		}
		return nil, fmt.Errorf("create payroll user: %w", err)
	}

	database.CreateAuditLog(ctx, s.db, models.AuditLog{
		StoreID:  storeID,
		Actor:    models.ActorCLI,
		Entity:   "payroll_user",
		EntityID: user.ID,
		Action:   "create",
		Details:  email,
	})
	return user, nil
}

// SetUserState activates or disables a payroll user.
func (s *Service) SetUserState(ctx context.Context, storeID, email string, state models.PayrollUserState) error {
	res := s.db.WithContext(ctx).Model(&models.PayrollUser{}).
		Where("store_id = ? AND email = ?", storeID, normalizeEmail(email)).
		Update("state", state)
	if res.Error != nil {
		return fmt.Errorf("update payroll user state: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	database.CreateAuditLog(ctx, s.db, models.AuditLog{
		StoreID: storeID,
		Actor:   models.ActorCLI,
		Entity:  "payroll_user",
		Action:  "state_" + string(state),
		Details: normalizeEmail(email),
	})
	return nil
}

// TransitionInvoice moves an invoice along the approval workflow. Completing an
// invoice requires the payout transaction id.
func (s *Service) TransitionInvoice(ctx context.Context, invoiceID string, next models.PayrollInvoiceState, txnID string) (*models.PayrollInvoice, error) {
	txnID = strings.TrimSpace(txnID)
	if next == models.PayrollCompleted && txnID == "" {
		return nil, errors.New("a transaction id is required to complete an invoice")
	}

	var inv models.PayrollInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&inv, "id = ?", invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return fmt.Errorf("load payroll invoice: %w", err)
		}
		if !inv.State.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, inv.State, next)
		}
		prev := inv.State
		inv.SetState(next)
		if txnID != "" {
			inv.TxnID = txnID
		}
		res := tx.Model(&models.PayrollInvoice{}).
			Where("id = ? AND state = ?", inv.ID, prev).
			Updates(map[string]any{
				"state":              inv.State,
				"active_destination": inv.ActiveDestination,
				"txn_id":             inv.TxnID,
			})
		if res.Error != nil {
			return fmt.Errorf("update payroll invoice: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: invoice changed concurrently", ErrIllegalTransition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	database.CreateAuditLog(ctx, s.db, models.AuditLog{
		StoreID:  inv.User.StoreID,
		Actor:    models.ActorCLI,
		Entity:   "payroll_invoice",
		EntityID: inv.ID,
		Action:   "state_" + string(next),
		Details:  txnID,
	})
	return &inv, nil
}

// ArchiveInvoice hides a finished invoice from the vendor's list.
func (s *Service) ArchiveInvoice(ctx context.Context, invoiceID string) error {
	var inv models.PayrollInvoice
	if err := s.db.WithContext(ctx).First(&inv, "id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		return fmt.Errorf("load payroll invoice: %w", err)
	}
	if !inv.State.IsTerminal() {
		return fmt.Errorf("only completed or cancelled invoices can be archived, invoice is %s", inv.State.Label())
	}
	return s.db.WithContext(ctx).Model(&inv).Update("is_archived", true).Error
}

// SaveSettings upserts the store's payroll settings.
func (s *Service) SaveSettings(ctx context.Context, settings models.PayrollSettings) error {
	if settings.StoreID == "" {
		return errors.New("store id is required")
	}
	settings.DefaultCurrency = strings.ToUpper(strings.TrimSpace(settings.DefaultCurrency))
	return s.db.WithContext(ctx).Save(&settings).Error
}

// StoreInvoices lists every invoice of the store's users, newest first.
func (s *Service) StoreInvoices(ctx context.Context, storeID string, includeArchived bool) ([]models.PayrollInvoice, error) {
	storeUsers := s.db.Model(&models.PayrollUser{}).Select("id").Where("store_id = ?", storeID)

	q := s.db.WithContext(ctx).Preload("User").Where("user_id IN (?)", storeUsers)
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	var invoices []models.PayrollInvoice
	if err := q.Order("created_at desc").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("list store payroll invoices: %w", err)
	}
	return invoices, nil
}

// StoreUsers lists the store's payroll users by email.
func (s *Service) StoreUsers(ctx context.Context, storeID string) ([]models.PayrollUser, error) {
	var users []models.PayrollUser
	err := s.db.WithContext(ctx).Where("store_id = ?", storeID).Order("email asc").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list payroll users: %w", err)
	}
	return users, nil
}
