package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"btcpay-plugins/internal/auth"
	"btcpay-plugins/internal/database"
	"btcpay-plugins/internal/models"
	"btcpay-plugins/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const fileCategory = "payroll"

type Service struct {
	db        *gorm.DB
	files     storage.Storage
	addresses AddressValidator
	now       func() time.Time
}

func NewService(db *gorm.DB, files storage.Storage, addresses AddressValidator) *Service {
	return &Service{
		db:        db,
		files:     files,
		addresses: addresses,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate resolves the active user of storeID with the given credentials.
// Every failure is reported as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, storeID, email, password string) (*models.PayrollUser, error) {
	var user models.PayrollUser
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND email = ?", storeID, normalizeEmail(email)).
		First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("look up payroll user: %w", err)
		}
		return nil, ErrInvalidCredentials
	}
	if user.State != models.PayrollUserActive || !auth.IsValidPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// ResolveUser re-validates a session user id: the user must belong to storeID and be active.
func (s *Service) ResolveUser(ctx context.Context, storeID, userID string) (*models.PayrollUser, error) {
	if userID == "" {
		return nil, ErrUserNotFound
	}
	var user models.PayrollUser
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND id = ? AND state = ?", storeID, userID, models.PayrollUserActive).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve payroll user: %w", err)
	}
	return &user, nil
}

// Settings returns the store's payroll settings, or defaults when none are saved.
func (s *Service) Settings(ctx context.Context, storeID string) (models.PayrollSettings, error) {
	return loadSettings(s.db.WithContext(ctx), storeID)
}

func loadSettings(db *gorm.DB, storeID string) (models.PayrollSettings, error) {
	var settings models.PayrollSettings
	err := db.Where("store_id = ?", storeID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PayrollSettings{StoreID: storeID, DefaultCurrency: models.DefaultCurrency}, nil
	}
	if err != nil {
		return models.PayrollSettings{}, fmt.Errorf("load payroll settings: %w", err)
	}
	if settings.DefaultCurrency == "" {
		settings.DefaultCurrency = models.DefaultCurrency
	}
	return settings, nil
}

// DefaultCurrency prefers the store's own default and falls back to the payroll setting.
func DefaultCurrency(store *models.Store, settings models.PayrollSettings) string {
	if c := store.GetBlob().DefaultCurrency; c != "" {
		return c
	}
	if settings.DefaultCurrency != "" {
		return settings.DefaultCurrency
	}
	return models.DefaultCurrency
}

// ListInvoices returns the user's non-archived invoices in storeID, newest first.
func (s *Service) ListInvoices(ctx context.Context, storeID, userID string) ([]models.PayrollInvoice, error) {
	storeUsers := s.db.Model(&models.PayrollUser{}).Select("id").Where("store_id = ?", storeID)

	var invoices []models.PayrollInvoice
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? AND user_id IN (?) AND is_archived = ?", userID, storeUsers, false).
		Order("created_at desc").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list payroll invoices: %w", err)
	}
	return invoices, nil
}

func ownInvoice(db *gorm.DB, storeID, userID, invoiceID string) (*models.PayrollInvoice, error) {
	var inv models.PayrollInvoice
	err := db.
		Joins("User").
		Where("payroll_invoices.id = ? AND payroll_invoices.user_id = ?", invoiceID, userID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load payroll invoice: %w", err)
	}
	if inv.User.StoreID != storeID {
		return nil, ErrInvoiceNotFound
	}
	return &inv, nil
}

// InvoiceForDeletion loads an invoice owned by the user for the delete
// confirmation step. It fails with ErrNotDeletable once the invoice left
// AwaitingApproval.
func (s *Service) InvoiceForDeletion(ctx context.Context, storeID, userID, invoiceID string) (*models.PayrollInvoice, error) {
	inv, err := ownInvoice(s.db.WithContext(ctx), storeID, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.State.Deletable() {
		return inv, ErrNotDeletable
	}
	return inv, nil
}

// InvoiceAttachment opens the document uploaded with one of the user's
// invoices. The caller closes the reader.
func (s *Service) InvoiceAttachment(ctx context.Context, storeID, userID, invoiceID string) (*models.StoredFile, io.ReadCloser, error) {
	inv, err := ownInvoice(s.db.WithContext(ctx), storeID, userID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if inv.InvoiceFilename == "" || s.files == nil {
		return nil, nil, ErrNoAttachment
	}
	var file models.StoredFile
	err = s.db.WithContext(ctx).First(&file, "id = ?", inv.InvoiceFilename).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNoAttachment
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load stored file: %w", err)
	}
	body, err := s.files.Open(ctx, file.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		logrus.WithField("storage_key", file.StorageKey).Warn("payroll attachment missing from storage")
		return nil, nil, ErrNoAttachment
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open attachment: %w", err)
	}
	return &file, body, nil
}

// DeleteInvoice removes an invoice that is still awaiting approval.
func (s *Service) DeleteInvoice(ctx context.Context, storeID, userID, invoiceID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := ownInvoice(tx, storeID, userID, invoiceID)
		if err != nil {
			return err
		}
		if !inv.State.Deletable() {
			return ErrNotDeletable
		}
		res := tx.Where("id = ? AND state = ?", inv.ID, models.PayrollAwaitingApproval).
			Delete(&models.PayrollInvoice{})
		if res.Error != nil {
			return fmt.Errorf("delete payroll invoice: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotDeletable
		}
		return nil
	})
	if err != nil {
		return err
	}

	database.CreateAuditLog(ctx, s.db, models.AuditLog{
		StoreID:  storeID,
		Actor:    models.PayrollActor(userID),
		Entity:   "payroll_invoice",
		EntityID: invoiceID,
		Action:   "delete",
	})
	return nil
}

type ChangePasswordRequest struct {
	StoreID         string
	UserID          string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

const minPasswordLength = 6

// ChangePassword verifies the current password before storing the new one. A
// missing user and a wrong password are both reported as MsgInvalidPassword.
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	errs := ValidationErrors{}
	if len(req.NewPassword) < minPasswordLength {
		errs.Add(FieldNewPassword, fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}
	if req.NewPassword != req.ConfirmPassword {
		errs.Add(FieldConfirmPassword, "The password and confirmation password do not match.")
	}
	if err := errs.err(); err != nil {
		return err
	}

	var user models.PayrollUser
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", req.StoreID, req.UserID).
		First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load payroll user: %w", err)
	}
	if err != nil || !auth.IsValidPassword(user.Password, req.CurrentPassword) {
		return ValidationErrors{FieldCurrentPassword: MsgInvalidPassword}
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password", hash).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	database.CreateAuditLog(ctx, s.db, models.AuditLog{
		StoreID:  req.StoreID,
		Actor:    models.PayrollActor(user.ID),
		Entity:   "payroll_user",
		EntityID: user.ID,
		Action:   "change_password",
	})
	return nil
}

// Attachment is an uploaded invoice document.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

func (a *Attachment) extension() string {
	return strings.TrimPrefix(filepath.Ext(a.FileName), ".")
}

type SubmitRequest struct {
	StoreID       string
	UserID        string
	Amount        string
	Currency      string
	Destination   string
	PurchaseOrder string
	Description   string
	Attachment    *Attachment
}

// Submit validates and stores a payout request. Validation problems come back as
// ValidationErrors.
//
// The attachment is written to storage before the rows; the StoredFile and
// PayrollInvoice rows share one transaction and the stored object is deleted
// again if that transaction fails.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.PayrollInvoice, error) {
	errs := ValidationErrors{}

	amount, err := ParseAmount(req.Amount)
	if errors.Is(err, ErrAmountOutOfRange) {
		errs.Add(FieldAmount, MsgAmountOutOfRange)
	} else if err != nil {
		errs.Add(FieldAmount, MsgAmountNotNumber)
	} else if !amount.IsPositive() {
		errs.Add(FieldAmount, MsgAmountNotPositive)
	}

	destination, err := s.addresses.Validate(req.Destination)
	if err != nil {
		errs.Add(FieldDestination, MsgInvalidDestination)
	}

	settings, err := s.Settings(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if !settings.MakeInvoiceFilesOptional && req.Attachment == nil {
		errs.Add(FieldInvoice, MsgInvoiceFileRequired)
	}
	purchaseOrder := strings.TrimSpace(req.PurchaseOrder)
	if settings.PurchaseOrdersRequired && purchaseOrder == "" {
		errs.Add(FieldPurchaseOrder, MsgPurchaseOrderMissing)
	}

	if destination != "" {
		inUse, err := s.destinationInUse(ctx, destination)
		if err != nil {
			return nil, err
		}
		if inUse {
			errs.Add(FieldDestination, MsgDestinationInUse)
		}
	}

	if err := errs.err(); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = settings.DefaultCurrency
	}

	invoice := &models.PayrollInvoice{
		UserID:        req.UserID,
		CreatedAt:     s.now(),
		Destination:   destination,
		Amount:        NormalizeAmount(amount),
		Currency:      currency,
		PurchaseOrder: purchaseOrder,
		Description:   strings.TrimSpace(req.Description),
		State:         models.PayrollAwaitingApproval,
	}

	var file *models.StoredFile
	if req.Attachment != nil {
		file, err = s.storeAttachment(ctx, req.Attachment)
		if err != nil {
			return nil, err
		}
		invoice.InvoiceFilename = file.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if file != nil {
			if err := tx.Create(file).Error; err != nil {
				return fmt.Errorf("create stored file: %w", err)
			}
		}
		return tx.Create(invoice).Error
	})
	if err != nil {
		if file != nil {
			s.discardFile(file)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ValidationErrors{FieldDestination: MsgDestinationInUse}
		}
		return nil, fmt.Errorf("create payroll invoice: %w", err)
	}

	database.CreateAuditLog(ctx, s.db, models.AuditLog{
		StoreID:  req.StoreID,
		Actor:    models.PayrollActor(req.UserID),
		Entity:   "payroll_invoice",
		EntityID: invoice.ID,
		Action:   "create",
		Details:  invoice.Amount.String() + " " + invoice.Currency + " to " + invoice.Destination,
	})
	return invoice, nil
}

func (s *Service) destinationInUse(ctx context.Context, destination string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.PayrollInvoice{}).
		Where("destination = ? AND state NOT IN ?", destination,
			[]models.PayrollInvoiceState{models.PayrollCompleted, models.PayrollCancelled}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check destination: %w", err)
	}
	return count > 0, nil
}

func (s *Service) storeAttachment(ctx context.Context, a *Attachment) (*models.StoredFile, error) {
	var gs models.PayrollGlobalSettings
	err := s.db.WithContext(ctx).First(&gs, models.PayrollGlobalSettingsID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load payroll global settings: %w", err)
	}
	if gs.AdminUserID == 0 {
		logrus.Warn("payroll admin user is not configured; attachment stored without uploader")
	}

	id := uuid.NewString()
	key, err := s.files.Save(ctx, a.Data, storage.SaveOptions{
		Category:  fileCategory,
		BaseName:  id,
		Extension: a.extension(),
	})
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}
	return &models.StoredFile{
		ID:          id,
		StorageKey:  key,
		FileName:    filepath.Base(a.FileName),
		ContentType: a.ContentType,
		Size:        int64(len(a.Data)),
		UploadedBy:  gs.AdminUserID,
	}, nil
}

func (s *Service) discardFile(file *models.StoredFile) {
	// the request context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.files.Delete(ctx, file.StorageKey); err != nil {
		logrus.WithError(err).WithField("storage_key", file.StorageKey).
			Error("failed to remove orphaned payroll attachment")
		return
	}
	logrus.WithField("storage_key", file.StorageKey).Info("removed payroll attachment after failed insert")
}
