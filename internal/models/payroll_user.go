package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayrollUserState string

const (
	PayrollUserActive   PayrollUserState = "active"
	PayrollUserDisabled PayrollUserState = "disabled"
)

// PayrollUser is a vendor account scoped to one store. Email is stored lower-cased.
type PayrollUser struct {
	ID        string           `gorm:"primaryKey;size:36"`
	StoreID   string           `gorm:"size:64;not null;uniqueIndex:idx_payroll_user_store_email"`
	Email     string           `gorm:"size:255;not null;uniqueIndex:idx_payroll_user_store_email"`
	Password  string           `gorm:"not null"`
	Name      string           `gorm:"size:255"`
	State     PayrollUserState `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PayrollUser) TableName() string {
	return "payroll_users"
}

func (u *PayrollUser) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.State == "" {
		u.State = PayrollUserActive
	}
	return nil
}
