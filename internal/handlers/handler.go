package handlers

import (
	"btcpay-plugins/internal/cash"
	"btcpay-plugins/internal/payroll"

	"gorm.io/gorm"
)

// Handler carries the services the HTTP handlers work against.
type Handler struct {
	db             *gorm.DB
	cash           *cash.Service
	payroll        *payroll.Service
	maxUploadBytes int64
}

func New(db *gorm.DB, cashSvc *cash.Service, payrollSvc *payroll.Service, maxUploadBytes int64) *Handler {
	return &Handler{
		db:             db,
		cash:           cashSvc,
		payroll:        payrollSvc,
		maxUploadBytes: maxUploadBytes,
	}
}
