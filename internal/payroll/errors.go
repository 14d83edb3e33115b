package payroll

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("payroll user not found")
	ErrStoreNotFound      = errors.New("store not found")
	ErrInvoiceNotFound    = errors.New("payroll invoice not found")
	ErrNotDeletable       = errors.New("invoice cannot be deleted as it has been actioned upon")
	ErrIllegalTransition  = errors.New("illegal invoice state transition")
	ErrNoAttachment       = errors.New("payroll invoice has no attachment")
)

// Form field names, shared with the templates.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldAmount          = "amount"
	FieldCurrency        = "currency"
	FieldDestination     = "destination"
	FieldPurchaseOrder   = "purchaseOrder"
	FieldInvoice         = "invoice"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldConfirmPassword = "confirmPassword"
)

const (
	MsgInvalidCredentials   = "Invalid credentials"
	MsgInvalidPassword      = "Invalid password"
	MsgAmountNotNumber      = "Amount must be a number."
	MsgAmountNotPositive    = "Amount must be more than 0."
	MsgAmountOutOfRange     = "Amount must be below 1000000000000 with at most 8 decimals."
	MsgInvalidDestination   = "Invalid Destination, check format of address."
	MsgInvoiceFileRequired  = "Kindly include an invoice"
	MsgPurchaseOrderMissing = "Purchase Order is required"
	MsgDestinationInUse     = "This destination is already specified for another invoice from which payment is in progress"
)

// ValidationErrors maps a form field to the first error reported for it.
type ValidationErrors map[string]string

func (v ValidationErrors) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
