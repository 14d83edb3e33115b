package payroll

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are stored as numeric(20,8).
const (
	amountScale     = 8
	maxAmountLength = 32
)

var (
	errAmountSyntax = errors.New("amount is not a plain decimal number")

	// ErrAmountOutOfRange reports an amount the amount column cannot hold.
	ErrAmountOutOfRange = errors.New("amount is out of range")

	amountLimit = decimal.New(1, 20-amountScale)
)

// ParseAmount parses a user supplied amount. Both "." and "," are accepted as
// the decimal separator. Exponent notation is rejected, and so is anything
// with more than 8 decimals or 12 integer digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if len(s) > maxAmountLength || strings.ContainsAny(s, "eE") {
		return decimal.Decimal{}, errAmountSyntax
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return decimal.Decimal{}, ErrAmountOutOfRange
	}
	if d.Exponent() < -amountScale && !d.Equal(d.Truncate(amountScale)) {
		return decimal.Decimal{}, ErrAmountOutOfRange
	}
	return d, nil
}

// NormalizeAmount drops a zero fraction: 42.00 becomes 42, 42.50 is kept.
func NormalizeAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsInteger() {
		return d.Truncate(0)
	}
	return d
}
