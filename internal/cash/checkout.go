package cash

import (
	"math"
	"net/url"
	"strings"
)

// CheckoutBodyComponent is the checkout body shared with on-chain bitcoin.
const CheckoutBodyComponent = "BitcoinCheckoutBody"

// CheckoutModel is the part of the checkout view a payment method may adjust.
type CheckoutModel struct {
	StoreID         string
	InvoiceID       string
	MerchantRefLink string
	PaymentMethodID string

	CheckoutBodyComponent string
	PayURL                string
	QRCode                string
	ExpirationSeconds     int
	ShowPayButton         bool
}

// MarkAsPaidURL is the staff link that settles the invoice and then returns to
// the merchant page.
func MarkAsPaidURL(storeID, invoiceID, returnURL string) string {
	q := url.Values{}
	q.Set("invoiceId", invoiceID)
	q.Set("returnUrl", returnURL)
	return "/stores/" + url.PathEscape(storeID) + "/cash/MarkAsPaid?" + q.Encode()
}

// SafeReturnURL returns raw when it is a local path or an http(s) URL on the
// same host as merchantRefLink, and fallback otherwise.
func SafeReturnURL(raw, merchantRefLink, fallback string) string {
	if raw == "" || strings.Contains(raw, "\\") {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	if u.Scheme == "" && u.Host == "" {
		if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
			return raw
		}
		return fallback
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.User != nil {
		return fallback
	}
	ref, err := url.Parse(merchantRefLink)
	if err != nil || ref.Host == "" || (ref.Scheme != "http" && ref.Scheme != "https") {
		return fallback
	}
	if !strings.EqualFold(u.Host, ref.Host) {
		return fallback
	}
	return raw
}

// ModifyCheckoutModel turns the checkout into a cash checkout: no QR code, no
// expiry countdown, and the pay button marks the invoice as paid.
func ModifyCheckoutModel(m *CheckoutModel) {
	if m == nil || m.PaymentMethodID != PaymentMethodID {
		return
	}
	m.CheckoutBodyComponent = CheckoutBodyComponent
	m.QRCode = ""
	m.ExpirationSeconds = math.MaxInt32
	m.PayURL = MarkAsPaidURL(m.StoreID, m.InvoiceID, m.MerchantRefLink)
	m.ShowPayButton = true
}
