package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"time"

	"btcpay-plugins/internal/cash"
	"btcpay-plugins/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	onChainPaymentMethod = "BTC-CHAIN"
	invoiceExpiry        = 15 * time.Minute
)

// ShowCheckout renders the checkout page of a host invoice. The payment method
// is picked with ?paymentMethodId= among the methods the store offers.
func (h *Handler) ShowCheckout(c *gin.Context) {
	ctx := c.Request.Context()

	var invoice models.Invoice
	err := h.db.WithContext(ctx).First(&invoice, "id = ?", c.Param("invoiceId")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.String(http.StatusNotFound, "invoice not found")
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to load invoice")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	var store models.Store
	if err := h.db.WithContext(ctx).First(&store, "id = ?", invoice.StoreID).Error; err != nil {
		logrus.WithError(err).WithField("store_id", invoice.StoreID).Error("failed to load invoice store")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	methods := []string{onChainPaymentMethod}
	if cash.Enabled(&store) {
		methods = append(methods, cash.PaymentMethodID)
	}
	selected := c.Query("paymentMethodId")
	if !slices.Contains(methods, selected) {
		selected = methods[0]
	}

	model := &cash.CheckoutModel{
		StoreID:               store.ID,
		InvoiceID:             invoice.ID,
		MerchantRefLink:       invoice.MerchantRefLink,
		PaymentMethodID:       selected,
		CheckoutBodyComponent: cash.CheckoutBodyComponent,
		QRCode:                "bitcoin:?r=" + url.QueryEscape("/i/"+invoice.ID),
		ExpirationSeconds:     expirationSeconds(invoice.CreatedAt, time.Now()),
	}
	cash.ModifyCheckoutModel(model)

	render(c, http.StatusOK, "checkout.html", gin.H{
		"invoice":  invoice,
		"store":    store,
		"methods":  methods,
		"checkout": model,
		"payable":  invoice.Status.CanMarkSettled(),
	})
}

func expirationSeconds(createdAt, now time.Time) int {
	left := createdAt.Add(invoiceExpiry).Sub(now)
	if left < 0 {
		return 0
	}
	return int(left.Seconds())
}
