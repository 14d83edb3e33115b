package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"btcpay-plugins/internal/cash"
	"btcpay-plugins/internal/middleware"
	"btcpay-plugins/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const msgMarkAsPaidRejected = "Invoice cannot be marked as paid in its current state"

func adminActor(c *gin.Context) string {
	if u := middleware.CurrentUser(c); u != nil {
		return models.AdminActor(u.ID)
	}
	return "admin"
}

func (h *Handler) ShowCashConfig(c *gin.Context) {
	store := middleware.CurrentStore(c)
	render(c, http.StatusOK, "cash_config.html", gin.H{
		"store":   store,
		"enabled": cash.Enabled(store),
	})
}

func (h *Handler) UpdateCashConfig(c *gin.Context) {
	store := middleware.CurrentStore(c)
	enabled := c.PostForm("enabled") == "true" || c.PostForm("enabled") == "on"

	if err := h.cash.SetEnabled(c.Request.Context(), store, enabled, adminActor(c)); err != nil {
		logrus.WithError(err).WithField("store_id", store.ID).Error("failed to update cash config")
		addFlash(c, flashError, "Failed to update the cash payment method")
	} else {
		addFlash(c, flashSuccess, "Cash payment method updated")
	}
	c.Redirect(http.StatusFound, c.Request.URL.Path)
}

// MarkAsPaid settles an invoice of the current store and returns to returnUrl
// when it is a local path or on the invoice's merchant host, else to the
// checkout page. An invoice of another store is left untouched without any
// message.
func (h *Handler) MarkAsPaid(c *gin.Context) {
	store := middleware.CurrentStore(c)
	invoiceID := c.Query("invoiceId")

	res, invoice, err := h.cash.MarkAsPaid(c.Request.Context(), store.ID, invoiceID, adminActor(c))
	if errors.Is(err, cash.ErrInvoiceNotFound) {
		c.String(http.StatusNotFound, "invoice not found")
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("invoice_id", invoiceID).Error("mark as paid failed")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	merchantRefLink := ""
	if invoice != nil {
		merchantRefLink = invoice.MerchantRefLink
	}
	requested := c.Query("returnUrl")
	returnURL := cash.SafeReturnURL(requested, merchantRefLink, "/i/"+url.PathEscape(invoiceID))
	if requested != "" && returnURL != requested {
		logrus.WithFields(logrus.Fields{
			"invoice_id": invoiceID,
			"return_url": requested,
		}).Warn("ignoring foreign returnUrl")
	}

	if res == cash.MarkRejected {
		addFlash(c, flashError, msgMarkAsPaidRejected)
	}
	c.Redirect(http.StatusFound, returnURL)
}
