package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"btcpay-plugins/internal/middleware"
	"btcpay-plugins/internal/payroll"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgInvoiceUploaded = "Invoice uploaded successfully"
	msgPasswordChanged = "Password successfully changed"
	msgInvoiceDeleted  = "Invoice deleted successfully"
	msgNotDeletable    = "Invoice cannot be deleted as it has been actioned upon"
)

func internalError(c *gin.Context, err error, msg string) {
	logrus.WithError(err).Error(msg)
	c.String(http.StatusInternalServerError, "internal error")
}

func (h *Handler) ShowPayrollLogin(c *gin.Context) {
	store := middleware.CurrentStore(c)
	render(c, http.StatusOK, "payroll_login.html", gin.H{
		"store":    store,
		"basePath": middleware.PayrollBasePath(c, store.ID),
		"email":    "",
		"errors":   payroll.ValidationErrors{},
	})
}

func (h *Handler) PayrollLogin(c *gin.Context) {
	store := middleware.CurrentStore(c)
	base := middleware.PayrollBasePath(c, store.ID)
	email := strings.TrimSpace(c.PostForm("email"))

	user, err := h.payroll.Authenticate(c.Request.Context(), store.ID, email, c.PostForm("password"))
	if errors.Is(err, payroll.ErrInvalidCredentials) {
		logrus.WithFields(logrus.Fields{"store_id": store.ID, "email": email}).Warn("payroll login failed")
		render(c, http.StatusBadRequest, "payroll_login.html", gin.H{
			"store":    store,
			"basePath": base,
			"email":    email,
			"errors":   payroll.ValidationErrors{payroll.FieldPassword: payroll.MsgInvalidCredentials},
		})
		return
	}
	if err != nil {
		internalError(c, err, "payroll login failed")
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.PayrollSessionKey, user.ID)
	_ = sess.Save()

	c.Redirect(http.StatusFound, base+"/listinvoices")
}

func (h *Handler) PayrollLogout(c *gin.Context) {
	store := middleware.CurrentStore(c)
	sess := sessions.Default(c)
	sess.Delete(middleware.PayrollSessionKey)
	_ = sess.Save()
	c.Redirect(http.StatusFound, middleware.PayrollBasePath(c, store.ID)+"/login")
}

func (h *Handler) ListPayrollInvoices(c *gin.Context) {
	pa := middleware.GetPayrollAuth(c)

	invoices, err := h.payroll.ListInvoices(c.Request.Context(), pa.Store.ID, pa.UserID)
	if err != nil {
		internalError(c, err, "failed to list payroll invoices")
		return
	}

	render(c, http.StatusOK, "payroll_invoices.html", gin.H{
		"store":    pa.Store,
		"user":     pa.User,
		"basePath": middleware.PayrollBasePath(c, pa.Store.ID),
		"invoices": invoices,
	})
}

type uploadForm struct {
	Amount        string
	Currency      string
	Destination   string
	PurchaseOrder string
	Description   string
}

func (h *Handler) renderUpload(c *gin.Context, status int, pa *middleware.PayrollAuth, form uploadForm, errs payroll.ValidationErrors) {
	settings, err := h.payroll.Settings(c.Request.Context(), pa.Store.ID)
	if err != nil {
		internalError(c, err, "failed to load payroll settings")
		return
	}
	if form.Currency == "" {
		form.Currency = payroll.DefaultCurrency(pa.Store, settings)
	}
	if errs == nil {
		errs = payroll.ValidationErrors{}
	}
	render(c, status, "payroll_upload.html", gin.H{
		"store":                    pa.Store,
		"basePath":                 middleware.PayrollBasePath(c, pa.Store.ID),
		"form":                     form,
		"errors":                   errs,
		"purchaseOrdersRequired":   settings.PurchaseOrdersRequired,
		"makeInvoiceFilesOptional": settings.MakeInvoiceFilesOptional,
		"maxUploadMB":              h.maxUploadBytes >> 20,
	})
}

func (h *Handler) ShowPayrollUpload(c *gin.Context) {
	h.renderUpload(c, http.StatusOK, middleware.GetPayrollAuth(c), uploadForm{}, nil)
}

func (h *Handler) PayrollUpload(c *gin.Context) {
	pa := middleware.GetPayrollAuth(c)

	form, attachment, msg := h.readUploadForm(c)
	if msg != "" {
		h.renderUpload(c, http.StatusBadRequest, pa, form, payroll.ValidationErrors{payroll.FieldInvoice: msg})
		return
	}

	invoice, err := h.payroll.Submit(c.Request.Context(), payroll.SubmitRequest{
		StoreID:       pa.Store.ID,
		UserID:        pa.UserID,
		Amount:        form.Amount,
		Currency:      form.Currency,
		Destination:   form.Destination,
		PurchaseOrder: form.PurchaseOrder,
		Description:   form.Description,
		Attachment:    attachment,
	})
	var verrs payroll.ValidationErrors
	if errors.As(err, &verrs) {
		h.renderUpload(c, http.StatusBadRequest, pa, form, verrs)
		return
	}
	if err != nil {
		internalError(c, err, "failed to submit payroll invoice")
		return
	}

	logrus.WithFields(logrus.Fields{
		"store_id":   pa.Store.ID,
		"user_id":    pa.UserID,
		"invoice_id": invoice.ID,
	}).Info("payroll invoice submitted")
	addFlash(c, flashSuccess, msgInvoiceUploaded)
	c.Redirect(http.StatusFound, middleware.PayrollBasePath(c, pa.Store.ID)+"/listinvoices")
}

const maxFieldBytes = 64 << 10

const msgUnreadableUpload = "Could not read the uploaded file"

func (f *uploadForm) set(name, value string) {
	switch name {
	case payroll.FieldAmount:
		f.Amount = value
	case payroll.FieldCurrency:
		f.Currency = value
	case payroll.FieldDestination:
		f.Destination = value
	case payroll.FieldPurchaseOrder:
		f.PurchaseOrder = value
	case "description":
		f.Description = value
	}
}

// readUploadForm streams the multipart body part by part, so the text fields
// read so far survive an oversized or truncated "invoice" file. A non-empty
// message means the upload was present but unusable.
func (h *Handler) readUploadForm(c *gin.Context) (uploadForm, *payroll.Attachment, string) {
	var form uploadForm

	mr, err := c.Request.MultipartReader()
	if err != nil {
		for _, name := range []string{payroll.FieldAmount, payroll.FieldCurrency, payroll.FieldDestination, payroll.FieldPurchaseOrder, "description"} {
			form.set(name, c.PostForm(name))
		}
		return form, nil, ""
	}

	var (
		attachment *payroll.Attachment
		msg        string
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logrus.WithError(err).Warn("unreadable invoice upload")
			if msg == "" {
				msg = msgUnreadableUpload
			}
			break
		}

		name := part.FormName()
		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			part.Close()
			if err != nil {
				logrus.WithError(err).Warn("unreadable upload form field")
				if msg == "" {
					msg = msgUnreadableUpload
				}
				break
			}
			form.set(name, string(value))
			continue
		}
		if name != payroll.FieldInvoice || msg != "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, h.maxUploadBytes+1))
		fileName, contentType := part.FileName(), part.Header.Get("Content-Type")
		part.Close()
		switch {
		case err != nil:
			logrus.WithError(err).Warn("unreadable invoice upload")
			msg = msgUnreadableUpload
		case int64(len(data)) > h.maxUploadBytes:
			msg = fmt.Sprintf("File is larger than %d MB", h.maxUploadBytes>>20)
		case len(data) > 0:
			attachment = &payroll.Attachment{FileName: fileName, ContentType: contentType, Data: data}
		}
	}
	if msg != "" {
		return form, nil, msg
	}
	return form, attachment, ""
}

// PayrollInvoiceFile streams the document attached to one of the user's invoices.
func (h *Handler) PayrollInvoiceFile(c *gin.Context) {
	pa := middleware.GetPayrollAuth(c)

	file, body, err := h.payroll.InvoiceAttachment(c.Request.Context(), pa.Store.ID, pa.UserID, c.Param("id"))
	switch {
	case errors.Is(err, payroll.ErrInvoiceNotFound), errors.Is(err, payroll.ErrNoAttachment):
		c.String(http.StatusNotFound, "file not found")
		return
	case err != nil:
		internalError(c, err, "failed to open payroll attachment")
		return
	}
	defer body.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.DataFromReader(http.StatusOK, file.Size, contentType, body, map[string]string{
		"Content-Disposition":    disposition,
		"X-Content-Type-Options": "nosniff",
	})
}

func (h *Handler) renderChangePassword(c *gin.Context, status int, pa *middleware.PayrollAuth, errs payroll.ValidationErrors) {
	if errs == nil {
		errs = payroll.ValidationErrors{}
	}
	render(c, status, "payroll_change_password.html", gin.H{
		"store":    pa.Store,
		"basePath": middleware.PayrollBasePath(c, pa.Store.ID),
		"errors":   errs,
	})
}

func (h *Handler) ShowPayrollChangePassword(c *gin.Context) {
	h.renderChangePassword(c, http.StatusOK, middleware.GetPayrollAuth(c), nil)
}

func (h *Handler) PayrollChangePassword(c *gin.Context) {
	pa := middleware.GetPayrollAuth(c)

	err := h.payroll.ChangePassword(c.Request.Context(), payroll.ChangePasswordRequest{
		StoreID:         pa.Store.ID,
		UserID:          pa.UserID,
		CurrentPassword: c.PostForm(payroll.FieldCurrentPassword),
		NewPassword:     c.PostForm(payroll.FieldNewPassword),
		ConfirmPassword: c.PostForm(payroll.FieldConfirmPassword),
	})
	var verrs payroll.ValidationErrors
	if errors.As(err, &verrs) {
		h.renderChangePassword(c, http.StatusBadRequest, pa, verrs)
		return
	}
	if err != nil {
		internalError(c, err, "failed to change payroll password")
		return
	}

	addFlash(c, flashSuccess, msgPasswordChanged)
	c.Redirect(http.StatusFound, middleware.PayrollBasePath(c, pa.Store.ID)+"/listinvoices")
}

func (h *Handler) ShowPayrollDelete(c *gin.Context) {
	pa := middleware.GetPayrollAuth(c)
	base := middleware.PayrollBasePath(c, pa.Store.ID)

	inv, err := h.payroll.InvoiceForDeletion(c.Request.Context(), pa.Store.ID, pa.UserID, c.Param("id"))
	switch {
	case errors.Is(err, payroll.ErrInvoiceNotFound):
		c.String(http.StatusNotFound, "invoice not found")
		return
	case errors.Is(err, payroll.ErrNotDeletable):
		addFlash(c, flashError, msgNotDeletable)
		c.Redirect(http.StatusFound, base+"/listinvoices")
		return
	case err != nil:
		internalError(c, err, "failed to load payroll invoice")
		return
	}

	render(c, http.StatusOK, "confirm.html", gin.H{
		"store":       pa.Store,
		"title":       "Delete Invoice",
		"description": fmt.Sprintf("Do you really want to delete the invoice for %s %s from %s?", inv.Amount.String(), inv.Currency, inv.User.Name),
		"action":      "Delete",
		"cancelURL":   base + "/listinvoices",
	})
}

func (h *Handler) PayrollDelete(c *gin.Context) {
	pa := middleware.GetPayrollAuth(c)
	base := middleware.PayrollBasePath(c, pa.Store.ID)
	invoiceID := c.Param("id")

	err := h.payroll.DeleteInvoice(c.Request.Context(), pa.Store.ID, pa.UserID, invoiceID)
	switch {
	case errors.Is(err, payroll.ErrInvoiceNotFound):
		c.String(http.StatusNotFound, "invoice not found")
		return
	case errors.Is(err, payroll.ErrNotDeletable):
		logrus.WithFields(logrus.Fields{
			"store_id":   pa.Store.ID,
			"user_id":    pa.UserID,
			"invoice_id": invoiceID,
		}).Warn("refused to delete actioned payroll invoice")
		addFlash(c, flashError, msgNotDeletable)
	case err != nil:
		internalError(c, err, "failed to delete payroll invoice")
		return
	default:
		logrus.WithFields(logrus.Fields{
			"store_id":   pa.Store.ID,
			"user_id":    pa.UserID,
			"invoice_id": invoiceID,
		}).Info("payroll invoice deleted")
		addFlash(c, flashSuccess, msgInvoiceDeleted)
	}
	c.Redirect(http.StatusFound, base+"/listinvoices")
}
