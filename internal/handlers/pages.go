package handlers

import (
	"net/http"

	"btcpay-plugins/internal/cash"
	"btcpay-plugins/internal/middleware"
	"btcpay-plugins/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type storeRow struct {
	ID          string
	Name        string
	CashEnabled bool
}

// IndexPage lists the stores for a logged in admin.
func (h *Handler) IndexPage(c *gin.Context) {
	if middleware.CurrentUser(c) == nil {
		render(c, http.StatusOK, "index.html", gin.H{"isAuthed": false})
		return
	}

	var stores []models.Store
	if err := h.db.WithContext(c.Request.Context()).Order("name asc").Find(&stores).Error; err != nil {
		logrus.WithError(err).Error("failed to list stores")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	rows := make([]storeRow, 0, len(stores))
	for i := range stores {
		rows = append(rows, storeRow{
			ID:          stores[i].ID,
			Name:        stores[i].Name,
			CashEnabled: cash.Enabled(&stores[i]),
		})
	}

	render(c, http.StatusOK, "index.html", gin.H{
		"isAuthed": true,
		"stores":   rows,
	})
}
