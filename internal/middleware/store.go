package middleware

import (
	"errors"
	"net/http"

	"btcpay-plugins/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const currentStoreKey = "CurrentStore"

// StoreContext loads the store named by the :storeId path parameter. Unknown
// stores end the request with 404.
func StoreContext(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID := c.Param("storeId")

		var store models.Store
		err := db.WithContext(c.Request.Context()).First(&store, "id = ?", storeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.String(http.StatusNotFound, "store not found")
			c.Abort()
			return
		}
		if err != nil {
			logrus.WithError(err).WithField("store_id", storeID).Error("failed to load store")
			c.String(http.StatusInternalServerError, "internal error")
			c.Abort()
			return
		}

		c.Set(currentStoreKey, &store)
		c.Next()
	}
}

// CurrentStore returns the store loaded by StoreContext.
func CurrentStore(c *gin.Context) *models.Store {
	v, ok := c.Get(currentStoreKey)
	if !ok {
		return nil
	}
	s, _ := v.(*models.Store)
	return s
}
