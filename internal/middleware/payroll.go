package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"btcpay-plugins/internal/models"
	"btcpay-plugins/internal/payroll"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PayrollSessionKey holds the id of the logged in payroll user.
const PayrollSessionKey = "PAYROLL_USER_ID"

const payrollAuthKey = "PayrollAuth"

// PayrollAuth is the resolved payroll identity of a request.
type PayrollAuth struct {
	Store  *models.Store
	UserID string
	User   *models.PayrollUser
}

type PayrollUserResolver interface {
	ResolveUser(ctx context.Context, storeID, userID string) (*models.PayrollUser, error)
}

// PayrollBasePath is the public payroll prefix the request came in on, so the
// vendorpay alias keeps redirecting within itself.
func PayrollBasePath(c *gin.Context, storeID string) string {
	section := "payroll"
	if strings.Contains(c.FullPath(), "/vendorpay/") {
		section = "vendorpay"
	}
	return "/plugins/" + url.PathEscape(storeID) + "/" + section + "/public"
}

// RequirePayrollUser re-validates the session user against the current store
// on every request. Must run after StoreContext.
func RequirePayrollUser(users PayrollUserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := CurrentStore(c)
		if store == nil {
			c.String(http.StatusNotFound, "store not found")
			c.Abort()
			return
		}

		sess := sessions.Default(c)
		userID, _ := sess.Get(PayrollSessionKey).(string)

		user, err := users.ResolveUser(c.Request.Context(), store.ID, userID)
		if errors.Is(err, payroll.ErrUserNotFound) {
			c.Redirect(http.StatusFound, PayrollBasePath(c, store.ID)+"/login")
			c.Abort()
			return
		}
		if err != nil {
			logrus.WithError(err).WithField("store_id", store.ID).Error("failed to resolve payroll user")
			c.String(http.StatusInternalServerError, "internal error")
			c.Abort()
			return
		}

		c.Set(payrollAuthKey, &PayrollAuth{Store: store, UserID: user.ID, User: user})
		c.Next()
	}
}

// GetPayrollAuth returns the identity set by RequirePayrollUser.
func GetPayrollAuth(c *gin.Context) *PayrollAuth {
	v, ok := c.Get(payrollAuthKey)
	if !ok {
		return nil
	}
	a, _ := v.(*PayrollAuth)
	return a
}
