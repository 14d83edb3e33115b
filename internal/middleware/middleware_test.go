package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"btcpay-plugins/internal/models"
	"btcpay-plugins/internal/payroll"
	"btcpay-plugins/internal/testutil"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	user *models.PayrollUser
	err  error
}

func (s stubResolver) ResolveUser(context.Context, string, string) (*models.PayrollUser, error) {
	return s.user, s.err
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	return r
}

func TestStoreContext(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateStore(t, db, "store-a", "Store A")

	r := newEngine()
	r.GET("/s/:storeId", StoreContext(db), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentStore(c).Name)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s/store-a", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Store A", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequirePayrollUserRedirectsToLogin(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateStore(t, db, "store-a", "Store A")

	r := newEngine()
	guard := RequirePayrollUser(stubResolver{err: payroll.ErrUserNotFound})
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/plugins/:storeId/payroll/public/listinvoices", StoreContext(db), guard, ok)
	r.GET("/plugins/:storeId/vendorpay/public/listinvoices", StoreContext(db), guard, ok)

	for path, login := range map[string]string{
		"/plugins/store-a/payroll/public/listinvoices":   "/plugins/store-a/payroll/public/login",
		"/plugins/store-a/vendorpay/public/listinvoices": "/plugins/store-a/vendorpay/public/login",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, login, w.Header().Get("Location"), path)
	}
}

func TestRequirePayrollUserSetsAuth(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateStore(t, db, "store-a", "Store A")
	user := &models.PayrollUser{ID: "u-1", StoreID: "store-a", Name: "Alice"}

	r := newEngine()
	r.GET("/plugins/:storeId/payroll/public/listinvoices",
		StoreContext(db),
		RequirePayrollUser(stubResolver{user: user}),
		func(c *gin.Context) {
			pa := GetPayrollAuth(c)
			c.String(http.StatusOK, pa.Store.ID+"/"+pa.UserID+"/"+pa.User.Name)
		})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plugins/store-a/payroll/public/listinvoices", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "store-a/u-1/Alice", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := newEngine()
	r.GET("/as/:role", func(c *gin.Context) {
		sess := sessions.Default(c)
		sess.Set(SessionRole, c.Param("role"))
		c.Next()
	}, RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/anon", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/as/admin", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/as/viewer", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusFound, w.Code)
}
