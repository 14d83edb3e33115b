package server

import (
	"html/template"
	"net/http"

	"btcpay-plugins/internal/cash"
	"btcpay-plugins/internal/config"
	"btcpay-plugins/internal/handlers"
	"btcpay-plugins/internal/middleware"
	"btcpay-plugins/internal/models"
	"btcpay-plugins/internal/payroll"
	"btcpay-plugins/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "btcpay_plugins_session"

// multipart overhead allowed on top of the upload limit
const formOverheadBytes = 1 << 20

type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Cash    *cash.Service
	Payroll *payroll.Service
}

func maskEmail(email string) string {
	runes := []rune(email)
	atIdx := -1
	for i, r := range runes {
		if r == '@' {
			atIdx = i
			break
		}
	}
	if atIdx <= 0 {
		return "***"
	}
	prefix := string(runes[:atIdx])
	domain := string(runes[atIdx:])
	if len(prefix) <= 2 {
		return prefix + "***" + domain
	}
	return string(runes[0:2]) + "***" + domain
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").
		Funcs(template.FuncMap{"maskEmail": maskEmail}).
		ParseFS(web.Templates, "templates/*.html"))
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	maxUpload := cfg.MaxUploadMB << 20

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.MaxMultipartMemory = maxUpload
	r.SetHTMLTemplate(loadTemplates())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.InjectUser(d.DB))

	h := handlers.New(d.DB, d.Cash, d.Payroll, maxUpload)

	r.GET("/", h.IndexPage)

	// host auth
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	// checkout
	r.GET("/i/:invoiceId", h.ShowCheckout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())
	auth.GET("/audit",
		middleware.RequireRole(models.RoleAdmin, models.RoleViewer),
		h.ListAuditLogs,
	)

	// cash payment method, store admins only
	stores := r.Group("/stores/:storeId")
	stores.Use(
		middleware.RequireAuth(),
		middleware.RequireRole(models.RoleAdmin),
		middleware.StoreContext(d.DB),
	)
	stores.GET("/cash", h.ShowCashConfig)
	stores.POST("/cash", h.UpdateCashConfig)
	stores.GET("/cash/MarkAsPaid", h.MarkAsPaid)

	// payroll portal, also served under the older vendorpay name
	for _, section := range []string{"payroll", "vendorpay"} {
		pub := r.Group("/plugins/:storeId/" + section + "/public")
		pub.Use(middleware.StoreContext(d.DB))
		pub.GET("/login", h.ShowPayrollLogin)
		pub.POST("/login", h.PayrollLogin)
		pub.GET("/logout", h.PayrollLogout)

		user := pub.Group("")
		user.Use(middleware.RequirePayrollUser(d.Payroll))
		user.GET("/listinvoices", h.ListPayrollInvoices)
		user.GET("/upload", h.ShowPayrollUpload)
		user.POST("/upload", limitBody(maxUpload+formOverheadBytes), h.PayrollUpload)
		user.GET("/file/:id", h.PayrollInvoiceFile)
		user.GET("/changepassword", h.ShowPayrollChangePassword)
		user.POST("/changepassword", h.PayrollChangePassword)
		user.GET("/delete/:id", h.ShowPayrollDelete)
		user.POST("/delete/:id", h.PayrollDelete)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
