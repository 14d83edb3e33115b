package handlers

import (
	"btcpay-plugins/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Flash keys, read back by the status partial.
const (
	flashSuccess = "status_success"
	flashError   = "status_error"
)

func addFlash(c *gin.Context, key, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg, key)
	_ = sess.Save()
}

func popFlashes(c *gin.Context, key string) []string {
	sess := sessions.Default(c)
	raw := sess.Flashes(key)
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save()
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// render wraps c.HTML and passes the current user and pending flash messages
// to every template.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if u := middleware.CurrentUser(c); u != nil {
		data["CurrentUser"] = u
		data["CurrentUsername"] = u.Username
		data["CurrentUserRole"] = u.Role
	}

	data["StatusSuccess"] = popFlashes(c, flashSuccess)
	data["StatusError"] = popFlashes(c, flashError)

	c.HTML(status, tmpl, data)
}
