package handlers

import (
	"errors"
	"net/http"
	"strings"

	"btcpay-plugins/internal/auth"
	"btcpay-plugins/internal/middleware"
	"btcpay-plugins/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func (h *Handler) ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"error": "", "username": ""})
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "Invalid form data"})
		return
	}
	form.Username = strings.TrimSpace(form.Username)

	var user models.User
	err := h.db.WithContext(c.Request.Context()).Where("username = ?", form.Username).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("failed to look up user")
		render(c, http.StatusInternalServerError, "login.html", gin.H{"error": "Internal error", "username": form.Username})
		return
	}
	if err != nil || !auth.IsValidPassword(user.PasswordHash, form.Password) {
		logrus.WithField("username", form.Username).Warn("admin login failed")
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "Invalid username or password", "username": form.Username})
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserID, user.ID)
	sess.Set(middleware.SessionRole, string(user.Role))
	_ = sess.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Delete(middleware.SessionUserID)
	sess.Delete(middleware.SessionRole)
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/login")
}
