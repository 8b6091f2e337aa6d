package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/app/domain"
	"github.com/FACorreiaa/moxc-web/internal/app/models"
	"github.com/FACorreiaa/moxc-web/internal/app/notify"
	"github.com/FACorreiaa/moxc-web/internal/app/pages"
)

type AuthHandlers struct {
	*domain.BaseHandler
	SecureCookie bool
}

func NewAuthHandlers(base *domain.BaseHandler) *AuthHandlers {
	return &AuthHandlers{BaseHandler: base}
}

func (h *AuthHandlers) ShowLoginPage(c *gin.Context) {
	h.RenderPage(c, http.StatusOK, "登录", "登录", pages.LoginPage(models.LoginForm{}))
}

// Login exchanges the submitted credentials for a token and stores it in the
// token cookie. The password is not kept past this call.
func (h *AuthHandlers) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	h.Logger.Info("Login attempt",
		zap.String("username", username),
		zap.String("remote_addr", c.ClientIP()))

	resp, err := h.APIFor(c).Login(c.Request.Context(), username, password)
	if err != nil {
		h.Logger.Warn("Login failed", zap.String("username", username), zap.Error(err))
		h.RenderPage(c, http.StatusUnauthorized, "登录", "登录",
			pages.LoginPage(models.LoginForm{Username: username, Failed: true}))
		return
	}

	token, err := models.LoginToken(resp.Body)
	if err != nil {
		h.Logger.Error("Login answer carries no token", zap.String("username", username), zap.Error(err))
		h.Notify(c, notify.Notification{
			Level:   notify.LevelError,
			Message: notify.DefaultMessage(h.Language(c)),
		})
		h.RenderPage(c, http.StatusBadGateway, "登录", "登录",
			pages.LoginPage(models.LoginForm{Username: username, Failed: true}))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.TokenCookie, token, 0, "/", "", h.SecureCookie, false)

	h.Logger.Info("Successful login", zap.String("username", username))
	c.Redirect(http.StatusSeeOther, "/home")
}

// Logout drops the token cookie. The backend is not told.
func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.TokenCookie, "", -1, "/", "", h.SecureCookie, false)
	c.Redirect(http.StatusSeeOther, "/index")
}
