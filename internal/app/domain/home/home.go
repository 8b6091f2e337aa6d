package home

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/app/domain"
	"github.com/FACorreiaa/moxc-web/internal/app/domain/auth"
	"github.com/FACorreiaa/moxc-web/internal/app/models"
	"github.com/FACorreiaa/moxc-web/internal/app/pages"
)

type HomeHandlers struct {
	*domain.BaseHandler
}

func NewHomeHandlers(base *domain.BaseHandler) *HomeHandlers {
	return &HomeHandlers{BaseHandler: base}
}

func (h *HomeHandlers) ShowIndexPage(c *gin.Context) {
	h.RenderPage(c, http.StatusOK, "首页", "首页", pages.IndexPage(h.SignedIn(c)))
}

// ShowHomePage shows the profile of the signed-in user. A failed profile call
// has already been queued as a notification, so the page renders anyway.
func (h *HomeHandlers) ShowHomePage(c *gin.Context) {
	var view models.HomeView

	resp, err := h.APIFor(c).GetInfo(c.Request.Context())
	if err != nil {
		h.Logger.Warn("Failed to load profile", zap.Error(err))
	} else {
		view.Profile = models.Fields(resp.Body, "info")
	}

	if token, err := c.Cookie(h.TokenCookie); err == nil && token != "" {
		if info, ok := auth.Peek(token, time.Now()); ok {
			view.Token = info
		}
	}

	h.RenderPage(c, http.StatusOK, "我的", "我的", pages.HomePage(view))
}

func (h *HomeHandlers) ShowNotFoundPage(c *gin.Context) {
	h.RenderPage(c, http.StatusNotFound, "页面不存在", "", pages.NotFoundPage(c.Request.URL.Path))
}
