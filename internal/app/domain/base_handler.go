package domain

import (
	"time"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/moxc-web/internal/app/api"
	"github.com/FACorreiaa/moxc-web/internal/app/apiclient"
	"github.com/FACorreiaa/moxc-web/internal/app/middleware"
	"github.com/FACorreiaa/moxc-web/internal/app/models"
	"github.com/FACorreiaa/moxc-web/internal/app/notify"
	"github.com/FACorreiaa/moxc-web/internal/app/observability/metrics"
	"github.com/FACorreiaa/moxc-web/internal/app/pages"
)

// BaseHandler holds what every page handler needs.
type BaseHandler struct {
	Logger      *zap.Logger
	API         *api.Service
	Center      *notify.Center
	TokenCookie string
}

func NewBaseHandler(logger *zap.Logger, service *api.Service, center *notify.Center, tokenCookie string) *BaseHandler {
	return &BaseHandler{
		Logger:      logger,
		API:         service,
		Center:      center,
		TokenCookie: tokenCookie,
	}
}

// APIFor binds the shared API service to the browser request: the token is
// read from the request cookie and failures are queued for its session.
func (h *BaseHandler) APIFor(c *gin.Context) *api.Service {
	return h.API.With(
		apiclient.WithTokenSource(apiclient.RequestCookies(c.Request, h.TokenCookie)),
		apiclient.WithNotifier(h.notifier(c)),
		apiclient.WithLanguage(h.Language(c)),
	)
}

// Notify queues n for the next page the session renders.
func (h *BaseHandler) Notify(c *gin.Context, n notify.Notification) {
	h.notifier(c).Notify(c.Request.Context(), n)
}

func (h *BaseHandler) notifier(c *gin.Context) notify.Notifier {
	if sid := middleware.GetSessionID(c); sid != "" && h.Center != nil {
		return h.Center.For(sid)
	}
	return notify.LogNotifier{Logger: h.Logger}
}

func (h *BaseHandler) Language(c *gin.Context) language.Tag {
	return notify.MatchLanguage(c.GetHeader("Accept-Language"))
}

func (h *BaseHandler) SignedIn(c *gin.Context) bool {
	return middleware.HasToken(c, h.TokenCookie)
}

func (h *BaseHandler) newLayoutData(c *gin.Context, title, activeNav string, content templ.Component) models.LayoutTempl {
	signedIn := h.SignedIn(c)
	nav := models.OfflineNav
	if signedIn {
		nav = models.MainNav
	}

	var pending []notify.Notification
	if sid := middleware.GetSessionID(c); sid != "" && h.Center != nil {
		pending = h.Center.Drain(sid)
	}

	return models.LayoutTempl{
		Title:         title,
		SignedIn:      signedIn,
		Nav:           nav,
		ActiveNav:     activeNav,
		Notifications: pending,
		Content:       content,
	}
}

// RenderPage renders content inside the layout with the given status.
func (h *BaseHandler) RenderPage(c *gin.Context, status int, title, activeNav string, content templ.Component) {
	start := time.Now()
	layout := pages.LayoutPage(h.newLayoutData(c, title, activeNav, content))

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := layout.Render(c.Request.Context(), c.Writer); err != nil {
		h.Logger.Error("Failed to render page", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	metrics.Get().TemplateRenderDuration.Record(c.Request.Context(), time.Since(start).Seconds())
}
