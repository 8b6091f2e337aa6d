package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/app/api"
	"github.com/FACorreiaa/moxc-web/internal/app/domain"
	"github.com/FACorreiaa/moxc-web/internal/app/domain/auth"
	"github.com/FACorreiaa/moxc-web/internal/app/domain/home"
	"github.com/FACorreiaa/moxc-web/internal/app/domain/quiz"
	"github.com/FACorreiaa/moxc-web/internal/app/domain/results"
	"github.com/FACorreiaa/moxc-web/internal/app/middleware"
	"github.com/FACorreiaa/moxc-web/internal/app/notify"
)

type AppHandlers struct {
	Home    *home.HomeHandlers
	Auth    *auth.AuthHandlers
	Quiz    *quiz.QuizHandlers
	Results *results.ResultsHandlers
}

// Dependencies are the shared services the page handlers are built from.
type Dependencies struct {
	API          *api.Service
	Center       *notify.Center
	TokenCookie  string
	SecureCookie bool

	// LoginLimiter guards POST /login. Nil disables it.
	LoginLimiter *middleware.RateLimiter

	// Proxy serves ProxyPrefix and everything below it. Nil disables it.
	Proxy       http.Handler
	ProxyPrefix string
}

func Setup(r *gin.Engine, deps Dependencies, log *zap.Logger) error {
	handlers := setupDependencies(deps, log)
	return setupRouter(r, handlers, deps, log)
}

func setupDependencies(deps Dependencies, log *zap.Logger) *AppHandlers {
	baseHandler := domain.NewBaseHandler(log, deps.API, deps.Center, deps.TokenCookie)

	authHandlers := auth.NewAuthHandlers(baseHandler)
	authHandlers.SecureCookie = deps.SecureCookie

	return &AppHandlers{
		Home:    home.NewHomeHandlers(baseHandler),
		Auth:    authHandlers,
		Quiz:    quiz.NewQuizHandlers(baseHandler),
		Results: results.NewResultsHandlers(baseHandler),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers, deps Dependencies, log *zap.Logger) error {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Proxy != nil {
		prefix := strings.TrimRight(deps.ProxyPrefix, "/")
		if prefix == "" {
			return fmt.Errorf("routes: proxy prefix %q would shadow every page", deps.ProxyPrefix)
		}
		forward := gin.WrapH(deps.Proxy)
		r.Any(prefix, forward)
		r.Any(prefix+"/*path", forward)
		log.Info("API proxy mounted", zap.String("prefix", prefix))
	}

	pages := Pages{
		Result:    h.Results.ShowResultPage,
		TestPaper: h.Quiz.ShowTestPaper,
		TestHome:  h.Quiz.ShowSelectTestPage,
		Index:     h.Home.ShowIndexPage,
		Home:      h.Home.ShowHomePage,
		Login:     h.Auth.ShowLoginPage,
		NotFound:  h.Home.ShowNotFoundPage,
	}
	if err := DefaultTable.Register(r, pages, middleware.NoCache()); err != nil {
		return err
	}

	// Form actions
	if deps.LoginLimiter != nil {
		r.POST("/login", middleware.RateLimitMiddleware(deps.LoginLimiter), h.Auth.Login)
	} else {
		r.POST("/login", h.Auth.Login)
	}
	r.POST("/logout", h.Auth.Logout)
	r.POST("/select-test", h.Quiz.SelectTest)
	r.POST("/test", h.Quiz.SubmitTest)

	return nil
}
