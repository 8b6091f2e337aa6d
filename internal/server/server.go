package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/app/api"
	"github.com/FACorreiaa/moxc-web/internal/app/apiclient"
	"github.com/FACorreiaa/moxc-web/internal/app/middleware"
	"github.com/FACorreiaa/moxc-web/internal/app/notify"
	"github.com/FACorreiaa/moxc-web/internal/app/proxy"
	"github.com/FACorreiaa/moxc-web/internal/pkg/config"
	"github.com/FACorreiaa/moxc-web/internal/routes"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	deps   routes.Dependencies
	router http.Handler
}

// New builds the backend client, the notification center and the API proxy.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	if cfg.SessionSecret == config.DefaultSessionSecret {
		logger.Warn("SESSION_SECRET not set, using default (INSECURE - set environment variable in production)")
	}

	deps, err := s.setupBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to setup backend access: %w", err)
	}
	s.deps = deps

	return s, nil
}

func (s *Server) setupBackend() (routes.Dependencies, error) {
	client, err := apiclient.New(s.cfg.API.BaseURL,
		apiclient.WithHeaderName(s.cfg.API.TokenHeader),
		apiclient.WithLogger(s.logger))
	if err != nil {
		return routes.Dependencies{}, err
	}

	rules, err := proxy.RulesFor(s.cfg.Proxy.Prefix, s.cfg.Proxy.Target, s.cfg.Proxy.Rewrite)
	if err != nil {
		return routes.Dependencies{}, err
	}

	s.logger.Info("Backend configured",
		zap.String("api_base_url", s.cfg.API.BaseURL),
		zap.String("login_style", s.cfg.API.LoginStyle),
		zap.String("proxy_prefix", s.cfg.Proxy.Prefix),
		zap.String("proxy_target", s.cfg.Proxy.Target),
		zap.String("proxy_rewrite", s.cfg.Proxy.Rewrite))

	var limiter *middleware.RateLimiter
	if s.cfg.LoginRateLimit > 0 {
		limiter = middleware.NewRateLimiter(s.logger, s.cfg.LoginRateLimit, s.cfg.LoginRateWindow)
	}

	return routes.Dependencies{
		API:         api.NewService(client, s.cfg.API.LoginStyle),
		Center:      notify.NewCenter(s.cfg.NotifyTTL, s.logger),
		TokenCookie: s.cfg.API.TokenCookie,
		Proxy:       proxy.New(rules, s.logger),
		ProxyPrefix: s.cfg.Proxy.Prefix,

		LoginLimiter: limiter,
	}, nil
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// Dependencies returns what the page handlers are built from.
func (s *Server) Dependencies() routes.Dependencies {
	return s.deps
}

// GetLogger returns the logger instance
func (s *Server) GetLogger() *zap.Logger {
	return s.logger
}

// GetConfig returns the configuration
func (s *Server) GetConfig() *config.Config {
	return s.cfg
}
