package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Login styles observed on the backend. The admin style posts a form to
// /admin/login, the auth style posts JSON to /auth/login.
const (
	LoginStyleAdmin = "admin"
	LoginStyleAuth  = "auth"
)

// DefaultSessionSecret signs session cookies when SESSION_SECRET is unset.
const DefaultSessionSecret = "moxc-web-session-secret"

// Proxy rewrite modes.
const (
	RewriteStrip        = "strip"
	RewritePreserveAuth = "preserve-auth"
)

type APIConfig struct {
	BaseURL     string
	LoginStyle  string
	TokenCookie string
	TokenHeader string
}

type ProxyConfig struct {
	Prefix  string
	Target  string
	Rewrite string
}

type ObservabilityConfig struct {
	ServiceName  string
	MetricsAddr  string
	PprofAddr    string
	OTELEndpoint string
}

type Config struct {
	API           APIConfig
	Proxy         ProxyConfig
	Observability ObservabilityConfig
	ServerPort    string
	SessionSecret string
	NotifyTTL     time.Duration
	LogLevel      string

	// LoginRateLimit login attempts are allowed per client per LoginRateWindow.
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty trusts none.
	TrustedProxies []string
}

func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL:     getEnvOrDefault("API_BASE_URL", "http://localhost:8080"),
			LoginStyle:  getEnvOrDefault("API_LOGIN_STYLE", LoginStyleAdmin),
			TokenCookie: getEnvOrDefault("TOKEN_COOKIE", "moxc-token"),
			TokenHeader: getEnvOrDefault("TOKEN_HEADER", "token"),
		},
		Proxy: ProxyConfig{
			Prefix:  getEnvOrDefault("PROXY_PREFIX", "/api"),
			Target:  getEnvOrDefault("PROXY_TARGET", "http://localhost:8080"),
			Rewrite: getEnvOrDefault("PROXY_REWRITE", RewriteStrip),
		},
		Observability: ObservabilityConfig{
			ServiceName:  getEnvOrDefault("SERVICE_NAME", "moxc-web"),
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			PprofAddr:    getEnvOrDefault("PPROF_ADDR", "localhost:6060"),
			OTELEndpoint: getEnvOrDefault("OTEL_ENDPOINT", "otel-collector:4318"),
		},
		ServerPort:    getEnvOrDefault("SERVER_PORT", "8091"),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", DefaultSessionSecret),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),

		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
	}

	ttl, err := time.ParseDuration(getEnvOrDefault("NOTIFY_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TTL: %w", err)
	}
	cfg.NotifyTTL = ttl

	limit, err := strconv.Atoi(getEnvOrDefault("LOGIN_RATE_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}
	cfg.LoginRateLimit = limit

	window, err := time.ParseDuration(getEnvOrDefault("LOGIN_RATE_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_WINDOW: %w", err)
	}
	cfg.LoginRateWindow = window

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that would otherwise only fail on first use.
func (c *Config) Validate() error {
	if _, err := parseAbsoluteURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if _, err := parseAbsoluteURL(c.Proxy.Target); err != nil {
		return fmt.Errorf("invalid PROXY_TARGET: %w", err)
	}

	switch c.API.LoginStyle {
	case LoginStyleAdmin, LoginStyleAuth:
	default:
		return fmt.Errorf("API_LOGIN_STYLE must be %q or %q, got %q", LoginStyleAdmin, LoginStyleAuth, c.API.LoginStyle)
	}

	switch c.Proxy.Rewrite {
	case RewriteStrip, RewritePreserveAuth:
	default:
		return fmt.Errorf("PROXY_REWRITE must be %q or %q, got %q", RewriteStrip, RewritePreserveAuth, c.Proxy.Rewrite)
	}

	if !strings.HasPrefix(c.Proxy.Prefix, "/") {
		return fmt.Errorf("PROXY_PREFIX must start with a slash, got %q", c.Proxy.Prefix)
	}
	if c.API.TokenCookie == "" || c.API.TokenHeader == "" {
		return fmt.Errorf("TOKEN_COOKIE and TOKEN_HEADER must not be empty")
	}
	if c.NotifyTTL <= 0 {
		return fmt.Errorf("NOTIFY_TTL must be positive, got %s", c.NotifyTTL)
	}
	if c.LoginRateLimit < 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must not be negative, got %d", c.LoginRateLimit)
	}
	if c.LoginRateLimit > 0 && c.LoginRateWindow <= 0 {
		return fmt.Errorf("LOGIN_RATE_WINDOW must be positive, got %s", c.LoginRateWindow)
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is neither an IP nor a CIDR", p)
		}
	}

	return nil
}

func parseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	return u, nil
}

// splitList parses a comma separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
