// Package proxy forwards browser calls under the API prefix to the backend,
// rewriting the path prefix the way the frontend dev server did.
package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/app/observability/metrics"
	"github.com/FACorreiaa/moxc-web/internal/pkg/config"
)

// Rule forwards every path under Prefix to Target. When Strip is set the
// prefix is removed from the forwarded path. ChangeOrigin sends the target's
// host as the Host header instead of the browser's.
type Rule struct {
	Prefix       string
	Target       *url.URL
	Strip        bool
	ChangeOrigin bool
}

// Matches reports whether path falls under the rule's prefix, on a segment
// boundary: /api matches /api and /api/x but not /apix.
func (r Rule) Matches(path string) bool {
	if !strings.HasPrefix(path, r.Prefix) {
		return false
	}
	rest := path[len(r.Prefix):]
	return rest == "" || rest[0] == '/' || strings.HasSuffix(r.Prefix, "/")
}

// Rewrite returns the path forwarded upstream.
func (r Rule) Rewrite(path string) string {
	if !r.Strip {
		return path
	}
	rest := strings.TrimPrefix(path, r.Prefix)
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return rest
}

// RulesFor builds the rule set of a rewrite mode.
//
//	strip:         /api/x -> /x
//	preserve-auth: /api/auth/x -> /api/auth/x, /api/admin/x -> /admin/x,
//	               anything else under /api is stripped
func RulesFor(prefix, target, mode string) ([]Rule, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy target: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy target %q must be absolute", target)
	}
	prefix = "/" + strings.Trim(prefix, "/")

	switch mode {
	case config.RewriteStrip:
		return []Rule{
			{Prefix: prefix, Target: u, Strip: true, ChangeOrigin: true},
		}, nil
	case config.RewritePreserveAuth:
		return []Rule{
			{Prefix: prefix + "/auth", Target: u, Strip: false, ChangeOrigin: true},
			{Prefix: prefix + "/admin", Target: u, Strip: true, ChangeOrigin: true},
			{Prefix: prefix, Target: u, Strip: true, ChangeOrigin: true},
		}, nil
	default:
		return nil, fmt.Errorf("unknown proxy rewrite mode %q", mode)
	}
}

type route struct {
	rule    Rule
	handler *httputil.ReverseProxy
}

// Proxy is an http.Handler that dispatches to the longest matching rule.
type Proxy struct {
	routes []route
	logger *zap.Logger
}

func New(rules []Rule, logger *zap.Logger) *Proxy {
	if logger == nil {
		logger = zap.NewNop()
	}

	sorted := append([]Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})

	p := &Proxy{logger: logger}
	for _, rule := range sorted {
		p.routes = append(p.routes, route{rule: rule, handler: p.reverseProxy(rule)})
	}
	return p
}

// Match returns the rule that would serve path.
func (p *Proxy) Match(path string) (Rule, bool) {
	for _, rt := range p.routes {
		if rt.rule.Matches(path) {
			return rt.rule, true
		}
	}
	return Rule{}, false
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, rt := range p.routes {
		if !rt.rule.Matches(r.URL.Path) {
			continue
		}
		metrics.Get().ProxyRequestsTotal.Add(r.Context(), 1,
			metric.WithAttributes(attribute.String("rule", rt.rule.Prefix)))
		rt.handler.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func (p *Proxy) reverseProxy(rule Rule) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = rule.Rewrite(pr.In.URL.Path)
			pr.Out.URL.RawPath = ""
			if pr.In.URL.RawPath != "" {
				pr.Out.URL.RawPath = rule.Rewrite(pr.In.URL.RawPath)
			}
			pr.SetURL(rule.Target)
			pr.SetXForwarded()
			if !rule.ChangeOrigin {
				pr.Out.Host = pr.In.Host
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			p.logger.Error("Proxy upstream error",
				zap.String("path", r.URL.Path),
				zap.String("target", rule.Target.String()),
				zap.Error(err))
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}
