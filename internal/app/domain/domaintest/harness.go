// Package domaintest wires page handlers against a fake backend for tests.
package domaintest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/FACorreiaa/moxc-web/internal/app/api"
	"github.com/FACorreiaa/moxc-web/internal/app/apiclient"
	"github.com/FACorreiaa/moxc-web/internal/app/domain"
	"github.com/FACorreiaa/moxc-web/internal/app/middleware"
	"github.com/FACorreiaa/moxc-web/internal/app/notify"
	"github.com/FACorreiaa/moxc-web/internal/pkg/config"
)

const TokenCookie = "moxc-token"

// Call is one request the fake backend received.
type Call struct {
	Method      string
	Path        string
	ContentType string
	Token       string
	Body        string
}

// Harness is a gin engine with sessions in front of handlers built on Base.
// Cookies set by responses are kept and sent with later requests.
type Harness struct {
	Base   *domain.BaseHandler
	Engine *gin.Engine
	Logs   *observer.ObservedLogs

	mu      sync.Mutex
	calls   []Call
	cookies map[string]*http.Cookie
}

// New starts backend and builds a harness that talks to it.
func New(t *testing.T, backend http.HandlerFunc) *Harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &Harness{cookies: map[string]*http.Cookie{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		h.mu.Lock()
		h.calls = append(h.calls, Call{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			ContentType: r.Header.Get("Content-Type"),
			Token:       r.Header.Get(apiclient.DefaultHeaderName),
			Body:        string(body),
		})
		h.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		backend(w, r)
	}))
	t.Cleanup(srv.Close)

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	client, err := apiclient.New(srv.URL,
		apiclient.WithHTTPClient(srv.Client()),
		apiclient.WithLogger(logger))
	require.NoError(t, err)

	h.Base = domain.NewBaseHandler(logger,
		api.NewService(client, config.LoginStyleAdmin),
		notify.NewCenter(time.Minute, logger),
		TokenCookie)
	h.Logs = logs

	h.Engine = gin.New()
	h.Engine.Use(
		sessions.Sessions("moxc-session", cookie.NewStore([]byte("domaintest-secret"))),
		middleware.SessionMiddleware(),
	)
	return h
}

// SignIn stores a token cookie as a successful login would.
func (h *Harness) SignIn(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cookies[TokenCookie] = &http.Cookie{Name: TokenCookie, Value: token}
}

// Cookie returns the value of a kept cookie.
func (h *Harness) Cookie(name string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.cookies[name]
	if !ok {
		return "", false
	}
	return c.Value, true
}

// Calls returns what the backend received so far.
func (h *Harness) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

func (h *Harness) Get(target string) *httptest.ResponseRecorder {
	return h.serve(httptest.NewRequest(http.MethodGet, target, nil))
}

func (h *Harness) PostForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", apiclient.ContentTypeForm)
	return h.serve(req)
}

func (h *Harness) serve(req *http.Request) *httptest.ResponseRecorder {
	h.mu.Lock()
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	h.mu.Unlock()

	w := httptest.NewRecorder()
	h.Engine.ServeHTTP(w, req)

	h.mu.Lock()
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(h.cookies, c.Name)
			continue
		}
		h.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	h.mu.Unlock()
	return w
}

// JSON writes body as a JSON answer.
func JSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
