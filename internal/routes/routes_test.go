package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/app/api"
	"github.com/FACorreiaa/moxc-web/internal/app/apiclient"
	"github.com/FACorreiaa/moxc-web/internal/app/middleware"
	"github.com/FACorreiaa/moxc-web/internal/app/notify"
	"github.com/FACorreiaa/moxc-web/internal/app/proxy"
	"github.com/FACorreiaa/moxc-web/internal/pkg/config"
)

func newApp(t *testing.T, backend http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL, apiclient.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	rules, err := proxy.RulesFor("/api", srv.URL, config.RewriteStrip)
	require.NoError(t, err)

	r := gin.New()
	r.Use(
		sessions.Sessions("moxc-session", cookie.NewStore([]byte("routes-test"))),
		middleware.SessionMiddleware(),
	)
	require.NoError(t, Setup(r, Dependencies{
		API:         api.NewService(client, config.LoginStyleAdmin),
		Center:      notify.NewCenter(time.Minute, zap.NewNop()),
		TokenCookie: "moxc-token",
		Proxy:       proxy.New(rules, zap.NewNop()),
		ProxyPrefix: "/api",
	}, zap.NewNop()))
	return r
}

func TestSetup_Healthz(t *testing.T) {
	r := newApp(t, func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSetup_Pages(t *testing.T) {
	r := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"code":0,"data":{}}`)
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusFound},
		{"/index", http.StatusOK},
		{"/login", http.StatusOK},
		{"/select-test", http.StatusOK},
		{"/result", http.StatusOK},
		{"/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusFound {
				assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			}
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(`[data-page="not-found"]`).Length())
}

func TestSetup_MixedCasePath(t *testing.T) {
	r := newApp(t, func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/Login", nil))
	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.Equal(t, "/login", location)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, location, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("form[action='/login']").Length())
}

func TestSetup_LoginAction(t *testing.T) {
	r := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"code":0,"data":{"token":"t-1"}}`)
	})

	form := url.Values{"username": {"alice"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == "moxc-token" {
			token = c.Value
		}
	}
	assert.Equal(t, "t-1", token)
}

func TestSetup_Proxy(t *testing.T) {
	var gotPath, gotToken string
	r := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("token")
		w.WriteHeader(http.StatusAccepted)
	})

	for _, path := range []string{"/api/test/submit", "/api"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("token", "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code, path)
		assert.Equal(t, "abc", gotToken, path)
	}
	assert.Equal(t, "/", gotPath)
}

func TestSetup_RejectsRootProxyPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	err := Setup(gin.New(), Dependencies{
		Proxy:       http.NotFoundHandler(),
		ProxyPrefix: "/",
	}, zap.NewNop())
	assert.Error(t, err)
}
