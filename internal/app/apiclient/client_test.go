package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/FACorreiaa/moxc-web/internal/app/apiclient"
	"github.com/FACorreiaa/moxc-web/internal/app/notify"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects notifications in the order they were raised.
type recorder struct {
	mu   sync.Mutex
	list []notify.Notification
}

func (r *recorder) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, n)
}

func (r *recorder) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.list...)
}

type captured struct {
	method      string
	path        string
	contentType string
	token       string
	hasToken    bool
	body        string
}

func newBackend(t *testing.T, status int, respBody string) (*httptest.Server, *captured, *int32) {
	t.Helper()

	var calls int32
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		body, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.contentType = r.Header.Get("Content-Type")
		_, got.hasToken = r.Header["Token"]
		got.token = r.Header.Get("token")
		got.body = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Backend", "yes")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(server.Close)

	return server, got, &calls
}

func newClient(t *testing.T, server *httptest.Server, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	opts = append([]apiclient.Option{apiclient.WithHTTPClient(server.Client())}, opts...)
	c, err := apiclient.New(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := apiclient.New("/api")
	assert.Error(t, err)
}

func TestDo_ReturnsResponseUnchanged(t *testing.T) {
	server, got, calls := newBackend(t, http.StatusOK, `{"code":200,"data":{"x":1}}`)
	c := newClient(t, server)

	resp, err := c.Do(context.Background(), http.MethodGet, "/test/result/7", nil)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/test/result/7", got.path)
	assert.Empty(t, got.contentType)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header.Get("X-Backend"))
	assert.JSONEq(t, `{"code":200,"data":{"x":1}}`, string(resp.Body))

	var decoded struct {
		Data struct {
			X int `json:"x"`
		} `json:"data"`
	}
	require.NoError(t, resp.Decode(&decoded))
	assert.Equal(t, 1, decoded.Data.X)
}

func TestDo_TokenHeader(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		source    func(u *url.URL) apiclient.TokenSource
		wantToken string
		wantSent  bool
	}{
		{
			name:   "no token source",
			source: func(*url.URL) apiclient.TokenSource { return apiclient.NoToken() },
		},
		{
			name:      "static token",
			source:    func(*url.URL) apiclient.TokenSource { return apiclient.StaticToken("abc") },
			wantToken: "abc",
			wantSent:  true,
		},
		{
			name:   "empty static token",
			source: func(*url.URL) apiclient.TokenSource { return apiclient.StaticToken("") },
		},
		{
			name: "cookie on incoming request",
			source: func(*url.URL) apiclient.TokenSource {
				r := httptest.NewRequest(http.MethodGet, "/home", nil)
				r.AddCookie(&http.Cookie{Name: "moxc-token", Value: "from-cookie"})
				return apiclient.RequestCookies(r, "moxc-token")
			},
			wantToken: "from-cookie",
			wantSent:  true,
		},
		{
			name: "incoming request without cookie",
			source: func(*url.URL) apiclient.TokenSource {
				r := httptest.NewRequest(http.MethodGet, "/home", nil)
				r.AddCookie(&http.Cookie{Name: "other", Value: "x"})
				return apiclient.RequestCookies(r, "moxc-token")
			},
		},
		{
			name: "cookie jar",
			source: func(u *url.URL) apiclient.TokenSource {
				jar.SetCookies(u, []*http.Cookie{{Name: "moxc-token", Value: "jarred"}})
				return apiclient.JarToken(jar, u, "moxc-token")
			},
			wantToken: "jarred",
			wantSent:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, got, _ := newBackend(t, http.StatusOK, `{}`)
			u, err := url.Parse(server.URL)
			require.NoError(t, err)

			c := newClient(t, server, apiclient.WithTokenSource(tt.source(u)))
			_, err = c.Do(context.Background(), http.MethodPost, "/admin/getinfo", apiclient.EmptyForm())
			require.NoError(t, err)

			assert.Equal(t, tt.wantSent, got.hasToken)
			assert.Equal(t, tt.wantToken, got.token)
		})
	}
}

func TestDo_CustomHeaderName(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Auth-Token")
	}))
	t.Cleanup(server.Close)

	c := newClient(t, server,
		apiclient.WithTokenSource(apiclient.StaticToken("t1")),
		apiclient.WithHeaderName("X-Auth-Token"))

	_, err := c.Do(context.Background(), http.MethodGet, "/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "t1", header)
}

func TestDo_ContentTypes(t *testing.T) {
	tests := []struct {
		name     string
		body     apiclient.Body
		wantType string
		wantBody string
	}{
		{"form", apiclient.Form(url.Values{"username": {"ann"}, "password": {"pw"}}), apiclient.ContentTypeForm, "password=pw&username=ann"},
		{"empty form", apiclient.EmptyForm(), apiclient.ContentTypeForm, ""},
		{"json", apiclient.JSON(map[string]string{"version": "v1"}), apiclient.ContentTypeJSON, `{"version":"v1"}`},
		{"none", apiclient.NoBody(), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, got, _ := newBackend(t, http.StatusOK, `{}`)
			c := newClient(t, server)

			_, err := c.Do(context.Background(), http.MethodPost, "/x", tt.body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, got.contentType)
			assert.Equal(t, tt.wantBody, got.body)
		})
	}
}

func TestDo_BasePathIsKept(t *testing.T) {
	server, got, _ := newBackend(t, http.StatusOK, `{}`)
	c, err := apiclient.New(server.URL+"/api", apiclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodPost, "/test/submit", apiclient.JSON(struct{}{}))
	require.NoError(t, err)
	assert.Equal(t, "/api/test/submit", got.path)

	_, err = c.Do(context.Background(), http.MethodGet, "/test/result/"+url.PathEscape("a/b"), nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/test/result/a%2Fb", got.path)
}

func TestDo_StatusErrorNotifiesThenFails(t *testing.T) {
	server, _, calls := newBackend(t, http.StatusInternalServerError, `{"msg":"boom"}`)
	rec := &recorder{}
	c := newClient(t, server, apiclient.WithNotifier(rec))

	resp, err := c.Do(context.Background(), http.MethodPost, "/test/submit", apiclient.JSON(map[string]int{"a": 1}))
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "no retry")

	var se *apiclient.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.JSONEq(t, `{"msg":"boom"}`, string(se.Body))
	assert.EqualError(t, se, "Request failed with status code 500")

	notes := rec.all()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.LevelError, notes[0].Level)
	assert.Equal(t, "Request failed with status code 500", notes[0].Message)
}

func TestDo_NotificationPrecedesReturn(t *testing.T) {
	server, _, _ := newBackend(t, http.StatusUnauthorized, ``)
	notified := false
	c := newClient(t, server, apiclient.WithNotifier(notify.NotifierFunc(func(context.Context, notify.Notification) {
		notified = true
	})))

	_, err := c.Do(context.Background(), http.MethodPost, "/admin/getinfo", apiclient.EmptyForm())
	require.Error(t, err)
	assert.True(t, notified, "notification must be raised by the time the error is returned")
}

func TestDo_TransportErrorNotifies(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	httpClient := server.Client()
	server.Close()

	rec := &recorder{}
	c, err := apiclient.New(base, apiclient.WithHTTPClient(httpClient), apiclient.WithNotifier(rec))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, "/test/result/1", nil)
	require.Error(t, err)

	var se *apiclient.StatusError
	assert.False(t, errors.As(err, &se))

	notes := rec.all()
	require.Len(t, notes, 1)
	assert.Equal(t, err.Error(), notes[0].Message)
}

func TestDo_EncodingErrorNotifies(t *testing.T) {
	server, _, calls := newBackend(t, http.StatusOK, `{}`)
	rec := &recorder{}
	c := newClient(t, server, apiclient.WithNotifier(rec))

	_, err := c.Do(context.Background(), http.MethodPost, "/test/submit", apiclient.JSON(make(chan int)))
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	assert.Len(t, rec.all(), 1)
}

func TestWith_DoesNotMutateOriginal(t *testing.T) {
	server, got, _ := newBackend(t, http.StatusOK, `{}`)
	base := newClient(t, server)
	bound := base.With(apiclient.WithTokenSource(apiclient.StaticToken("bound")))

	_, err := bound.Do(context.Background(), http.MethodGet, "/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "bound", got.token)

	_, err = base.Do(context.Background(), http.MethodGet, "/x", nil)
	require.NoError(t, err)
	assert.False(t, got.hasToken)
}
