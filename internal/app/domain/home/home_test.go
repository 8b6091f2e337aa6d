package home_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/moxc-web/internal/app/domain/domaintest"
	"github.com/FACorreiaa/moxc-web/internal/app/domain/home"
)

func newHome(t *testing.T, backend http.HandlerFunc) *domaintest.Harness {
	h := domaintest.New(t, backend)
	handlers := home.NewHomeHandlers(h.Base)
	h.Engine.GET("/index", handlers.ShowIndexPage)
	h.Engine.GET("/home", handlers.ShowHomePage)
	h.Engine.NoRoute(handlers.ShowNotFoundPage)
	return h
}

func navNames(doc *goquery.Document) []string {
	var names []string
	doc.Find("nav a").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})
	return names
}

func TestShowIndexPage_Navigation(t *testing.T) {
	h := newHome(t, func(w http.ResponseWriter, r *http.Request) {})

	w := h.Get("/index")
	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"首页", "登录"}, navNames(doc))
	assert.Equal(t, 0, doc.Find(`form[action="/logout"]`).Length())

	h.SignIn("tok-123")
	w = h.Get("/index")
	doc, err = goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"首页", "选择测试", "我的"}, navNames(doc))
	assert.Equal(t, 1, doc.Find(`form[action="/logout"]`).Length())
	assert.Empty(t, h.Calls())
}

func TestShowHomePage_Profile(t *testing.T) {
	h := newHome(t, func(w http.ResponseWriter, r *http.Request) {
		domaintest.JSON(w, http.StatusOK, `{"code":0,"data":{"name":"Alice","role":"admin"}}`)
	})
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "7",
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	h.SignIn(token)

	w := h.Get("/home")
	require.Equal(t, http.StatusOK, w.Code)

	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/admin/getinfo", calls[0].Path)
	assert.Equal(t, token, calls[0].Token)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("#profile dt").Length())
	assert.Contains(t, doc.Find("#profile").Text(), "Alice")
	assert.Contains(t, doc.Find("#token").Text(), "alice")
	assert.Equal(t, 0, doc.Find(`[role="alert"]`).Length())
}

func TestShowHomePage_BackendDown(t *testing.T) {
	h := newHome(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	h.SignIn("opaque")

	w := h.Get("/home")
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(`[role="alert"][data-level="error"]`).Length())
	assert.Equal(t, 0, doc.Find("#profile").Length())
	assert.Equal(t, 0, doc.Find("#token").Length())

	w = h.Get("/home")
	doc, err = goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(`[role="alert"]`).Length(), "each failure is shown once")
}

func TestShowNotFoundPage(t *testing.T) {
	h := newHome(t, func(w http.ResponseWriter, r *http.Request) {})

	w := h.Get("/no/such/page")
	require.Equal(t, http.StatusNotFound, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(`[data-page="not-found"]`).Length())
	assert.Equal(t, "/no/such/page", doc.Find(`[data-page="not-found"] code`).Text())
}
