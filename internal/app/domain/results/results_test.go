package results_test

import (
	"net/http"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/moxc-web/internal/app/domain/domaintest"
	"github.com/FACorreiaa/moxc-web/internal/app/domain/results"
)

func newResults(t *testing.T, backend http.HandlerFunc) *domaintest.Harness {
	h := domaintest.New(t, backend)
	h.Engine.GET("/result", results.NewResultsHandlers(h.Base).ShowResultPage)
	return h
}

func TestShowResultPage_LookupForm(t *testing.T) {
	h := newResults(t, func(w http.ResponseWriter, r *http.Request) {})

	w := h.Get("/result")
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(`form[action="/result"] input[name="id"]`).Length())
	assert.Empty(t, h.Calls())
}

func TestShowResultPage_EscapesID(t *testing.T) {
	h := newResults(t, func(w http.ResponseWriter, r *http.Request) {
		domaintest.JSON(w, http.StatusOK, `{"code":0,"data":{"score":"88","type":"ENFP"}}`)
	})

	w := h.Get("/result?id=a%2Fb")
	require.Equal(t, http.StatusOK, w.Code)

	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, "/test/result/a%2Fb", calls[0].Path)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("#result dt").Length())
	assert.Contains(t, doc.Find("#result").Text(), "ENFP")
}

func TestShowResultPage_NotFound(t *testing.T) {
	h := newResults(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	w := h.Get("/result?id=missing")
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("#result").Length())
	assert.Equal(t, 1, doc.Find(`[role="alert"][data-level="error"]`).Length())
}
