package quiz_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/moxc-web/internal/app/domain/domaintest"
	"github.com/FACorreiaa/moxc-web/internal/app/domain/quiz"
	"github.com/FACorreiaa/moxc-web/internal/app/domain/results"
	"github.com/FACorreiaa/moxc-web/internal/app/models"
)

func newQuiz(t *testing.T, backend http.HandlerFunc) *domaintest.Harness {
	h := domaintest.New(t, backend)
	handlers := quiz.NewQuizHandlers(h.Base)
	h.Engine.GET("/select-test", handlers.ShowSelectTestPage)
	h.Engine.POST("/select-test", handlers.SelectTest)
	h.Engine.GET("/test", handlers.ShowTestPaper)
	h.Engine.POST("/test", handlers.SubmitTest)
	h.Engine.GET("/result", results.NewResultsHandlers(h.Base).ShowResultPage)
	return h
}

const questionsBody = `{"code":0,"data":[
	{"id":"1","content":"你更喜欢？","options":["独处","聚会"]},
	{"questionId":"2","question":"做决定时？","options":[{"key":"A","text":"理性"},{"key":"B","text":"感性"}]}
]}`

func TestShowSelectTestPage(t *testing.T) {
	h := newQuiz(t, func(w http.ResponseWriter, r *http.Request) {})

	w := h.Get("/select-test")
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	var versions []string
	doc.Find(`input[name="version"]`).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("value")
		versions = append(versions, v)
	})
	assert.Equal(t, models.TestVersions, versions)
}

func TestSelectTest(t *testing.T) {
	h := newQuiz(t, func(w http.ResponseWriter, r *http.Request) {})

	w := h.PostForm("/select-test", url.Values{"version": {"完整版"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/test?version="+url.QueryEscape("完整版"), w.Header().Get("Location"))

	w = h.PostForm("/select-test", url.Values{"version": {"unknown"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, h.Calls())
}

func TestShowTestPaper(t *testing.T) {
	h := newQuiz(t, func(w http.ResponseWriter, r *http.Request) {
		domaintest.JSON(w, http.StatusOK, questionsBody)
	})
	h.SignIn("tok-1")

	w := h.Get("/test?version=" + url.QueryEscape("简洁版"))
	require.Equal(t, http.StatusOK, w.Code)

	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/test/questions", calls[0].Path)
	assert.Equal(t, "tok-1", calls[0].Token)
	assert.JSONEq(t, `{"version":"简洁版"}`, calls[0].Body)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("fieldset[data-question]").Length())
	assert.Equal(t, 2, doc.Find(`input[name="q:2"]`).Length())
	value, _ := doc.Find(`input[name="q:2"]`).First().Attr("value")
	assert.Equal(t, "A", value)
	version, _ := doc.Find(`input[name="version"]`).Attr("value")
	assert.Equal(t, "简洁版", version)
}

func TestShowTestPaper_DefaultVersion(t *testing.T) {
	h := newQuiz(t, func(w http.ResponseWriter, r *http.Request) {
		domaintest.JSON(w, http.StatusOK, questionsBody)
	})

	w := h.Get("/test")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, h.Calls(), 1)
	assert.JSONEq(t, `{"version":"简洁版"}`, h.Calls()[0].Body)
}

func TestShowTestPaper_BackendError(t *testing.T) {
	h := newQuiz(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	w := h.Get("/test?version=" + url.QueryEscape("简洁版"))
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("fieldset").Length())
	assert.Equal(t, 1, doc.Find(`[role="alert"][data-level="error"]`).Length())
	assert.Contains(t, doc.Find(`[role="alert"]`).Text(), "503")
}

func TestSubmitTest(t *testing.T) {
	h := newQuiz(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/test/submit":
			domaintest.JSON(w, http.StatusOK, `{"code":0,"data":{"testId":"r-9"}}`)
		case "/test/result/r-9":
			domaintest.JSON(w, http.StatusOK, `{"code":0,"data":{"type":"INTJ"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	h.SignIn("tok-1")

	w := h.PostForm("/test", url.Values{
		"version": {"简洁版"},
		"q:2":     {"B"},
		"q:1":     {"A"},
		"other":   {"ignored"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/result?id=r-9", w.Header().Get("Location"))

	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/test/submit", calls[0].Path)
	assert.Contains(t, calls[0].ContentType, "application/json")

	var sent models.Submission
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &sent))
	assert.Equal(t, models.Submission{
		Version: "简洁版",
		Answers: []models.Answer{{QuestionID: "1", Answer: "A"}, {QuestionID: "2", Answer: "B"}},
	}, sent)

	w = h.Get("/result?id=r-9")
	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(`[role="alert"][data-level="success"]`).Length())
	assert.Contains(t, doc.Find("#result").Text(), "INTJ")
}

func TestSubmitTest_Rejected(t *testing.T) {
	h := newQuiz(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/test/submit" {
			domaintest.JSON(w, http.StatusBadRequest, `{"code":400}`)
			return
		}
		domaintest.JSON(w, http.StatusOK, questionsBody)
	})

	w := h.PostForm("/test", url.Values{"version": {"完整版"}, "q:1": {"A"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/test?version="+url.QueryEscape("完整版"), w.Header().Get("Location"))

	w = h.Get(w.Header().Get("Location"))
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	alerts := doc.Find(`[role="alert"]`)
	require.Equal(t, 1, alerts.Length())
	assert.Contains(t, alerts.Text(), "400")
}

func TestBuildSubmission(t *testing.T) {
	form := url.Values{
		"version": {"完整版"},
		"q:b":     {"2"},
		"q:a":     {"1", "ignored"},
		"q:":      {"x"},
		"name":    {"y"},
	}

	got := quiz.BuildSubmission(form)

	assert.Equal(t, "完整版", got.Version)
	assert.Equal(t, []models.Answer{{QuestionID: "a", Answer: "1"}, {QuestionID: "b", Answer: "2"}}, got.Answers)
}
