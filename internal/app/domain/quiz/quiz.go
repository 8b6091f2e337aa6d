package quiz

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/app/domain"
	"github.com/FACorreiaa/moxc-web/internal/app/models"
	"github.com/FACorreiaa/moxc-web/internal/app/notify"
	"github.com/FACorreiaa/moxc-web/internal/app/pages"
)

type QuizHandlers struct {
	*domain.BaseHandler
}

func NewQuizHandlers(base *domain.BaseHandler) *QuizHandlers {
	return &QuizHandlers{BaseHandler: base}
}

func (h *QuizHandlers) ShowSelectTestPage(c *gin.Context) {
	h.RenderPage(c, http.StatusOK, "选择测试", "选择测试", pages.SelectTestPage(models.TestVersions))
}

// SelectTest sends the browser to the paper of the chosen version.
func (h *QuizHandlers) SelectTest(c *gin.Context) {
	version := c.PostForm("version")
	if !slices.Contains(models.TestVersions, version) {
		h.Logger.Warn("Unknown test version", zap.String("version", version))
		h.RenderPage(c, http.StatusBadRequest, "选择测试", "选择测试", pages.SelectTestPage(models.TestVersions))
		return
	}
	c.Redirect(http.StatusSeeOther, "/test?version="+url.QueryEscape(version))
}

// ShowTestPaper loads and renders the questions of a version. Without a
// version the first one is used.
func (h *QuizHandlers) ShowTestPaper(c *gin.Context) {
	version := c.Query("version")
	if version == "" {
		version = models.TestVersions[0]
	}

	paper := models.TestPaper{Version: version}
	resp, err := h.APIFor(c).GetTestQuestions(c.Request.Context(), version)
	if err != nil {
		h.Logger.Warn("Failed to load questions", zap.String("version", version), zap.Error(err))
		h.RenderPage(c, http.StatusOK, version, "选择测试", pages.TestPaperPage(paper))
		return
	}

	questions, err := models.ParseQuestions(resp.Body)
	if err != nil {
		h.Logger.Warn("Unreadable questions", zap.String("version", version), zap.Error(err))
		h.Notify(c, notify.Notification{Level: notify.LevelWarning, Message: notify.DefaultMessage(h.Language(c))})
	}
	paper.Questions = questions

	h.RenderPage(c, http.StatusOK, version, "选择测试", pages.TestPaperPage(paper))
}

// SubmitTest posts the answers of a paper and redirects to the stored result.
func (h *QuizHandlers) SubmitTest(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	submission := BuildSubmission(c.Request.PostForm)

	resp, err := h.APIFor(c).SubmitTestAnswers(c.Request.Context(), submission)
	if err != nil {
		h.Logger.Warn("Failed to submit answers",
			zap.String("version", submission.Version),
			zap.Int("answers", len(submission.Answers)),
			zap.Error(err))
		c.Redirect(http.StatusSeeOther, "/test?version="+url.QueryEscape(submission.Version))
		return
	}

	id, err := models.SubmittedTestID(resp.Body)
	if err != nil {
		h.Logger.Warn("Submission answer carries no test id", zap.Error(err))
		h.Notify(c, notify.Notification{Level: notify.LevelInfo, Message: "答案已提交"})
		c.Redirect(http.StatusSeeOther, "/result")
		return
	}

	h.Notify(c, notify.Notification{Level: notify.LevelSuccess, Message: "答案已提交"})
	c.Redirect(http.StatusSeeOther, "/result?id="+url.QueryEscape(id))
}

// BuildSubmission collects the "q:<id>" fields of a posted paper, ordered by
// question id.
func BuildSubmission(form url.Values) models.Submission {
	s := models.Submission{Version: form.Get("version"), Answers: []models.Answer{}}
	for key, values := range form {
		id, ok := strings.CutPrefix(key, pages.AnswerField(""))
		if !ok || id == "" || len(values) == 0 {
			continue
		}
		s.Answers = append(s.Answers, models.Answer{QuestionID: id, Answer: values[0]})
	}
	slices.SortFunc(s.Answers, func(a, b models.Answer) int {
		return strings.Compare(a.QuestionID, b.QuestionID)
	})
	return s
}
