package results

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/app/domain"
	"github.com/FACorreiaa/moxc-web/internal/app/models"
	"github.com/FACorreiaa/moxc-web/internal/app/pages"
)

type ResultsHandlers struct {
	*domain.BaseHandler
}

func NewResultsHandlers(base *domain.BaseHandler) *ResultsHandlers {
	return &ResultsHandlers{BaseHandler: base}
}

// ShowResultPage shows the stored result named by the id query parameter, or
// a lookup form when there is none.
func (h *ResultsHandlers) ShowResultPage(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		h.RenderPage(c, http.StatusOK, "测试结果", "", pages.ResultPage(models.ResultView{}))
		return
	}

	view := models.ResultView{ID: id}
	resp, err := h.APIFor(c).GetTestResult(c.Request.Context(), id)
	if err != nil {
		h.Logger.Warn("Failed to load test result", zap.String("test_id", id), zap.Error(err))
	} else {
		view.Fields = models.Fields(resp.Body, "result")
	}

	h.RenderPage(c, http.StatusOK, "测试结果", "", pages.ResultPage(view))
}
