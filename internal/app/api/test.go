package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/FACorreiaa/moxc-web/internal/app/apiclient"
)

// GetTestQuestions fetches the questions of a test version, e.g. "简洁版".
func (s *Service) GetTestQuestions(ctx context.Context, version string) (*apiclient.Response, error) {
	return s.client.Do(ctx, http.MethodPost, "/test/questions",
		apiclient.JSON(map[string]string{"version": version}))
}

// SubmitTestAnswers posts a fully built submission as-is.
func (s *Service) SubmitTestAnswers(ctx context.Context, submission any) (*apiclient.Response, error) {
	return s.client.Do(ctx, http.MethodPost, "/test/submit", apiclient.JSON(submission))
}

func (s *Service) GetTestResult(ctx context.Context, testID string) (*apiclient.Response, error) {
	return s.client.Do(ctx, http.MethodGet, "/test/result/"+url.PathEscape(testID), apiclient.NoBody())
}
