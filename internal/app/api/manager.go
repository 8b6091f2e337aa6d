package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/FACorreiaa/moxc-web/internal/app/apiclient"
	"github.com/FACorreiaa/moxc-web/internal/pkg/config"
)

// Credentials are built for a single login call and never kept.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login posts the credentials. The admin endpoint only accepts
// form-urlencoded data; the auth endpoint takes JSON.
func (s *Service) Login(ctx context.Context, username, password string) (*apiclient.Response, error) {
	if s.loginStyle == config.LoginStyleAuth {
		return s.client.Do(ctx, http.MethodPost, "/auth/login",
			apiclient.JSON(Credentials{Username: username, Password: password}))
	}

	params := url.Values{}
	params.Set("username", username)
	params.Set("password", password)
	return s.client.Do(ctx, http.MethodPost, "/admin/login", apiclient.Form(params))
}

// GetInfo fetches the signed-in manager's profile.
func (s *Service) GetInfo(ctx context.Context) (*apiclient.Response, error) {
	return s.client.Do(ctx, http.MethodPost, "/admin/getinfo", apiclient.EmptyForm())
}
