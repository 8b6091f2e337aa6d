// Package api has one function per backend endpoint. Each shapes the
// request and hands it to the apiclient; responses come back untouched.
package api

import (
	"github.com/FACorreiaa/moxc-web/internal/app/apiclient"
	"github.com/FACorreiaa/moxc-web/internal/pkg/config"
)

type Service struct {
	client     *apiclient.Client
	loginStyle string
}

// NewService binds the endpoint functions to client. loginStyle selects
// between the two login endpoints the backend has exposed.
func NewService(client *apiclient.Client, loginStyle string) *Service {
	if loginStyle == "" {
		loginStyle = config.LoginStyleAdmin
	}
	return &Service{client: client, loginStyle: loginStyle}
}

// With returns a Service whose client has opts applied.
func (s *Service) With(opts ...apiclient.Option) *Service {
	return &Service{client: s.client.With(opts...), loginStyle: s.loginStyle}
}
