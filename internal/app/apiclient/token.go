package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// TokenSource reads the auth token from wherever cookies are stored. An empty
// string means there is no token and no header is sent.
type TokenSource interface {
	Token(ctx context.Context) string
}

type TokenSourceFunc func(ctx context.Context) string

func (f TokenSourceFunc) Token(ctx context.Context) string { return f(ctx) }

func NoToken() TokenSource {
	return TokenSourceFunc(func(context.Context) string { return "" })
}

func StaticToken(token string) TokenSource {
	return TokenSourceFunc(func(context.Context) string { return token })
}

// RequestCookies reads the named cookie from an incoming browser request.
func RequestCookies(r *http.Request, name string) TokenSource {
	return TokenSourceFunc(func(context.Context) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	})
}

// JarToken reads the named cookie stored in jar for u.
func JarToken(jar http.CookieJar, u *url.URL, name string) TokenSource {
	return TokenSourceFunc(func(context.Context) string {
		for _, cookie := range jar.Cookies(u) {
			if cookie.Name == name {
				return cookie.Value
			}
		}
		return ""
	})
}
