package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/moxc-web/internal/app/models"
)

var usernameClaims = []string{"username", "userName", "name"}

// Peek reads the claims of a JWT without verifying its signature. The backend
// owns the token; what Peek returns is for display only. ok is false when the
// token is not a JWT.
func Peek(token string, now time.Time) (*models.TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}

	info := &models.TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	for _, key := range usernameClaims {
		if v, ok := claims[key].(string); ok && v != "" {
			info.Username = v
			break
		}
	}
	if info.Username == "" {
		info.Username = info.Subject
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		info.Expired = now.After(exp.Time)
	}
	return info, true
}
