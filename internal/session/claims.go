package session

import (
	"github.com/golang-jwt/jwt/v5"

	"go-jobmatch-web/internal/domain"
)

// ParseClaims reads sub, email and exp without verifying the signature.
// The result only shapes cookie lifetime and display, never access.
func ParseClaims(token string) (domain.TokenClaims, bool) {
	if token == "" {
		return domain.TokenClaims{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.TokenClaims{}, false
	}

	var out domain.TokenClaims
	out.Subject, _ = claims.GetSubject()
	out.Email, _ = claims["email"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, true
}
