package session

import (
	"net/http"
	"time"

	"go-jobmatch-web/internal/domain"
)

const (
	CookieToken    = "token"
	CookieUserType = "userType"
)

// CookieStore keeps the credential pair in two browser cookies.
type CookieStore struct {
	secure bool
	maxAge time.Duration
	now    func() time.Time
}

func NewCookieStore(secure bool, maxAge time.Duration) *CookieStore {
	return &CookieStore{secure: secure, maxAge: maxAge, now: time.Now}
}

// Read returns the cached pair. A role cookie without a token counts as no session.
func (s *CookieStore) Read(r *http.Request) domain.Session {
	var sess domain.Session
	if c, err := r.Cookie(CookieToken); err == nil {
		sess.Token = c.Value
	}
	if sess.Token == "" {
		return domain.Session{}
	}
	if c, err := r.Cookie(CookieUserType); err == nil {
		sess.Role = domain.Role(c.Value)
	}
	return sess
}

func (s *CookieStore) Write(w http.ResponseWriter, sess domain.Session) {
	maxAge := s.lifetime(sess.Token)
	http.SetCookie(w, s.cookie(CookieToken, sess.Token, maxAge))
	http.SetCookie(w, s.cookie(CookieUserType, string(sess.Role), maxAge))
}

func (s *CookieStore) Erase(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(CookieToken, "", -1))
	http.SetCookie(w, s.cookie(CookieUserType, "", -1))
}

// lifetime is the configured max age, shortened to the token's expiry when it has one.
func (s *CookieStore) lifetime(token string) int {
	maxAge := s.maxAge
	if claims, ok := ParseClaims(token); ok && !claims.ExpiresAt.IsZero() {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > 0 && remaining < maxAge {
			maxAge = remaining
		}
	}
	seconds := int(maxAge / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func (s *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
