package middleware

import (
	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/internal/session"
	"go-jobmatch-web/pkg/security"

	"github.com/gin-gonic/gin"
)

// LoadSession reads the credential cookies once and binds the request's
// session holder to the request context for the backend client.
func LoadSession(store *session.CookieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		holder := store.Begin(c.Writer, c.Request)
		holder.OnInvalidate(func(previous domain.Session) {
			security.DefaultLogger().LogSessionInvalidated(
				c.Request.Context(),
				string(previous.Role),
				c.ClientIP(),
				requestIDOf(c),
				c.Request.URL.Path,
			)
		})

		c.Set(string(domain.KeySession), holder)
		c.Request = c.Request.WithContext(session.WithHolder(c.Request.Context(), holder))
		c.Next()
	}
}

func sessionOf(holder *session.Holder) domain.Session {
	if holder == nil {
		return domain.Session{}
	}
	return holder.Session()
}
