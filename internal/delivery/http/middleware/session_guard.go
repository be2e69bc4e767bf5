package middleware

import (
	"net/http"

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/internal/session"
	"go-jobmatch-web/pkg/security"

	"github.com/gin-gonic/gin"
)

// RequireSession lets the request through only when a credential is cached.
func RequireSession() gin.HandlerFunc {
	return guard("")
}

// RequireRole additionally requires the cached role to equal role. A missing
// credential goes to the login view, a different role goes home.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return guard(role)
}

func guard(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionOf(session.FromContext(c.Request.Context()))

		decision := session.Decide(sess, role)
		if decision == session.Allow {
			c.Next()
			return
		}

		if decision == session.RedirectHome {
			security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
				Event:       security.EventRoleMismatch,
				SubjectType: "role",
				IP:          c.ClientIP(),
				UserAgent:   c.Request.UserAgent(),
				RequestID:   requestIDOf(c),
				Details: map[string]any{
					"required": string(role),
					"cached":   string(sess.Role),
					"path":     c.Request.URL.Path,
				},
			})
		}

		c.Redirect(http.StatusSeeOther, decision.Location())
		c.Abort()
	}
}
