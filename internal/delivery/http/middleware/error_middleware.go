package middleware

import (
	"errors"
	"net/http"

	"go-jobmatch-web/internal/delivery/http/response"
	"go-jobmatch-web/internal/session"
	"go-jobmatch-web/pkg/apperror"
	"go-jobmatch-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ValidationError carries per-field messages from form binding.
type ValidationError struct {
	*apperror.AppError
	Fields map[string]string
}

func (e *ValidationError) Unwrap() error {
	return e.AppError
}

// ErrorHandler turns the last handler error into the JSON envelope or, for
// pages, a notice on the next view. Unauthorized clears the session and sends
// the browser to the login view; this happens at most once per request.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		holder := session.FromContext(c.Request.Context())
		invalidated := holder != nil && holder.Invalidated()

		if c.Writer.Written() {
			if len(c.Errors) > 0 {
				logger.Log.WarnContext(c.Request.Context(), "error after response was written", "error", c.Errors.Last().Err)
			}
			return
		}

		if len(c.Errors) == 0 {
			if invalidated {
				response.RedirectToLogin(c, "")
			}
			return
		}

		err := c.Errors.Last().Err
		if apperror.IsUnauthorized(err) || invalidated {
			if holder != nil {
				holder.Invalidate()
			}
			response.RedirectToLogin(c, unauthorizedMessage(err))
			return
		}

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			// SECURITY: Never expose internal error details to clients.
			logger.Log.ErrorContext(c.Request.Context(), "unhandled error", "error", err, "path", c.Request.URL.Path)
			appErr = apperror.Internal(err)
			appErr.Message = "An unexpected error occurred. Please try again later."
		} else if appErr.Err != nil || appErr.Code >= http.StatusInternalServerError {
			logger.Log.WarnContext(c.Request.Context(), "request failed",
				"code", appErr.Code,
				"kind", appErr.Kind,
				"error", err,
				"path", c.Request.URL.Path,
			)
		}

		var fields map[string]string
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			fields = validationErr.Fields
		}

		if response.WantsJSON(c) {
			response.Error(c, appErr.Code, appErr.Message, response.ErrorBody{
				Message: appErr.Message,
				Kind:    string(appErr.Kind),
				Fields:  fields,
			})
			return
		}

		// Pages that fail to load show the error view; form posts go back with a notice.
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.HTML(appErr.Code, "error.html", response.View{
				Data:    appErr,
				Session: sessionOf(holder),
				Path:    c.Request.URL.Path,
			})
			return
		}
		response.Redirect(c, response.Back(c, "/"), "error", appErr.Message)
	}
}

func unauthorizedMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != http.StatusText(http.StatusUnauthorized) {
		return appErr.Message
	}
	return ""
}
