package response

import (
	"net/http"
	"net/url"
	"strings"

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/internal/session"

	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorBody mirrors the backend's error object so the browser can read error.message.
type ErrorBody struct {
	Message string            `json:"message"`
	Kind    string            `json:"kind,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

const (
	FlashCookie = "flash"
	// CSRFKey is the gin context key holding the request's CSRF token.
	CSRFKey = "csrf_token"
)

// Flash is a one-shot, non-blocking notice shown on the next rendered view.
type Flash struct {
	Kind    string
	Message string
}

func requestID(c *gin.Context) string {
	if id, ok := c.Request.Context().Value(domain.KeyRequestID).(string); ok {
		return id
	}
	return c.GetString(string(domain.KeyRequestID))
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: requestID(c),
	})
}

// WantsJSON reports whether the caller prefers JSON over a rendered page.
func WantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// Render answers with the named template or, for JSON callers, the success
// envelope around data. A session cleared by a 401 earlier in the request
// turns the render into the login redirect.
func Render(c *gin.Context, code int, name, message string, data interface{}) {
	if holder := session.FromContext(c.Request.Context()); holder != nil && holder.Invalidated() {
		RedirectToLogin(c, "")
		return
	}
	if WantsJSON(c) {
		Success(c, code, message, data)
		return
	}
	c.HTML(code, name, viewData(c, data))
}

// View is what every template receives.
type View struct {
	Data      interface{}
	Session   domain.Session
	Claims    domain.TokenClaims
	Flash     *Flash
	CSRFToken string
	Path      string
	RequestID string
}

func viewData(c *gin.Context, data interface{}) View {
	view := View{
		Data:      data,
		Flash:     PopFlash(c),
		CSRFToken: c.GetString(CSRFKey),
		Path:      c.Request.URL.Path,
		RequestID: requestID(c),
	}
	if holder := session.FromContext(c.Request.Context()); holder != nil {
		view.Session = holder.Session()
		if claims, ok := session.ParseClaims(view.Session.Token); ok {
			view.Claims = claims
		}
	}
	return view
}

// SetFlash stores a notice for the next page view.
func SetFlash(c *gin.Context, kind, message string) {
	if message == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, url.QueryEscape(kind+"|"+message), 60, "/", "", false, true)
}

// PopFlash reads and clears the pending notice, if any.
func PopFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(FlashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, "", -1, "/", "", false, true)

	value, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, message, found := strings.Cut(value, "|")
	if !found {
		return &Flash{Kind: "info", Message: value}
	}
	return &Flash{Kind: kind, Message: message}
}

// Redirect answers a form post with 303 and an optional notice.
func Redirect(c *gin.Context, location, kind, message string) {
	SetFlash(c, kind, message)
	c.Redirect(http.StatusSeeOther, location)
}

// RedirectToLogin sends the browser to the login view. JSON callers get a 401
// envelope carrying the location instead.
func RedirectToLogin(c *gin.Context, message string) {
	if message == "" {
		message = "Your session has expired. Please log in again."
	}
	if WantsJSON(c) {
		c.Header("Location", session.LoginPath)
		Error(c, http.StatusUnauthorized, message, ErrorBody{Message: message, Kind: "unauthorized"})
		c.Abort()
		return
	}
	Redirect(c, session.LoginPath, "error", message)
	c.Abort()
}

// Back returns the same-origin path the form was posted from, or fallback.
func Back(c *gin.Context, fallback string) string {
	ref, err := url.Parse(c.GetHeader("Referer"))
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request.Host) {
		return fallback
	}
	// "//host" and "/\host" are read by browsers as another origin
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") || strings.HasPrefix(ref.Path, "/\\") {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
