package web

import (
	"net/http"
	"strings"

	"go-jobmatch-web/internal/delivery/http/response"
	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/internal/session"
	"go-jobmatch-web/pkg/apperror"
	"go-jobmatch-web/pkg/logger"
	"go-jobmatch-web/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC  domain.AuthUsecase
	tracker *security.LoginTracker
}

// NewAuthHandler registers login, registration and logout. limit guards the
// credential posts.
func NewAuthHandler(public, authed *gin.RouterGroup, authUC domain.AuthUsecase, tracker *security.LoginTracker, limit gin.HandlerFunc) {
	handler := &AuthHandler{authUC: authUC, tracker: tracker}

	public.GET("/login", handler.ShowLogin)
	public.POST("/login", limit, handler.Login)
	public.POST("/register", limit, handler.Register)
	public.POST("/logout", handler.Logout)

	authed.GET("/me", handler.Me)
}

// RegisterRequest is the registration form. Student and employer details may
// come flat (HTML form) or nested (JSON).
type RegisterRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password" binding:"required,min=6"`
	UserType  string `json:"userType" form:"userType" binding:"required,oneof=student employer"`
	FirstName string `json:"firstName" form:"firstName" binding:"required,valid_name"`
	LastName  string `json:"lastName" form:"lastName" binding:"required,valid_name"`

	University     string   `json:"university,omitempty" form:"university"`
	Major          string   `json:"major,omitempty" form:"major"`
	GraduationDate string   `json:"graduationDate,omitempty" form:"graduationDate"`
	GPA            *float64 `json:"gpa,omitempty" form:"gpa" binding:"omitempty,gte=0,lte=4"`

	CompanyName    string `json:"companyName,omitempty" form:"companyName"`
	CompanyWebsite string `json:"companyWebsite,omitempty" form:"companyWebsite" binding:"omitempty,url"`
	Industry       string `json:"industry,omitempty" form:"industry"`

	StudentDetails  *domain.StudentDetails  `json:"studentDetails,omitempty" form:"-"`
	EmployerDetails *domain.EmployerDetails `json:"employerDetails,omitempty" form:"-"`
}

func (r RegisterRequest) toRegistration() domain.Registration {
	reg := domain.Registration{
		Email:           r.Email,
		Password:        r.Password,
		UserType:        domain.Role(r.UserType),
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		StudentDetails:  r.StudentDetails,
		EmployerDetails: r.EmployerDetails,
	}
	if reg.StudentDetails == nil && reg.UserType == domain.RoleStudent {
		details := &domain.StudentDetails{
			University:     strings.TrimSpace(r.University),
			Major:          strings.TrimSpace(r.Major),
			GraduationDate: strings.TrimSpace(r.GraduationDate),
		}
		if r.GPA != nil {
			details.GPA = *r.GPA
		}
		reg.StudentDetails = details
	}
	if reg.EmployerDetails == nil && reg.UserType == domain.RoleEmployer {
		reg.EmployerDetails = &domain.EmployerDetails{
			CompanyName:    strings.TrimSpace(r.CompanyName),
			CompanyWebsite: strings.TrimSpace(r.CompanyWebsite),
			Industry:       strings.TrimSpace(r.Industry),
		}
	}
	return reg
}

type authResponse struct {
	Redirect string      `json:"redirect"`
	UserType domain.Role `json:"userType"`
}

// ShowLogin godoc
// @Summary      Login and registration view
// @Tags         auth
// @Produce      html
// @Success      200
// @Router       /login [get]
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	response.Render(c, http.StatusOK, "login.html", "", nil)
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates against the backend and stores the session cookies
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      domain.Credentials  true  "Credentials"
// @Success      200   {object}  response.Response{data=authResponse}
// @Failure      401   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.Error(bindError(err))
		return
	}

	ctx := c.Request.Context()
	ip, ua, rid := c.ClientIP(), c.Request.UserAgent(), requestID(c)
	secLog := security.DefaultLogger()

	blocked, err := h.tracker.IsBlocked(ctx, creds.Email)
	if err != nil {
		logger.Log.WarnContext(ctx, "login tracker unavailable", "error", err)
	}
	if blocked {
		secLog.LogLoginBlocked(ctx, creds.Email, ip, ua, rid)
		c.Error(apperror.New(http.StatusTooManyRequests, "Too many failed login attempts. Please try again later.", nil))
		return
	}

	landing, err := h.authUC.Login(ctx, creds)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindUnauthorized, apperror.KindValidation:
			secLog.LogLoginFailed(ctx, creds.Email, ip, ua, rid, string(apperror.KindOf(err)))
			if _, terr := h.tracker.RecordFailedAttempt(ctx, creds.Email, ip, ua, rid); terr != nil {
				logger.Log.WarnContext(ctx, "failed to record login attempt", "error", terr)
			}
		}
		c.Error(err)
		return
	}

	if err := h.tracker.ClearAttempts(ctx, creds.Email); err != nil {
		logger.Log.WarnContext(ctx, "failed to clear login attempts", "error", err)
	}
	sess := session.ContextStore{}.Load(ctx)
	secLog.Log(ctx, security.SecurityEvent{
		Event:        security.EventLoginSuccess,
		SubjectType:  "email",
		SubjectValue: security.MaskEmail(creds.Email),
		IP:           ip,
		UserAgent:    ua,
		RequestID:    rid,
		Details:      map[string]any{"user_type": string(sess.Role)},
	})

	if response.WantsJSON(c) {
		response.Success(c, http.StatusOK, "Login successful", authResponse{Redirect: landing, UserType: sess.Role})
		return
	}
	c.Redirect(http.StatusSeeOther, landing)
}

// Register godoc
// @Summary      Register
// @Description  Creates a student or employer account and logs it in
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Registration"
// @Success      201   {object}  response.Response{data=authResponse}
// @Failure      422   {object}  response.Response
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	ctx := c.Request.Context()
	landing, err := h.authUC.Register(ctx, req.toRegistration())
	if err != nil {
		c.Error(err)
		return
	}

	security.DefaultLogger().Log(ctx, security.SecurityEvent{
		Event:        security.EventRegistered,
		SubjectType:  "email",
		SubjectValue: security.MaskEmail(req.Email),
		IP:           c.ClientIP(),
		RequestID:    requestID(c),
		Details:      map[string]any{"user_type": req.UserType},
	})

	if response.WantsJSON(c) {
		response.Success(c, http.StatusCreated, "Registration successful", authResponse{Redirect: landing, UserType: domain.Role(req.UserType)})
		return
	}
	response.Redirect(c, landing, "success", "Welcome to JobMatch!")
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the session cookies
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	role := session.ContextStore{}.Load(ctx).Role
	h.authUC.Logout(ctx)

	security.DefaultLogger().Log(ctx, security.SecurityEvent{
		Event:     security.EventLogout,
		IP:        c.ClientIP(),
		RequestID: requestID(c),
		Details:   map[string]any{"user_type": string(role)},
	})

	if response.WantsJSON(c) {
		response.Success(c, http.StatusOK, "Logged out", nil)
		return
	}
	response.Redirect(c, session.HomePath, "success", "You have been logged out.")
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.CurrentUser(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Render(c, http.StatusOK, "account.html", "User retrieved", user)
}
