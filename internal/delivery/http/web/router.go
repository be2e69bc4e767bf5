package web

import (
	"context"
	"log/slog"
	"time"

	"go-jobmatch-web/config"
	"go-jobmatch-web/internal/delivery/http/middleware"
	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/internal/session"
	"go-jobmatch-web/internal/usecase"
	"go-jobmatch-web/pkg/apperror"
	"go-jobmatch-web/pkg/security"
	"go-jobmatch-web/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	JobUC         domain.JobUsecase
	ApplicationUC domain.ApplicationUsecase
	TaskUC        domain.TaskUsecase
	HealthUC      usecase.HealthUsecase
	Sessions      *session.CookieStore
	LoginTracker  *security.LoginTracker
	Logger        *slog.Logger
	Config        *config.Config
	// Now drives deadline rendering and the manage-jobs trend window. Defaults to time.Now.
	Now func() time.Time
}

// NewRouter builds the engine. ctx bounds the rate limiters' background sweeps.
func NewRouter(ctx context.Context, deps RouterDeps) (*gin.Engine, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	cfg := deps.Config

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	tmpl, err := loadTemplates(deps.Now)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = cfg.MaxResumeBytes + 1<<20

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.LoggerMiddleware(deps.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeadersMiddleware(cfg.CookieSecure))
	r.Use(middleware.LoadSession(deps.Sessions))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(ctx, middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	r.Use(middleware.CSRFMiddleware(cfg.CookieSecure, "/login", "/register", "/health"))

	r.NoRoute(func(c *gin.Context) {
		c.Error(apperror.NotFound("Page not found"))
	})

	public := r.Group("")
	authed := r.Group("", middleware.RequireSession())
	student := r.Group("", middleware.RequireRole(domain.RoleStudent))
	employer := r.Group("", middleware.RequireRole(domain.RoleEmployer))

	// Swagger
	public.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authLimit := middleware.RateLimitMiddleware(ctx, middleware.AuthRateLimitConfig(cfg.RateLimitLoginThreshold, window))
	uploadLimit := middleware.RateLimitMiddleware(ctx, middleware.UploadRateLimitConfig())

	NewPageHandler(public, student, employer, deps.HealthUC)
	NewAuthHandler(public, authed, deps.AuthUC, deps.LoginTracker, authLimit)
	NewJobHandler(public, employer, deps.JobUC, deps.Now)
	NewApplicationHandler(student, employer, deps.ApplicationUC, cfg.MaxResumeBytes, uploadLimit)
	NewTaskHandler(student, deps.TaskUC)

	return r, nil
}
