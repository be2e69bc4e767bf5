package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobmatch-web/config"
	_ "go-jobmatch-web/docs" // Important for Swagger
	"go-jobmatch-web/internal/delivery/http/web"
	"go-jobmatch-web/internal/gateway/rest"
	"go-jobmatch-web/internal/session"
	"go-jobmatch-web/internal/usecase"
	"go-jobmatch-web/internal/workflow"
	"go-jobmatch-web/pkg/logger"
	"go-jobmatch-web/pkg/redis"
	"go-jobmatch-web/pkg/security"

	"github.com/gin-gonic/gin"
)

// @title           JobMatch Web
// @version         1.0
// @description     Server-rendered JobMatch client. Every route also answers JSON when asked for it.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey CSRFToken
// @in header
// @name X-CSRF-Token
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Log.Info("Starting JobMatch web", "port", cfg.Port, "backend", cfg.APIBaseURL)

	secLog := security.InitSecurityLogger("jobmatch-web", cfg.Environment)
	defer func() { _ = secLog.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. Setup Redis (optional)
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		if errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Info("Redis not configured, using in-memory rate limiting")
		} else {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
		}
	}
	defer func() { _ = redis.Close() }()

	// 4. Setup Gateways
	client := rest.NewClient(cfg.APIBaseURL, cfg.APITimeout, nil)
	authGateway := rest.NewAuthGateway(client)
	jobGateway := rest.NewJobGateway(client)
	applicationGateway := rest.NewApplicationGateway(client)
	uploadGateway := rest.NewUploadGateway(client)
	taskGateway := rest.NewTaskGateway(client)

	// 5. Setup UseCases
	statusWorkflow := workflow.New(applicationGateway, workflow.NewTracker(), workflow.NewHistory(0))
	authUC := usecase.NewAuthUsecase(authGateway, session.ContextStore{})
	jobUC := usecase.NewJobUsecase(jobGateway, applicationGateway, cfg.JobsPageSize, cfg.TrendConcurrency)
	applicationUC := usecase.NewApplicationUsecase(applicationGateway, uploadGateway, statusWorkflow, cfg.MaxResumeBytes)
	taskUC := usecase.NewTaskUsecase(taskGateway)

	probes := map[string]usecase.Probe{"backend": client.Ping}
	if cfg.UpstashRedisURL != "" {
		probes["redis"] = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(probes, 3*time.Second)

	// 6. Setup Router
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	router, err := web.NewRouter(ctx, web.RouterDeps{
		AuthUC:        authUC,
		JobUC:         jobUC,
		ApplicationUC: applicationUC,
		TaskUC:        taskUC,
		HealthUC:      healthUC,
		Sessions:      session.NewCookieStore(cfg.CookieSecure, cfg.SessionMaxAge),
		LoginTracker:  security.NewLoginTracker(security.DefaultLoginTrackerConfig(), secLog),
		Logger:        logger.Log,
		Config:        cfg,
	})
	if err != nil {
		logger.Log.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
