package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	// REST backend
	APIBaseURL  string
	APITimeout  time.Duration
	FrontendURL string
	// Browser-facing
	AllowedOrigins []string
	CookieSecure   bool
	SessionMaxAge  time.Duration
	JobsPageSize   int
	MaxResumeBytes int64
	// Manage-jobs trend fetch fan-out
	TrendConcurrency int
	// Logging
	LogLevel  string
	LogFormat string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
}

// source resolves a key from the environment first, then from the optional YAML overlay.
type source struct {
	file map[string]string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally
	_ = godotenv.Load()

	src := source{}
	if path := os.Getenv("JOBMATCH_CONFIG"); path != "" {
		values, err := readOverlay(path)
		if err != nil {
			return nil, err
		}
		src.file = values
	}
	return load(src)
}

func load(src source) (*Config, error) {
	cfg := &Config{
		Port:        src.get("PORT", "8080"),
		Environment: src.get("GIN_MODE", "debug"),
		// Trailing slash would produce //jobs on every call
		APIBaseURL:     strings.TrimRight(src.get("API_BASE_URL", ""), "/"),
		APITimeout:     src.getDuration("API_TIMEOUT", 10*time.Second),
		FrontendURL:    strings.TrimRight(src.get("FRONTEND_URL", "http://localhost:3000"), "/"),
		AllowedOrigins: splitList(src.get("ALLOWED_ORIGINS", "")),
		CookieSecure:   src.getBool("COOKIE_SECURE", false),
		SessionMaxAge:  time.Duration(src.getInt("SESSION_MAX_AGE_HOURS", 24*7)) * time.Hour,
		JobsPageSize:   src.getInt("JOBS_PAGE_SIZE", 20),
		MaxResumeBytes: int64(src.getInt("MAX_RESUME_BYTES", 5*1024*1024)),

		TrendConcurrency: src.getInt("TREND_CONCURRENCY", 4),

		LogLevel:  src.get("LOG_LEVEL", "info"),
		LogFormat: src.get("LOG_FORMAT", "json"),

		UpstashRedisURL:      src.get("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: src.get("UPSTASH_REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:   src.getInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  src.getInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: src.getInt("RATE_LIMIT_GLOBAL_THRESHOLD", 300),
	}

	if len(cfg.AllowedOrigins) == 0 && cfg.FrontendURL != "" {
		cfg.AllowedOrigins = []string{cfg.FrontendURL}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.APIBaseURL == "" {
		problems = append(problems, "API_BASE_URL is required")
	} else if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		problems = append(problems, "API_BASE_URL must be an http(s) URL")
	}
	if c.APITimeout <= 0 {
		problems = append(problems, "API_TIMEOUT must be positive")
	}
	if c.JobsPageSize <= 0 {
		problems = append(problems, "JOBS_PAGE_SIZE must be positive")
	}
	if c.MaxResumeBytes <= 0 {
		problems = append(problems, "MAX_RESUME_BYTES must be positive")
	}
	if c.TrendConcurrency <= 0 {
		problems = append(problems, "TREND_CONCURRENCY must be positive")
	}
	if c.SessionMaxAge <= 0 {
		problems = append(problems, "SESSION_MAX_AGE_HOURS must be positive")
	}
	if c.RateLimitWindowSeconds <= 0 || c.RateLimitLoginThreshold <= 0 || c.RateLimitGlobalThreshold <= 0 {
		problems = append(problems, "rate limit values must be positive")
	}
	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction mirrors gin's release mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "release"
}

func readOverlay(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config overlay: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config overlay: %w", err)
	}
	normalized := make(map[string]string, len(values))
	for k, v := range values {
		normalized[strings.ToUpper(k)] = v
	}
	return normalized, nil
}

func (s source) lookup(key string) (string, bool) {
	if value, exists := os.LookupEnv(key); exists {
		return value, true
	}
	value, exists := s.file[key]
	return value, exists
}

func (s source) get(key, fallback string) string {
	if value, exists := s.lookup(key); exists {
		return value
	}
	return fallback
}

// getInt returns an integer value or fallback if not set/invalid
func (s source) getInt(key string, fallback int) int {
	if value, exists := s.lookup(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return fallback
}

// getBool returns a boolean value or fallback if not set/invalid
func (s source) getBool(key string, fallback bool) bool {
	if value, exists := s.lookup(key); exists {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
	}
	return fallback
}

func (s source) getDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := s.lookup(key); exists {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimRight(strings.TrimSpace(part), "/"); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
