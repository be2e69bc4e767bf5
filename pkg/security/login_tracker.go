package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-jobmatch-web/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // Failed attempts before the email is blocked
	AttemptWindow time.Duration // Window failed attempts are counted in
	BlockDuration time.Duration // How long a block lasts
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker counts failed logins per email and blocks the email after too
// many. State lives in Redis when it is available, in process memory otherwise.
type LoginTracker struct {
	config LoginTrackerConfig
	logger *SecurityLogger
	now    func() time.Time

	mu       sync.Mutex
	failures map[string]*attemptWindow
	blocked  map[string]time.Time
}

type attemptWindow struct {
	count   int
	resetAt time.Time
}

const (
	failLoginPrefix    = "fail:login:user:"
	blockedLoginPrefix = "blocked:login:user:"
)

// KEYS[1] = counter key, ARGV[1] = TTL in seconds. Returns the count after increment.
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func NewLoginTracker(config LoginTrackerConfig, logger *SecurityLogger) *LoginTracker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLoginTrackerConfig().MaxAttempts
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	return &LoginTracker{
		config:   config,
		logger:   logger,
		now:      time.Now,
		failures: make(map[string]*attemptWindow),
		blocked:  make(map[string]time.Time),
	}
}

func subjectKey(email string) string {
	return HashValue(strings.ToLower(strings.TrimSpace(email)))
}

// IsBlocked reports whether logins for email are currently refused.
func (lt *LoginTracker) IsBlocked(ctx context.Context, email string) (bool, error) {
	key := subjectKey(email)
	if client := redis.Client(); client != nil {
		exists, err := client.Exists(ctx, blockedLoginPrefix+key).Result()
		if err != nil {
			return false, fmt.Errorf("check login block: %w", err)
		}
		return exists > 0, nil
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	until, ok := lt.blocked[key]
	if !ok {
		return false, nil
	}
	if lt.now().After(until) {
		delete(lt.blocked, key)
		return false, nil
	}
	return true, nil
}

// RecordFailedAttempt counts a failure and reports whether the email is now blocked.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, error) {
	lt.logger.LogLoginFailed(ctx, email, ip, userAgent, requestID, "rejected_by_backend")

	key := subjectKey(email)
	count, err := lt.increment(ctx, key)
	if err != nil {
		return false, err
	}
	if count < lt.config.MaxAttempts {
		return false, nil
	}
	if err := lt.block(ctx, key); err != nil {
		return true, err
	}
	lt.logger.LogLoginBlocked(ctx, email, ip, userAgent, requestID)
	return true, nil
}

// ClearAttempts forgets earlier failures after a successful login.
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email string) error {
	key := subjectKey(email)
	if client := redis.Client(); client != nil {
		if err := client.Del(ctx, failLoginPrefix+key).Err(); err != nil {
			return fmt.Errorf("clear login attempts: %w", err)
		}
		return nil
	}
	lt.mu.Lock()
	delete(lt.failures, key)
	lt.mu.Unlock()
	return nil
}

func (lt *LoginTracker) increment(ctx context.Context, key string) (int, error) {
	if client := redis.Client(); client != nil {
		return atomicIncrement(ctx, client, failLoginPrefix+key, int(lt.config.AttemptWindow.Seconds()))
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	now := lt.now()
	w, ok := lt.failures[key]
	if !ok || now.After(w.resetAt) {
		w = &attemptWindow{resetAt: now.Add(lt.config.AttemptWindow)}
		lt.failures[key] = w
	}
	w.count++
	return w.count, nil
}

func (lt *LoginTracker) block(ctx context.Context, key string) error {
	if client := redis.Client(); client != nil {
		if err := client.Set(ctx, blockedLoginPrefix+key, "1", lt.config.BlockDuration).Err(); err != nil {
			return fmt.Errorf("set login block: %w", err)
		}
		return nil
	}
	lt.mu.Lock()
	lt.blocked[key] = lt.now().Add(lt.config.BlockDuration)
	delete(lt.failures, key)
	lt.mu.Unlock()
	return nil
}

func atomicIncrement(ctx context.Context, client *goredis.Client, key string, ttlSeconds int) (int, error) {
	result, err := client.Eval(ctx, incrWithTTLScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, fmt.Errorf("increment login attempts: %w", err)
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}
