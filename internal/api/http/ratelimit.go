package http

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/invoice-service/internal/auth"
	"github.com/spec-kit/invoice-service/internal/config"
	apperrors "github.com/spec-kit/invoice-service/pkg/util/errorutil"
)

const visitorTTL = 3 * time.Minute

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter keeps one in-process token bucket per key. Idle buckets
// are swept on access.
type TokenBucketLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

// NewTokenBucketLimiter builds a limiter allowing perSecond with the given burst.
func NewTokenBucketLimiter(perSecond float64, burst int) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucketLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(perSecond),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

// Allow consumes one token for key.
func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > visitorTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.Allow(), nil
}

// WindowCounter is a shared fixed-window counter store, such as Redis.
type WindowCounter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// WindowLimiter adapts a WindowCounter to Limiter.
type WindowLimiter struct {
	counter WindowCounter
	limit   int
	window  time.Duration
}

// NewWindowLimiter allows limit hits per window.
func NewWindowLimiter(counter WindowCounter, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{counter: counter, limit: limit, window: window}
}

// Allow counts one hit for key.
func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.counter.Allow(ctx, key, l.limit, l.window)
}

// NewLimiter picks the backend named in cfg. A redis backend without a
// counter falls back to in-process buckets.
func NewLimiter(cfg config.RateLimitConfig, counter WindowCounter) Limiter {
	if cfg.Backend == "redis" && counter != nil && cfg.ChatPerSecond > 0 {
		burst := cfg.ChatBurst
		if burst < 1 {
			burst = 1
		}
		window := time.Duration(float64(burst) / cfg.ChatPerSecond * float64(time.Second))
		return NewWindowLimiter(counter, burst, window)
	}
	return NewTokenBucketLimiter(cfg.ChatPerSecond, cfg.ChatBurst)
}

// RateLimit rejects callers over their quota with 429. It keys on the
// authenticated user, falling back to the client IP. Limiter failures let the
// request through.
func RateLimit(limiter Limiter, scope string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if principal, ok := auth.PrincipalFromContext(c); ok {
			key = "user:" + principal.User.ID
		}
		key = key + ":" + scope

		allowed, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			return c.Next()
		}
		if !allowed {
			return apperrors.NewRateLimited("too many requests")
		}
		return c.Next()
	}
}
