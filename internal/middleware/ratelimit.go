package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/cache"
)

// RateLimiter is the shared token bucket store.
type RateLimiter interface {
	CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
	CheckIPRateLimit(ctx context.Context, ip string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter RateLimiter
	Enabled bool
	IPRPM   int // anonymous requests per minute per IP
	UserRPM int // authenticated requests per minute per user
}

// burstFor sizes the bucket to a quarter minute of traffic.
func burstFor(rpm int) int {
	if b := rpm / 4; b > 1 {
		return b
	}
	return 1
}

// RateLimitUser returns middleware that rate limits per authenticated user.
// Must be applied after Auth middleware.
func RateLimitUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	fallback := newKeyedLimiter(cfg.UserRPM, burstFor(cfg.UserRPM))
	return rateLimit(cfg, "user", cfg.UserRPM, fallback, func(r *http.Request) (string, bool) {
		authCtx := auth.AuthFromContext(r.Context())
		if authCtx == nil {
			return "", false
		}
		return authCtx.UserID, true
	}, func(ctx context.Context, key string) (*cache.RateLimitResult, error) {
		return cfg.Limiter.CheckUserRateLimit(ctx, key, cfg.UserRPM, burstFor(cfg.UserRPM))
	})
}

// RateLimitIP returns middleware that rate limits per client IP.
// Used on public endpoints such as login and registration.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	fallback := newKeyedLimiter(cfg.IPRPM, burstFor(cfg.IPRPM))
	return rateLimit(cfg, "ip", cfg.IPRPM, fallback, func(r *http.Request) (string, bool) {
		return getClientIP(r), true
	}, func(ctx context.Context, key string) (*cache.RateLimitResult, error) {
		return cfg.Limiter.CheckIPRateLimit(ctx, key, cfg.IPRPM, burstFor(cfg.IPRPM))
	})
}

// rateLimit checks key against Redis and falls back to the in-process
// limiter when Redis is unreachable or not configured.
func rateLimit(
	cfg RateLimitConfig,
	kind string,
	rpm int,
	fallback *keyedLimiter,
	keyOf func(*http.Request) (string, bool),
	check func(context.Context, string) (*cache.RateLimitResult, error),
) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || rpm <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			// No key means nothing to limit on (e.g. anonymous on a user route)
			key, ok := keyOf(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			var result *cache.RateLimitResult
			var err error
			if cfg.Limiter != nil {
				result, err = check(r.Context(), key)
			}
			if cfg.Limiter == nil || err != nil {
				if err != nil {
					logger.Warn("rate limit check failed, using local limiter",
						slog.String("type", kind),
						slog.String("error", err.Error()),
					)
				}
				result = fallback.check(key)
			}

			// Set rate limit headers on every response
			setRateLimitHeaders(w, rpm, result.Remaining, result.ResetAt)

			if !result.Allowed {
				logger.Warn("rate limit exceeded",
					slog.String("type", kind),
					slog.String("ip", getClientIP(r)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// keyedLimiter is the in-process limiter used while Redis is unavailable.
type keyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newKeyedLimiter(rpm, burst int) *keyedLimiter {
	return &keyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(rpm) / 60),
		burst:    burst,
	}
}

// get returns the limiter for key, creating it on first use.
func (k *keyedLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.limiters[key]
	if !ok {
		l = rate.NewLimiter(k.limit, k.burst)
		k.limiters[key] = l
	}
	return l
}

// check takes one token for key without waiting.
func (k *keyedLimiter) check(key string) *cache.RateLimitResult {
	l := k.get(key)
	now := time.Now()
	res := l.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	if delay > 0 {
		// Denied: give the token back so retries are not penalized twice
		res.CancelAt(now)
		return &cache.RateLimitResult{
			Allowed:    false,
			ResetAt:    now.Add(delay),
			RetryAfter: ceilSecond(delay),
		}
	}
	return &cache.RateLimitResult{
		Allowed:   true,
		Remaining: int64(l.TokensAt(now)),
		ResetAt:   now.Add(time.Minute),
	}
}

// ceilSecond rounds d up to whole seconds for Retry-After.
func ceilSecond(d time.Duration) time.Duration {
	if r := d % time.Second; r != 0 {
		d += time.Second - r
	}
	return d
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED",
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", int(retryAfter.Seconds())))
}

// getClientIP extracts the client IP, preferring proxy headers.
func getClientIP(r *http.Request) string {
	// First hop of X-Forwarded-For is the original client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
