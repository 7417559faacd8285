package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig holds fixed-window rate limiter settings.
type RateLimitConfig struct {
	// Limit is the maximum number of requests per window per client.
	Limit int
	// Window is the length of the fixed window.
	Window time.Duration
	// KeyPrefix namespaces the Redis counters, e.g. "ratelimit:ingest".
	KeyPrefix string
}

// DefaultRateLimitConfig returns a limit suitable for trigger-style endpoints
// that fan out to upstream providers.
func DefaultRateLimitConfig(prefix string) RateLimitConfig {
	return RateLimitConfig{
		Limit:     10,
		Window:    time.Minute,
		KeyPrefix: prefix,
	}
}

// RateLimit returns middleware enforcing a fixed-window per-client limit
// backed by Redis INCR with TTL. It fails open: if Redis is unreachable the
// request proceeds, since dropping traffic over a limiter outage is worse
// than briefly over-admitting.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r)
			window := time.Now().Unix() / int64(cfg.Window.Seconds())
			key := fmt.Sprintf("%s:%s:%d", cfg.KeyPrefix, client, window)

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				l.WarnContext(r.Context(), "rate limiter unavailable, allowing request",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(r.Context(), key, cfg.Window)
			}

			remaining := cfg.Limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > cfg.Limit {
				retryAfter := cfg.Window.Seconds() - float64(time.Now().Unix()%int64(cfg.Window.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter)))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"too many requests"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller, preferring X-Forwarded-For behind a proxy.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
