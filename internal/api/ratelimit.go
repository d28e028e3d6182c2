package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/bookly/bookly-server/internal/http/response"
	"github.com/bookly/bookly-server/internal/ratelimit"
)

// RateLimitMiddleware limits requests under pathPrefix per client IP.
// Other paths pass through untouched. Returns 429 when the limit is exceeded.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, pathPrefix string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, pathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	// First entry of X-Forwarded-For is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
