package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
)

// ClientKey identifies the caller by the host part of RemoteAddr, which chi's
// RealIP middleware rewrites from proxy headers.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the limit with 429 before they reach the
// handler.
func Middleware(limiter *FixedWindow) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)
			decision := limiter.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.ResetAt.Sub(limiter.now()).Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(1, retryAfter)))
				slog.Warn("rate limit exceeded", "client", key, "path", r.URL.Path)
				http.Error(w, ErrRateLimited.Error(), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
