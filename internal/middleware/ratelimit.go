package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"blogr/internal/ratelimit"
	"blogr/internal/requestctx"
)

// RateLimit rejects a client with 429 once limiter runs out of tokens for its
// IP. Limiter errors let the request through. Forwarding headers pick the IP
// only when trustProxy is set.
func RateLimit(limiter ratelimit.Limiter, trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 200*time.Millisecond)
			defer cancel()

			ip := clientIP(r, trustProxy)
			allowed, err := limiter.Allow(ctx, ip)
			if err != nil {
				requestctx.Logger(r.Context()).WithError(err).Warn("rate limiter unavailable")
			} else if !allowed {
				requestctx.Logger(r.Context()).WithField("ip", ip).Warn("login rate limit exceeded")
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			ip, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(ip)
		}
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
