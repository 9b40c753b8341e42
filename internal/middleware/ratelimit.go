package middleware

import (
	"errors"
	"net"
	"net/http"

	"github.com/accmint-dev/accmint/internal/middleware/ratelimiter"
)

// RateLimit limits requests per identity. Identity extraction failures are
// reported to the client rather than bypassing the limit.
func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimit applies one shared bucket to every request.
func GlobalRateLimit(rl *ratelimiter.Limiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetUserIDFromContext identifies the request by the authenticated client id.
// Requires NeedAuth earlier in the chain.
func GetUserIDFromContext(r *http.Request) (string, error) {
	if id := GetUserID(r); id != "" {
		return id, nil
	}
	return "", errors.New("Can't get client id")
}

// GetIP extracts the client IP from RemoteAddr.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", errors.New("invalid client address")
	}
	return ip, nil
}
