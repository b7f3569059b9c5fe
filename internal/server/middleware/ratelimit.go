package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/meowv/blog/internal/model"
	"github.com/patrickmn/go-cache"
)

// rateLimiter is a per-IP fixed window counter. Each IP's counter expires one
// window after its first request; go-cache's janitor drops stale entries.
type rateLimiter struct {
	mu       sync.Mutex
	visitors *cache.Cache
	limit    int
	window   time.Duration
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors: cache.New(window, 2*window),
		limit:    limit,
		window:   window,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if err := rl.visitors.Add(ip, 1, rl.window); err == nil {
		return true
	}
	count, err := rl.visitors.IncrementInt(ip, 1)
	if err != nil {
		// Expired between Add and Increment: start a new window.
		rl.visitors.Set(ip, 1, rl.window)
		return true
	}
	return count <= rl.limit
}

// retryAfter is the whole seconds left in ip's current window.
func (rl *rateLimiter) retryAfter(ip string) int {
	_, exp, ok := rl.visitors.GetWithExpiration(ip)
	if !ok {
		return 0
	}
	return int(math.Ceil(time.Until(exp).Seconds()))
}

// RateLimit returns middleware that allows limit requests per IP per window.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !rl.allow(ip) {
				w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter(ip)))
				model.ErrorResponse(w, model.NewDomainError(model.ErrTooManyRequests, "too many requests, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the host part of RemoteAddr. chi's RealIP has already replaced
// RemoteAddr when a proxy header was present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
