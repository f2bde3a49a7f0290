package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hrflow/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*keyedLimiter)

// keyedLimiter holds one token bucket per caller key.
type keyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	keyFn   RateLimitKeyFunc
	clients map[string]*rate.Limiter
}

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(kl *keyedLimiter) {
		if fn != nil {
			kl.keyFn = fn
		}
	}
}

// RateLimit allows perWindow requests per window for each caller, keyed by
// authenticated user and falling back to client IP.
func RateLimit(perWindow int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	kl := &keyedLimiter{
		limit:   rate.Every(window / time.Duration(max(perWindow, 1))),
		burst:   perWindow,
		keyFn:   actorOrIPKey,
		clients: map[string]*rate.Limiter{},
	}
	for _, opt := range opts {
		opt(kl)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if perWindow <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			limiter := kl.get(kl.keyFn(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(perWindow))
			if !limiter.Allow() {
				retry := time.Duration(float64(time.Second) / float64(kl.limit))
				w.Header().Set("Retry-After", strconv.Itoa(max(int(retry.Seconds()), 1)))
				api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (kl *keyedLimiter) get(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	limiter, ok := kl.clients[key]
	if !ok {
		limiter = rate.NewLimiter(kl.limit, kl.burst)
		kl.clients[key] = limiter
	}
	return limiter
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return "ip:" + ClientIP(r)
}

// ClientIP prefers the first X-Forwarded-For hop.
func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if value := strings.TrimSpace(first); value != "" {
			return value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
