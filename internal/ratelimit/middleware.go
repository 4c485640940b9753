package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/wealth-tithe/internal/common"
)

// Handler enforces rate limits before delegating to the next handler.
type Handler struct {
	Limiter Limiter
	// Key derives the bucket for a request. Nil disables limiting.
	Key     func(*http.Request) string
	OnError func(error)
	// Now is the clock used for Retry-After; defaults to time.Now.
	Now func() time.Time
}

// ByClientIP buckets requests by the caller's address.
func ByClientIP(r *http.Request) string {
	return "ip:" + common.ClientIP(r)
}

// Middleware implements the http.Handler middleware interface. Limiter failures let the request through.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Key == nil || h.Limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		d, err := h.Limiter.Allow(r.Context(), h.Key(r))
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			headers.Set("Retry-After", strconv.Itoa(h.retryAfter(d.Reset)))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", map[string]any{
				"limit":   d.Limit,
				"resetAt": d.Reset.UTC().Format(time.RFC3339),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// retryAfter rounds up so clients never retry before the window resets.
func (h Handler) retryAfter(reset time.Time) int {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	secs := int(math.Ceil(reset.Sub(now()).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}
