package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("store unavailable")
}

func newLimiter(t *testing.T, client *redis.Client, rate string) *FixedWindow {
	t.Helper()
	store, err := NewStore(client, "ratelimit")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	l, err := NewFixedWindow(rate, store)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	return l
}

func exercise(t *testing.T, limiter Limiter) {
	t.Helper()
	handler := Handler{
		Limiter: limiter,
		Key:     func(*http.Request) string { return "static" },
	}

	counted := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr1 := httptest.NewRecorder()
	counted.ServeHTTP(rr1, req.Clone(req.Context()))
	if rr1.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", rr1.Code)
	}
	if rr1.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected remaining header: %q", rr1.Header().Get("X-RateLimit-Remaining"))
	}

	rr2 := httptest.NewRecorder()
	counted.ServeHTTP(rr2, req.Clone(req.Context()))
	if rr2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second request, got %d", rr2.Code)
	}
	if rr2.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("unexpected limit header: %q", rr2.Header().Get("X-RateLimit-Limit"))
	}
	if rr2.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestHandlerMiddlewareEnforcesLimitInMemory(t *testing.T) {
	exercise(t, newLimiter(t, nil, "1-M"))
}

func TestHandlerMiddlewareEnforcesLimitInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	exercise(t, newLimiter(t, client, "1-M"))
}

func TestHandlerMiddlewareOnError(t *testing.T) {
	handler := Handler{
		Limiter: failingLimiter{},
		Key:     func(*http.Request) string { return "err" },
	}

	called := false
	handler.OnError = func(error) { called = true }

	counted := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	counted.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected handler to proceed on error, got %d", rr.Code)
	}
	if !called {
		t.Fatal("expected OnError callback to be invoked")
	}
}

func TestByClientIPSeparatesCallers(t *testing.T) {
	limiter := newLimiter(t, nil, "1-M")
	handler := Handler{Limiter: limiter, Key: ByClientIP}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = ip + ":40000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", ip, rr.Code)
		}
	}
}

type fixedDecision Decision

func (f fixedDecision) Allow(context.Context, string) (Decision, error) { return Decision(f), nil }

func TestHandlerRetryAfterRoundsUp(t *testing.T) {
	now := time.Date(2026, 4, 6, 12, 0, 0, 0, time.UTC)
	handler := Handler{
		Limiter: fixedDecision{Limit: 60, Reset: now.Add(1500 * time.Millisecond)},
		Key:     func(*http.Request) string { return "k" },
		Now:     func() time.Time { return now },
	}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("limited request reached the handler")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/quotes", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
	if !strings.Contains(rr.Body.String(), `"resetAt":"2026-04-06T12:00:01Z"`) {
		t.Fatalf("expected reset time in details, got %s", rr.Body.String())
	}
}

func TestNewFixedWindowRejectsBadRate(t *testing.T) {
	store, _ := NewStore(nil, "ratelimit")
	if _, err := NewFixedWindow("lots-per-day", store); err == nil {
		t.Fatal("expected parse error")
	}
}
