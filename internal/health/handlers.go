package health

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const statusDisabled = "disabled"

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the process-wide readiness flag. Shutdown sets it to false so load balancers
// drain traffic before the listener closes.
func SetReady(v bool) {
	ready.Store(v)
}

// Checker probes the optional memo store.
type Checker interface {
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// RedisChecker pings a go-redis client.
type RedisChecker struct {
	Client *redis.Client
}

// PingRedis implements Checker.
func (c RedisChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.Client == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Client.Ping(ctx).Err()
}

// Handler exposes HTTP handlers for health endpoints. A nil Checker means no memo store is
// configured; readiness then depends only on the shutdown flag.
type Handler struct {
	Checker      Checker
	RedisTimeout time.Duration
	// RequireRedis turns an unreachable memo store into 503. Otherwise the instance reports
	// "degraded" and stays in rotation, since quotes are computed without the memo.
	RequireRedis bool
}

// ReadyStatus is the readiness response body.
type ReadyStatus struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on the shutdown flag and the memo store probe.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		writeStatus(w, http.StatusServiceUnavailable, ReadyStatus{Status: "shutting_down"})
		return
	}
	if h.Checker == nil {
		writeStatus(w, http.StatusOK, ReadyStatus{Status: "ok", Redis: statusDisabled})
		return
	}
	if err := h.Checker.PingRedis(r.Context(), h.redisTimeout()); err != nil {
		code := http.StatusOK
		if h.RequireRedis {
			code = http.StatusServiceUnavailable
		}
		writeStatus(w, code, ReadyStatus{Status: "degraded", Redis: err.Error()})
		return
	}
	writeStatus(w, http.StatusOK, ReadyStatus{Status: "ok", Redis: "ok"})
}

func writeStatus(w http.ResponseWriter, code int, body ReadyStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
