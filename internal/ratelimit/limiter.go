package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	Reset     time.Time
}

// Limiter decides whether the request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// FixedWindow is a Limiter backed by ulule/limiter.
type FixedWindow struct {
	inner *limiter.Limiter
}

// NewFixedWindow parses a formatted rate such as "60-M" and binds it to store.
func NewFixedWindow(rate string, store limiter.Store) (*FixedWindow, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}
	return &FixedWindow{inner: limiter.New(store, parsed)}, nil
}

// NewStore returns a Redis store when client is non-nil and an in-process store otherwise.
func NewStore(client *redis.Client, prefix string) (limiter.Store, error) {
	opts := limiter.StoreOptions{Prefix: prefix, CleanUpInterval: time.Minute}
	if client == nil {
		return memory.NewStoreWithOptions(opts), nil
	}
	return limiterredis.NewStoreWithOptions(client, opts)
}

// Allow implements Limiter.
func (l *FixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	lctx, err := l.inner.Get(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Allowed:   !lctx.Reached,
		Limit:     lctx.Limit,
		Remaining: lctx.Remaining,
		Reset:     time.Unix(lctx.Reset, 0),
	}, nil
}
