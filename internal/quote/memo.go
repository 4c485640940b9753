package quote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/wealth-tithe/internal/tithe"
)

// Memo stores computed breakdowns keyed by a digest of their inputs.
//
//go:generate mockgen -destination=mocks/mock_memo.go -package=mocks -source=memo.go Memo
type Memo interface {
	Get(ctx context.Context, key string) (tithe.Breakdown, bool, error)
	Set(ctx context.Context, key string, b tithe.Breakdown) error
}

// MemoKey derives the memo key for a full input tuple. Any field change yields a new key.
func MemoKey(in tithe.Inputs) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%+v", in)))
	return "tithe:quote:" + hex.EncodeToString(sum[:])
}

// NopMemo never stores anything; every quote is recomputed.
type NopMemo struct{}

// Get always misses.
func (NopMemo) Get(context.Context, string) (tithe.Breakdown, bool, error) {
	return tithe.Breakdown{}, false, nil
}

// Set discards b.
func (NopMemo) Set(context.Context, string, tithe.Breakdown) error { return nil }

// RedisMemo keeps breakdowns in Redis as JSON with a TTL.
type RedisMemo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMemo constructs a Redis backed memo store.
func NewRedisMemo(client *redis.Client, ttl time.Duration) *RedisMemo {
	return &RedisMemo{client: client, ttl: ttl}
}

// Get loads a breakdown. It reports whether the key existed.
func (m *RedisMemo) Get(ctx context.Context, key string) (tithe.Breakdown, bool, error) {
	if m == nil || m.client == nil || key == "" {
		return tithe.Breakdown{}, false, nil
	}
	data, err := m.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return tithe.Breakdown{}, false, nil
		}
		return tithe.Breakdown{}, false, err
	}
	var b tithe.Breakdown
	if err := json.Unmarshal(data, &b); err != nil {
		return tithe.Breakdown{}, false, fmt.Errorf("decode memo %s: %w", key, err)
	}
	return b, true, nil
}

// Set stores b under key with the configured TTL.
func (m *RedisMemo) Set(ctx context.Context, key string, b tithe.Breakdown) error {
	if m == nil || m.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, key, data, m.ttl).Err()
}
