package quote

import (
	"context"

	"github.com/noah-isme/wealth-tithe/internal/resilience"
	"github.com/noah-isme/wealth-tithe/internal/tithe"
)

// GuardedMemo bypasses the wrapped store while its breaker is open, so an
// unreachable Redis costs nothing per quote instead of a timeout.
type GuardedMemo struct {
	next    Memo
	breaker *resilience.Breaker
}

// NewGuardedMemo wraps next with breaker.
func NewGuardedMemo(next Memo, breaker *resilience.Breaker) *GuardedMemo {
	return &GuardedMemo{next: next, breaker: breaker}
}

// Get returns resilience.ErrOpenCircuit without touching the store while the breaker is open.
func (m *GuardedMemo) Get(ctx context.Context, key string) (tithe.Breakdown, bool, error) {
	var (
		b  tithe.Breakdown
		ok bool
	)
	err := m.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		b, ok, err = m.next.Get(ctx, key)
		return err
	})
	return b, ok, err
}

// Set stores b unless the breaker is open.
func (m *GuardedMemo) Set(ctx context.Context, key string, b tithe.Breakdown) error {
	return m.breaker.Do(ctx, func(ctx context.Context) error {
		return m.next.Set(ctx, key, b)
	})
}
