package quote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wealth-tithe/internal/obs"
	"github.com/noah-isme/wealth-tithe/internal/quote"
	"github.com/noah-isme/wealth-tithe/internal/quote/mocks"
	"github.com/noah-isme/wealth-tithe/internal/tithe"
)

func newTestService(t *testing.T, memo quote.Memo) *quote.Service {
	t.Helper()
	obs.MustRegisterDomainMetrics("tithe", prometheus.NewRegistry())
	return quote.NewService(quote.ServiceConfig{
		Memo:     memo,
		Logger:   zerolog.Nop(),
		Defaults: tithe.DefaultInputs(),
	})
}

func TestServiceComputesAndStoresOnMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	in := tithe.DefaultInputs()
	key := quote.MemoKey(in)
	memo := mocks.NewMockMemo(ctrl)
	memo.EXPECT().Get(gomock.Any(), key).Return(tithe.Breakdown{}, false, nil)
	memo.EXPECT().Set(gomock.Any(), key, gomock.Any()).Return(nil)

	svc := newTestService(t, memo)
	before := testutil.ToFloat64(obs.CalculationsTotal.WithLabelValues("computed"))
	misses := testutil.ToFloat64(obs.MemoLookupsTotal.WithLabelValues("miss"))

	res := svc.Quote(context.Background(), in)

	require.Equal(t, "computed", res.Source)
	require.NotEmpty(t, res.CalculationID)
	require.True(t, decimal.NewFromInt(66_000).Equal(res.Breakdown.Total), "total %s", res.Breakdown.Total)
	require.Equal(t, before+1, testutil.ToFloat64(obs.CalculationsTotal.WithLabelValues("computed")))
	require.Equal(t, misses+1, testutil.ToFloat64(obs.MemoLookupsTotal.WithLabelValues("miss")))
}

func TestServiceServesMemoHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	in := tithe.DefaultInputs()
	cached := tithe.Evaluate(in)
	memo := mocks.NewMockMemo(ctrl)
	memo.EXPECT().Get(gomock.Any(), quote.MemoKey(in)).Return(cached, true, nil)

	svc := newTestService(t, memo)
	hits := testutil.ToFloat64(obs.MemoLookupsTotal.WithLabelValues("hit"))

	res := svc.Quote(context.Background(), in)

	require.Equal(t, "memo", res.Source)
	require.True(t, cached.Total.Equal(res.Breakdown.Total))
	require.Equal(t, hits+1, testutil.ToFloat64(obs.MemoLookupsTotal.WithLabelValues("hit")))
}

func TestServiceToleratesMemoFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	memo := mocks.NewMockMemo(ctrl)
	memo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tithe.Breakdown{}, false, errors.New("connection refused"))
	memo.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	svc := newTestService(t, memo)
	failures := testutil.ToFloat64(obs.MemoLookupsTotal.WithLabelValues("error"))

	res := svc.Quote(context.Background(), tithe.DefaultInputs())

	require.Equal(t, "computed", res.Source)
	require.True(t, decimal.NewFromInt(66_000).Equal(res.Breakdown.Total))
	require.Equal(t, failures+1, testutil.ToFloat64(obs.MemoLookupsTotal.WithLabelValues("error")))
}

func TestServiceWithoutMemoAlwaysComputes(t *testing.T) {
	svc := newTestService(t, nil)
	for i := 0; i < 2; i++ {
		res := svc.Quote(context.Background(), tithe.DefaultInputs())
		require.Equal(t, "computed", res.Source)
	}
}

func TestServiceRecordsTiming(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	svc := quote.NewService(quote.ServiceConfig{
		Logger: zerolog.Nop(),
		Now: func() time.Time {
			calls++
			return start.Add(time.Duration(calls-1) * 3 * time.Millisecond)
		},
	})

	res := svc.Quote(context.Background(), tithe.DefaultInputs())

	require.Equal(t, start, res.StartedAt)
	require.Equal(t, 3*time.Millisecond, res.Duration)
}
