package quote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/wealth-tithe/internal/obs"
	"github.com/noah-isme/wealth-tithe/internal/resilience"
	"github.com/noah-isme/wealth-tithe/internal/tithe"
)

const (
	sourceComputed = "computed"
	sourceMemo     = "memo"
)

// Result is a served quote: the breakdown plus calculation metadata.
type Result struct {
	CalculationID string
	Breakdown     tithe.Breakdown
	Source        string
	StartedAt     time.Time
	Duration      time.Duration
}

// Service evaluates contribution quotes, memoizing on the full input tuple.
type Service struct {
	memo     Memo
	logger   zerolog.Logger
	tracer   trace.Tracer
	defaults tithe.Inputs
	now      func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Memo     Memo
	Logger   zerolog.Logger
	Defaults tithe.Inputs
	Now      func() time.Time
}

// NewService builds a quote service. A nil Memo disables memoization.
func NewService(cfg ServiceConfig) *Service {
	memo := cfg.Memo
	if memo == nil {
		memo = NopMemo{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		memo:     memo,
		logger:   cfg.Logger,
		tracer:   otel.Tracer("quote"),
		defaults: cfg.Defaults,
		now:      now,
	}
}

// Defaults returns the inputs a new calculator starts from.
func (s *Service) Defaults() tithe.Inputs {
	return s.defaults
}

// Quote evaluates in. Memo store failures are logged and never fail the quote.
func (s *Service) Quote(ctx context.Context, in tithe.Inputs) Result {
	ctx, span := s.tracer.Start(ctx, "quote.evaluate")
	defer span.End()

	started := s.now()
	key := MemoKey(in)
	res := Result{CalculationID: uuid.NewString(), StartedAt: started}

	if b, ok := s.lookup(ctx, key); ok {
		res.Breakdown = b
		res.Source = sourceMemo
	} else {
		res.Breakdown = tithe.Evaluate(in)
		res.Source = sourceComputed
		if err := s.memo.Set(ctx, key, res.Breakdown); err != nil && !errors.Is(err, resilience.ErrOpenCircuit) {
			s.loggerFor(ctx).Warn().Err(err).Str("memo_key", key).Msg("store quote")
		}
	}
	res.Duration = s.now().Sub(started)

	total := res.Breakdown.Total.InexactFloat64()
	span.SetAttributes(
		attribute.String("quote.calculation_id", res.CalculationID),
		attribute.String("quote.source", res.Source),
		attribute.Float64("quote.total", total),
	)
	obs.ObserveCalculation(res.Source, total)
	s.loggerFor(ctx).Debug().
		Str("calculation_id", res.CalculationID).
		Str("source", res.Source).
		Float64("total", total).
		Msg("quote evaluated")
	return res
}

func (s *Service) lookup(ctx context.Context, key string) (tithe.Breakdown, bool) {
	b, ok, err := s.memo.Get(ctx, key)
	switch {
	case errors.Is(err, resilience.ErrOpenCircuit):
		obs.ObserveMemoLookup("skipped")
		return tithe.Breakdown{}, false
	case err != nil:
		obs.ObserveMemoLookup("error")
		s.loggerFor(ctx).Warn().Err(err).Str("memo_key", key).Msg("load memoized quote")
		return tithe.Breakdown{}, false
	case ok:
		obs.ObserveMemoLookup("hit")
		return b, true
	default:
		obs.ObserveMemoLookup("miss")
		return tithe.Breakdown{}, false
	}
}

// loggerFor prefers the request-scoped logger so entries carry request and trace ids.
func (s *Service) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}
