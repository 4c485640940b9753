package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/wealth-tithe/internal/config"
	"github.com/noah-isme/wealth-tithe/internal/health"
	"github.com/noah-isme/wealth-tithe/internal/obs"
	"github.com/noah-isme/wealth-tithe/internal/quote"
	"github.com/noah-isme/wealth-tithe/internal/ratelimit"
	"github.com/noah-isme/wealth-tithe/internal/resilience"
)

func main() {
	cfg := config.MustLoad()

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().
		Str("service", obs.DefaultServiceName).
		Str("env", cfg.AppEnv).
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	tracingEnabled := cfg.Obs.EnableTracing
	if tracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   obs.DefaultServiceName,
			Endpoint:      cfg.Obs.OTLPEndpoint,
			Headers:       cfg.Obs.OTLPHeaders,
			Exporter:      cfg.Obs.TracingExporter,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	var (
		redisClient *redis.Client
		memo        quote.Memo
		checker     health.Checker
	)
	if cfg.MemoEnabled() {
		client, err := newRedisClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		redisClient = client
		breaker := resilience.NewBreaker(5, 0.5, cfg.MemoCooldown).
			WithTarget("redis_memo").
			WithLogger(logger)
		memo = quote.NewGuardedMemo(quote.NewRedisMemo(client, cfg.MemoTTL), breaker)
		checker = health.RedisChecker{Client: client}
	} else {
		logger.Info().Msg("REDIS_URL not set; quotes are recomputed on every request")
	}

	limiterStore, err := ratelimit.NewStore(redisClient, "tithe:ratelimit")
	if err != nil {
		return err
	}
	limiter, err := ratelimit.NewFixedWindow(cfg.RateLimit, limiterStore)
	if err != nil {
		return err
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.Obs.EnablePrometheus {
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, cfg.Obs.MetricsBuckets, prometheus.DefaultRegisterer)
	}

	svc := quote.NewService(quote.ServiceConfig{
		Memo:     memo,
		Logger:   logger,
		Defaults: cfg.Defaults,
	})

	router := newRouter(routerDeps{
		cfg:         cfg,
		logger:      logger,
		quotes:      quote.NewHandler(svc),
		health:      health.Handler{Checker: checker, RedisTimeout: cfg.RedisReadyTimeout, RequireRedis: cfg.RequireRedis},
		limiter:     limiter,
		httpMetrics: httpMetrics,
		tracing:     tracingEnabled,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		health.SetReady(false)
		logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newRedisClient(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if cfg.Obs.EnablePrometheus {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// Memo failures never fail a quote, so an unreachable store only degrades caching.
		logger.Warn().Err(err).Msg("ping redis")
	}
	return client, nil
}
