package main

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wealth-tithe/internal/config"
	"github.com/noah-isme/wealth-tithe/internal/health"
	"github.com/noah-isme/wealth-tithe/internal/obs"
	"github.com/noah-isme/wealth-tithe/internal/quote"
	"github.com/noah-isme/wealth-tithe/internal/ratelimit"
	"github.com/noah-isme/wealth-tithe/internal/security"
)

type routerDeps struct {
	cfg         *config.Config
	logger      zerolog.Logger
	quotes      *quote.Handler
	health      health.Handler
	limiter     ratelimit.Limiter
	httpMetrics *obs.HTTPMetrics
	tracing     bool
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if d.tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.logger, Quiet: []string{"/health/live", "/health/ready", "/metrics"}}.Middleware)
	r.Use(security.Headers{HSTS: d.cfg.AppEnv == "production"}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(d.cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	if d.httpMetrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	if d.cfg.Obs.EnablePprof {
		r.Mount("/debug", protectPprof(middleware.Profiler(), d.cfg.Obs.PprofUser, d.cfg.Obs.PprofPass))
	}

	r.Get("/health/live", d.health.Live)
	r.Get("/health/ready", d.health.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(ratelimit.Handler{
			Limiter: d.limiter,
			Key:     ratelimit.ByClientIP,
			OnError: func(err error) { d.logger.Warn().Err(err).Msg("rate limiter unavailable") },
		}.Middleware)
		v.Use(security.JSONBody{MaxBytes: d.cfg.BodyLimitBytes}.Middleware)
		d.quotes.Routes(v)
	})
	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
