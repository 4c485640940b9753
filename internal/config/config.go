package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/wealth-tithe/internal/tithe"
)

// ErrInvalidValue marks an environment value that could not be parsed.
var ErrInvalidValue = errors.New("invalid config value")

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	MemoTTL            time.Duration
	MemoCooldown       time.Duration
	CORSAllowedOrigins []string
	RateLimit          string
	BodyLimitBytes     int64
	ShutdownTimeout    time.Duration
	RedisReadyTimeout  time.Duration
	RequireRedis       bool
	ScheduleFile       string
	Obs                ObsConfig
	// Defaults is the calculator state new quotes are overlaid on.
	Defaults tithe.Inputs
}

// ObsConfig groups logging, metrics and tracing settings.
type ObsConfig struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsBuckets   []float64
	EnablePrometheus bool
	EnableTracing    bool
	TracingExporter  string
	OTLPEndpoint     string
	OTLPHeaders      map[string]string
	SamplingRatio    float64
	EnablePprof      bool
	PprofUser        string
	PprofPass        string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		MemoTTL:            parseDuration(k.String("MEMO_TTL"), "10m"),
		MemoCooldown:       parseDuration(k.String("MEMO_BREAKER_COOLDOWN"), "30s"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		RateLimit:          valueOrDefault(k.String("RATE_LIMIT"), "120-M"),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),
		RedisReadyTimeout:  parseDuration(k.String("HEALTH_READY_REDIS_TIMEOUT"), "300ms"),
		RequireRedis:       parseBoolDefault(k.String("HEALTH_READY_REQUIRE_REDIS"), false),
		ScheduleFile:       strings.TrimSpace(k.String("SCHEDULE_FILE")),
		Obs: ObsConfig{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "tithe"),
			EnablePrometheus: parseBoolDefault(k.String("OBS_ENABLE_PROMETHEUS"), true),
			EnableTracing:    parseBoolDefault(k.String("OBS_ENABLE_TRACING"), false),
			TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			EnablePprof:      parseBoolDefault(k.String("OBS_ENABLE_PPROF"), false),
			PprofUser:        strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_USER")),
			PprofPass:        strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_PASS")),
		},
	}

	var errs []error
	num := func(key string, fallback float64) float64 {
		v, err := parseFloat(k.String(key), fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}

	cfg.Obs.SamplingRatio = num("OBS_TRACING_SAMPLING_RATIO", 1.0)
	if buckets, err := parseBuckets(k.String("OBS_METRICS_BUCKETS_MS")); err != nil {
		errs = append(errs, fmt.Errorf("OBS_METRICS_BUCKETS_MS: %w", err))
	} else {
		cfg.Obs.MetricsBuckets = buckets
	}
	if headers, err := parseHeaders(k.String("OBS_OTLP_HEADERS")); err != nil {
		errs = append(errs, fmt.Errorf("OBS_OTLP_HEADERS: %w", err))
	} else {
		cfg.Obs.OTLPHeaders = headers
	}
	cfg.BodyLimitBytes = int64(num("BODY_LIMIT_BYTES", 64<<10))

	defaults := tithe.DefaultInputs()
	if cfg.ScheduleFile != "" {
		loaded, err := LoadScheduleFile(cfg.ScheduleFile, defaults)
		if err != nil {
			return nil, err
		}
		defaults = loaded
	}

	defaults.Threshold = num("TITHE_THRESHOLD", defaults.Threshold)
	if k.Exists("TITHE_BAND1_CAP") {
		defaults.Schedule.SetCap1(num("TITHE_BAND1_CAP", defaults.Schedule.Cap1))
	}
	if k.Exists("TITHE_BAND2_CAP") {
		defaults.Schedule.SetCap2(num("TITHE_BAND2_CAP", defaults.Schedule.Cap2))
	}
	defaults.Schedule.Rate1 = num("TITHE_RATE1", defaults.Schedule.Rate1)
	defaults.Schedule.Rate2 = num("TITHE_RATE2", defaults.Schedule.Rate2)
	defaults.Schedule.Rate3 = num("TITHE_RATE3", defaults.Schedule.Rate3)
	defaults.Calibration = num("TITHE_CALIBRATION", defaults.Calibration)
	defaults.Land.Rate = num("LVT_RATE", defaults.Land.Rate)
	defaults.Land.Allowance = num("LVT_ALLOWANCE", defaults.Land.Allowance)
	defaults.Donation.SplitPercent = num("DONATION_SPLIT", defaults.Donation.SplitPercent)
	defaults.Donation.TaxBand = num("TAX_BAND", defaults.Donation.TaxBand)
	defaults.Donation.GiftAid = parseBoolDefault(k.String("GIFT_AID"), defaults.Donation.GiftAid)
	if raw := strings.TrimSpace(k.String("LAND_PRESET")); raw != "" {
		preset, ok := tithe.ParseLandPreset(raw)
		if !ok {
			errs = append(errs, fmt.Errorf("LAND_PRESET: %w: %q", ErrInvalidValue, raw))
		} else {
			defaults.Land.SelectPreset(preset)
		}
	}
	cfg.Defaults = defaults

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// MemoEnabled reports whether a Redis memo store is configured.
func (c *Config) MemoEnabled() bool {
	return c.RedisURL != ""
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseFloat(value string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, fmt.Errorf("%w: %q", ErrInvalidValue, raw)
	}
	return v, nil
}

// parseBuckets reads comma separated histogram bounds in milliseconds, returned sorted and
// without duplicates.
func parseBuckets(value string) ([]float64, error) {
	parts := splitAndTrim(value)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%w: bucket %q", ErrInvalidValue, part)
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// parseHeaders reads "key=value" pairs separated by commas.
func parseHeaders(value string) (map[string]string, error) {
	parts := splitAndTrim(value)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(parts))
	for _, part := range parts {
		key, val, ok := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: header %q", ErrInvalidValue, part)
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
