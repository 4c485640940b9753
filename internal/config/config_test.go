package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wealth-tithe/internal/tithe"
)

// cleanEnv unsets every key Load reads so the host environment cannot leak into a test.
func cleanEnv(overrides map[string]string) map[string]string {
	env := map[string]string{
		"APP_ENV": "", "PORT": "", "REDIS_URL": "", "MEMO_TTL": "", "MEMO_BREAKER_COOLDOWN": "", "RATE_LIMIT": "",
		"BODY_LIMIT_BYTES": "", "SCHEDULE_FILE": "", "OBS_TRACING_SAMPLING_RATIO": "",
		"TITHE_THRESHOLD": "", "TITHE_BAND1_CAP": "", "TITHE_BAND2_CAP": "",
		"TITHE_RATE1": "", "TITHE_RATE2": "", "TITHE_RATE3": "", "TITHE_CALIBRATION": "",
		"LVT_RATE": "", "LVT_ALLOWANCE": "", "LAND_PRESET": "", "DONATION_SPLIT": "",
		"GIFT_AID": "", "TAX_BAND": "", "OBS_METRICS_BUCKETS_MS": "", "OBS_OTLP_HEADERS": "",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return env
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(cleanEnv(nil))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.False(t, cfg.MemoEnabled())
	require.Equal(t, 10*time.Minute, cfg.MemoTTL)
	require.Equal(t, 30*time.Second, cfg.MemoCooldown)
	require.Equal(t, "120-M", cfg.RateLimit)
	require.EqualValues(t, 64<<10, cfg.BodyLimitBytes)
	require.Equal(t, tithe.DefaultInputs(), cfg.Defaults)
	require.Equal(t, "tithe", cfg.Obs.MetricsNamespace)
}

func TestLoadCalculatorOverrides(t *testing.T) {
	cfg, err := LoadForTests(cleanEnv(map[string]string{
		"PORT":            ":9000",
		"REDIS_URL":       "redis://localhost:6379/0",
		"TITHE_BAND1_CAP": "300000000",
		"LVT_ALLOWANCE":   "100000",
		"LAND_PRESET":     "Prime",
		"GIFT_AID":        "false",
		"TAX_BAND":        "0.4",
	}))
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.HTTPAddr())
	require.True(t, cfg.MemoEnabled())
	require.Equal(t, 300_000_000.0, cfg.Defaults.Schedule.Cap1)
	require.Equal(t, 300_000_000.0, cfg.Defaults.Schedule.Cap2)
	require.Equal(t, 100_000.0, cfg.Defaults.Land.Allowance)
	require.Equal(t, tithe.LandPrime, cfg.Defaults.Land.Preset)
	require.Equal(t, 0.7, cfg.Defaults.Land.CustomShare)
	require.False(t, cfg.Defaults.Donation.GiftAid)
	require.Equal(t, 0.4, cfg.Defaults.Donation.TaxBand)
}

func TestLoadRejectsInvalidNumbers(t *testing.T) {
	_, err := LoadForTests(cleanEnv(map[string]string{
		"TITHE_RATE1": "one percent",
		"LAND_PRESET": "moon",
	}))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidValue)
	require.Contains(t, err.Error(), "TITHE_RATE1")
	require.Contains(t, err.Error(), "LAND_PRESET")
}

func TestLoadObservabilityLists(t *testing.T) {
	cfg, err := LoadForTests(cleanEnv(map[string]string{
		"OBS_METRICS_BUCKETS_MS": "50, 5,10,5",
		"OBS_OTLP_HEADERS":       "x-api-key=abc, x-team = tithe",
	}))
	require.NoError(t, err)
	require.Equal(t, []float64{5, 10, 50}, cfg.Obs.MetricsBuckets)
	require.Equal(t, map[string]string{"x-api-key": "abc", "x-team": "tithe"}, cfg.Obs.OTLPHeaders)

	_, err = LoadForTests(cleanEnv(map[string]string{
		"OBS_METRICS_BUCKETS_MS": "5,-1",
		"OBS_OTLP_HEADERS":       "novalue",
	}))
	require.ErrorIs(t, err, ErrInvalidValue)
	require.Contains(t, err.Error(), "OBS_METRICS_BUCKETS_MS")
	require.Contains(t, err.Error(), "OBS_OTLP_HEADERS")
}

func TestLoadScheduleFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
threshold: 5000000
bands:
  cap1: 20000000
  cap2: 100000000
  rate1: 0.005
  rate2: 0.01
  rate3: 0.03
lvt:
  rate: 0.02
`), 0o600))

	cfg, err := LoadForTests(cleanEnv(map[string]string{
		"SCHEDULE_FILE": path,
		"LVT_RATE":      "0.016",
	}))
	require.NoError(t, err)

	require.Equal(t, 5_000_000.0, cfg.Defaults.Threshold)
	require.Equal(t, tithe.BandSchedule{Cap1: 20_000_000, Cap2: 100_000_000, Rate1: 0.005, Rate2: 0.01, Rate3: 0.03}, cfg.Defaults.Schedule)
	require.Equal(t, 0.016, cfg.Defaults.Land.Rate)
	require.Equal(t, float64(tithe.DefaultLVTAllowance), cfg.Defaults.Land.Allowance)
}

func TestLoadMissingScheduleFile(t *testing.T) {
	_, err := LoadForTests(cleanEnv(map[string]string{
		"SCHEDULE_FILE": filepath.Join(t.TempDir(), "missing.yaml"),
	}))
	require.Error(t, err)
}
