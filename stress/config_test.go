package stress

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xalgo/observability"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	require.Equal(t, defaultTrials, cfg.Stress.Trials)
	require.Equal(t, defaultOperations, cfg.Stress.Operations)
	require.Equal(t, defaultKeySpace, cfg.Stress.KeySpace)
	require.Equal(t, defaultWorkers, cfg.Stress.Workers)
	require.Equal(t, defaultValidateEvery, cfg.Stress.ValidateEvery)
	require.Equal(t, []Policy{PolicyAVL, PolicyRB, PolicyHeap}, cfg.Stress.policies())
	require.Equal(t, uint64(0), cfg.Stress.Seed)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, string(observability.NoopExporter), cfg.Metrics.Exporter)
	require.Equal(t, 10*time.Second, cfg.Metrics.Interval)
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stress.yaml")
	content := []byte(`
stress:
  trials: 3
  operations: 500
  key_space: 64
  policies: [avl, heap]
  seed: 42
logging:
  level: debug
metrics:
  exporter: console
  interval: 2s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("XALGO_STRESS_WORKERS", "2")
	t.Setenv("XALGO_STRESS_OPERATIONS", "700")

	flags := pflag.NewFlagSet("stress", pflag.ContinueOnError)
	flags.Int("operations", 0, "")
	flags.Int("key-space", 0, "")
	require.NoError(t, flags.Parse([]string{"--key-space=128"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Stress.Trials)
	require.Equal(t, 700, cfg.Stress.Operations) // env over file, unchanged flag ignored
	require.Equal(t, 128, cfg.Stress.KeySpace)   // changed flag over file
	require.Equal(t, 2, cfg.Stress.Workers)
	require.Equal(t, uint64(42), cfg.Stress.Seed)
	require.Equal(t, []Policy{PolicyAVL, PolicyHeap}, cfg.Stress.policies())
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "console", cfg.Metrics.Exporter)
	require.Equal(t, 2*time.Second, cfg.Metrics.Interval)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Stress: StressConfig{
				Policies:      []string{"avl"},
				Trials:        1,
				Operations:    1,
				KeySpace:      1,
				Workers:       1,
				ValidateEvery: 1,
			},
			Metrics: MetricsConfig{Exporter: "none", Interval: time.Second},
		}
	}
	testcases := []struct {
		name   string
		mutate func(cfg *Config)
		err    error
	}{
		{"trials", func(cfg *Config) { cfg.Stress.Trials = 0 }, ErrInvalidTrials},
		{"operations", func(cfg *Config) { cfg.Stress.Operations = -1 }, ErrInvalidOperations},
		{"key space", func(cfg *Config) { cfg.Stress.KeySpace = 0 }, ErrInvalidKeySpace},
		{"workers", func(cfg *Config) { cfg.Stress.Workers = 0 }, ErrInvalidWorkers},
		{"validate every", func(cfg *Config) { cfg.Stress.ValidateEvery = 0 }, ErrInvalidValidateEvery},
		{"no policy", func(cfg *Config) { cfg.Stress.Policies = nil }, ErrNoPolicy},
		{"unknown policy", func(cfg *Config) { cfg.Stress.Policies = []string{"avl", "splay"} }, ErrUnknownPolicy},
		{"exporter", func(cfg *Config) { cfg.Metrics.Exporter = "otlp" }, observability.ErrUnknownExporter},
		{"interval", func(cfg *Config) { cfg.Metrics.Interval = 0 }, ErrInvalidInterval},
	}
	require.NoError(t, validateConfig(valid()))
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			require.ErrorIs(tt, validateConfig(cfg), tc.err)
		})
	}
}
