package stress

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/benz9527/xalgo/observability"
)

var (
	ErrInvalidTrials        = errors.New("stress trials must be positive")
	ErrInvalidOperations    = errors.New("stress operations must be positive")
	ErrInvalidKeySpace      = errors.New("stress key space must be positive")
	ErrInvalidWorkers       = errors.New("stress workers must be positive")
	ErrInvalidValidateEvery = errors.New("stress validate every must be positive")
	ErrUnknownPolicy        = errors.New("unknown stress policy")
	ErrNoPolicy             = errors.New("no stress policy selected")
	ErrInvalidInterval      = errors.New("metrics interval must be positive")
)

const (
	envPrefix            = "XALGO"
	defaultTrials        = 8
	defaultOperations    = 10_000
	defaultKeySpace      = 2_048
	defaultWorkers       = 4
	defaultValidateEvery = 256
)

type Policy string

const (
	PolicyAVL  Policy = "avl"
	PolicyRB   Policy = "rb"
	PolicyHeap Policy = "heap"
)

var knownPolicies = []Policy{PolicyAVL, PolicyRB, PolicyHeap}

type Config struct {
	Stress  StressConfig  `mapstructure:"stress"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type StressConfig struct {
	Policies      []string `mapstructure:"policies"`
	Seed          uint64   `mapstructure:"seed"` // 0 picks a random seed
	Trials        int      `mapstructure:"trials"`
	Operations    int      `mapstructure:"operations"`
	KeySpace      int      `mapstructure:"key_space"`
	Workers       int      `mapstructure:"workers"`
	ValidateEvery int      `mapstructure:"validate_every"`
}

func (cfg StressConfig) policies() []Policy {
	return lo.Uniq(lo.Map(cfg.Policies, func(p string, _ int) Policy {
		return Policy(strings.ToLower(strings.TrimSpace(p)))
	}))
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Exporter string        `mapstructure:"exporter"`
	Listen   string        `mapstructure:"listen"`
	Interval time.Duration `mapstructure:"interval"`
}

// flagKeys maps the CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"trials":         "stress.trials",
	"operations":     "stress.operations",
	"key-space":      "stress.key_space",
	"workers":        "stress.workers",
	"policies":       "stress.policies",
	"seed":           "stress.seed",
	"validate-every": "stress.validate_every",
	"log-level":      "logging.level",
	"log-format":     "logging.format",
	"metrics":        "metrics.exporter",
	"metrics-listen": "metrics.listen",
}

// LoadConfig resolves the configuration by precedence: changed flags,
// XALGO_ prefixed environment, the config file, the defaults.
// An empty configPath looks for xalgo.yaml in the working directory and
// tolerates its absence.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("xalgo")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := viperCfg.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := viperCfg.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("stress.trials", defaultTrials)
	viperCfg.SetDefault("stress.operations", defaultOperations)
	viperCfg.SetDefault("stress.key_space", defaultKeySpace)
	viperCfg.SetDefault("stress.workers", defaultWorkers)
	viperCfg.SetDefault("stress.policies", []string{string(PolicyAVL), string(PolicyRB), string(PolicyHeap)})
	viperCfg.SetDefault("stress.seed", 0)
	viperCfg.SetDefault("stress.validate_every", defaultValidateEvery)

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")

	viperCfg.SetDefault("metrics.exporter", string(observability.NoopExporter))
	viperCfg.SetDefault("metrics.listen", ":9464")
	viperCfg.SetDefault("metrics.interval", "10s")
}

func validateConfig(cfg *Config) error {
	s := cfg.Stress
	if s.Trials <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTrials, s.Trials)
	}
	if s.Operations <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOperations, s.Operations)
	}
	if s.KeySpace <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidKeySpace, s.KeySpace)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, s.Workers)
	}
	if s.ValidateEvery <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidValidateEvery, s.ValidateEvery)
	}
	policies := s.policies()
	if len(policies) == 0 {
		return ErrNoPolicy
	}
	if unknown := lo.Without(policies, knownPolicies...); len(unknown) > 0 {
		return fmt.Errorf("%w: %v", ErrUnknownPolicy, unknown)
	}
	if _, err := observability.ParseExporterType(cfg.Metrics.Exporter); err != nil {
		return err
	}
	if cfg.Metrics.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, cfg.Metrics.Interval)
	}
	return nil
}
