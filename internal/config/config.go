// Package config loads pipeline configuration from file, environment, and defaults.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Diff      DiffConfig      `yaml:"diff" mapstructure:"diff"`
	Reconcile ReconcileConfig `yaml:"reconcile" mapstructure:"reconcile"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// APIConfig holds OneMap API settings.
type APIConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FetchConfig configures the bulk ingestion stage.
type FetchConfig struct {
	Concurrency        int `yaml:"concurrency" mapstructure:"concurrency"`
	MaxAttempts        int `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffMillis      int `yaml:"backoff_millis" mapstructure:"backoff_millis"`
	MaxBackoffSecs     int `yaml:"max_backoff_secs" mapstructure:"max_backoff_secs"`
	AttemptTimeoutSecs int `yaml:"attempt_timeout_secs" mapstructure:"attempt_timeout_secs"`
	ProgressInterval   int `yaml:"progress_interval" mapstructure:"progress_interval"`
}

// DiffConfig configures snapshot comparison.
type DiffConfig struct {
	// LocationThreshold is the coordinate drift, in degrees, above which a
	// record counts as moved. Drift of exactly the threshold is not a change.
	LocationThreshold float64 `yaml:"location_threshold" mapstructure:"location_threshold"`
}

// ReconcileConfig configures duplicate resolution and naming.
type ReconcileConfig struct {
	// CoordLabelPrecision is the number of decimal places used when a record
	// has neither name nor street and must be labelled by its coordinates.
	CoordLabelPrecision int `yaml:"coord_label_precision" mapstructure:"coord_label_precision"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from onemap.yaml (optional), ONEMAP_* environment
// variables, and built-in defaults, in that order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("onemap")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.onemap-registry")

	v.SetEnvPrefix("ONEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", "https://www.onemap.gov.sg")
	v.SetDefault("api.rate_limit", 20.0)
	v.SetDefault("api.timeout_secs", 60)
	v.SetDefault("fetch.concurrency", 20)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.backoff_millis", 500)
	v.SetDefault("fetch.max_backoff_secs", 30)
	v.SetDefault("fetch.attempt_timeout_secs", 60)
	v.SetDefault("fetch.progress_interval", 1000)
	v.SetDefault("diff.location_threshold", 0.0001)
	v.SetDefault("reconcile.coord_label_precision", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
