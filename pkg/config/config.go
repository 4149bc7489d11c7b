// Package config loads filterphrase settings from defaults and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/filterphrase/pkg/lister"
)

// Sentinel validation errors.
var (
	ErrInvalidBackend   = errors.New("invalid lister backend")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// EnvPrefix prefixes every environment override, e.g. FILTERPHRASE_LISTER_BACKEND.
const EnvPrefix = "FILTERPHRASE"

// Lister backends.
const (
	BackendRipgrep = lister.BackendRipgrep
	BackendWalk    = lister.BackendWalk
	BackendGit     = lister.BackendGit
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all filterphrase settings. None of them change how prompts are scored.
type Config struct {
	Lister    ListerConfig    `mapstructure:"lister"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ListerConfig selects how the candidate file list is produced.
type ListerConfig struct {
	Backend    string `mapstructure:"backend"`
	SkipVendor bool   `mapstructure:"skip_vendor"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Environment  string `mapstructure:"environment"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// Load builds the configuration from defaults overridden by environment variables.
func Load() (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// SlogLevel returns the parsed log level. Call only on a validated config.
func (lc LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level

	err := level.UnmarshalText([]byte(lc.Level))
	if err != nil {
		return slog.LevelWarn
	}

	return level
}

// JSON reports whether logs are written as JSON.
func (lc LoggingConfig) JSON() bool {
	return lc.Format == LogFormatJSON
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("lister.backend", BackendRipgrep)
	viperCfg.SetDefault("lister.skip_vendor", false)

	// Warn keeps the prompt free of startup chatter.
	viperCfg.SetDefault("logging.level", "warn")
	viperCfg.SetDefault("logging.format", LogFormatText)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", "")
}

func validateConfig(config *Config) error {
	switch config.Lister.Backend {
	case BackendRipgrep, BackendWalk, BackendGit:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, config.Lister.Backend)
	}

	var level slog.Level

	levelErr := level.UnmarshalText([]byte(config.Logging.Level))
	if levelErr != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch config.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}
