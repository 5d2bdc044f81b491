// Package config provides configuration for the report notification service.
// The webhook request timeout is the constant webhook.SendTimeout.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/reportnotify/pkg/logger"
)

// Config represents the service configuration
type Config struct {
	// Language selects the translation used for subjects, attachment names
	// and error templates.
	Language string `mapstructure:"language" json:"language"`

	Logger    LoggerConfig    `mapstructure:"logger" json:"logger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" json:"telemetry"`
	Redis     RedisConfig     `mapstructure:"redis" json:"redis"`

	LoggerInstance logger.Logger `mapstructure:"-" json:"-"`
}

// LoggerConfig configures logging behavior
type LoggerConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// TelemetryConfig configures OpenTelemetry tracing and metrics
type TelemetryConfig struct {
	Enabled        bool              `mapstructure:"enabled" json:"enabled"`
	ServiceName    string            `mapstructure:"service_name" json:"service_name"`
	ServiceVersion string            `mapstructure:"service_version" json:"service_version"`
	Environment    string            `mapstructure:"environment" json:"environment"`
	OTLPEndpoint   string            `mapstructure:"otlp_endpoint" json:"otlp_endpoint"`
	OTLPHeaders    map[string]string `mapstructure:"otlp_headers" json:"otlp_headers,omitempty"`
	TracingEnabled bool              `mapstructure:"tracing_enabled" json:"tracing_enabled"`
	MetricsEnabled bool              `mapstructure:"metrics_enabled" json:"metrics_enabled"`
	SampleRate     float64           `mapstructure:"sample_rate" json:"sample_rate"`
}

// RedisConfig configures the Redis list the worker consumes delivery jobs from
type RedisConfig struct {
	Addr        string        `mapstructure:"addr" json:"addr"`
	Password    string        `mapstructure:"password" json:"-"`
	DB          int           `mapstructure:"db" json:"db"`
	Queue       string        `mapstructure:"queue" json:"queue"`
	PopTimeout  time.Duration `mapstructure:"pop_timeout" json:"pop_timeout"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" json:"dial_timeout"`
}

// Option defines a functional option for configuration
type Option func(*Config) error

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Language: "en",
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "reportnotify",
			ServiceVersion: "1.0.0",
			Environment:    "development",
			OTLPEndpoint:   "http://localhost:4318",
			TracingEnabled: true,
			MetricsEnabled: true,
			SampleRate:     1.0,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			Queue:       "reportnotify:deliveries",
			PopTimeout:  5 * time.Second,
			DialTimeout: 5 * time.Second,
		},
	}
}

// New creates a new configuration with the given options
func New(opts ...Option) (*Config, error) {
	cfg := Default()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fills unset values with defaults and rejects invalid ones
func (c *Config) Validate() error {
	if c.Language == "" {
		c.Language = "en"
	}

	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	switch c.Logger.Format {
	case "":
		c.Logger.Format = "json"
	case "json", "console":
	default:
		return fmt.Errorf("unsupported logger format %q", c.Logger.Format)
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry sample rate must be within [0, 1], got %v", c.Telemetry.SampleRate)
	}
	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.OTLPEndpoint) == "" {
		return fmt.Errorf("telemetry is enabled but otlp_endpoint is empty")
	}

	if c.Redis.Queue == "" {
		c.Redis.Queue = "reportnotify:deliveries"
	}
	if c.Redis.PopTimeout <= 0 {
		c.Redis.PopTimeout = 5 * time.Second
	}
	if c.Redis.DialTimeout <= 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}

	return nil
}

// BuildLogger returns LoggerInstance when set, otherwise a zap logger built
// from the Logger section.
func (c *Config) BuildLogger() (logger.Logger, error) {
	if c.LoggerInstance != nil {
		return c.LoggerInstance, nil
	}
	return logger.NewFromConfig(c.Logger.Level, c.Logger.Format)
}
