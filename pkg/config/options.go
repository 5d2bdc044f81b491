// Functional options for service configuration
package config

import (
	"fmt"

	"github.com/kart-io/reportnotify/pkg/logger"
)

// WithLogger sets the logger instance
func WithLogger(l logger.Logger) Option {
	return func(c *Config) error {
		c.LoggerInstance = l
		return nil
	}
}

// WithLogLevel sets the log level used when no logger instance is given
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logger.Level = level
		return nil
	}
}

// WithLanguage selects the translation language
func WithLanguage(lang string) Option {
	return func(c *Config) error {
		c.Language = lang
		return nil
	}
}

// WithTelemetry enables OpenTelemetry export to endpoint
func WithTelemetry(endpoint string, sampleRate float64) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = true
		c.Telemetry.OTLPEndpoint = endpoint
		c.Telemetry.SampleRate = sampleRate
		return nil
	}
}

// WithRedis sets the Redis address and job queue key
func WithRedis(addr, queue string) Option {
	return func(c *Config) error {
		if addr == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
		c.Redis.Addr = addr
		if queue != "" {
			c.Redis.Queue = queue
		}
		return nil
	}
}

// WithTestDefaults applies test-friendly defaults
func WithTestDefaults() Option {
	return func(c *Config) error {
		c.Logger.Level = "debug"
		c.Logger.Format = "console"
		c.Telemetry.Enabled = false
		c.Telemetry.Environment = "test"
		return nil
	}
}
