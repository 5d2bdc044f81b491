package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/reportnotify/pkg/logger"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "reportnotify:deliveries", cfg.Redis.Queue)
	assert.Equal(t, 5*time.Second, cfg.Redis.PopTimeout)
}

func TestNew_Options(t *testing.T) {
	cfg, err := New(
		WithLanguage("de"),
		WithLogLevel("debug"),
		WithTelemetry("http://collector:4318", 0.5),
		WithRedis("redis:6379", "jobs"),
	)
	require.NoError(t, err)

	assert.Equal(t, "de", cfg.Language)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "http://collector:4318", cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRate)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "jobs", cfg.Redis.Queue)
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty redis addr", WithRedis("", "q")},
		{"sample rate out of range", WithTelemetry("http://collector:4318", 2)},
		{"telemetry without endpoint", WithTelemetry(" ", 1)},
		{"bad log format", func(c *Config) error { c.Logger.Format = "xml"; return nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestBuildLogger(t *testing.T) {
	cfg, err := New(WithLogger(logger.Discard))
	require.NoError(t, err)

	l, err := cfg.BuildLogger()
	require.NoError(t, err)
	assert.Same(t, logger.Discard, l)

	cfg, err = New(WithTestDefaults())
	require.NoError(t, err)
	l, err = cfg.BuildLogger()
	require.NoError(t, err)
	assert.IsType(t, &logger.ZapLogger{}, l)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reportnotify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
language: fr
logger:
  level: warn
  format: console
redis:
  addr: cache:6379
  queue: reports
  pop_timeout: 2s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "reports", cfg.Redis.Queue)
	assert.Equal(t, 2*time.Second, cfg.Redis.PopTimeout)
	assert.Equal(t, "reportnotify", cfg.Telemetry.ServiceName)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("REPORTNOTIFY_LOGGER_LEVEL", "error")
	t.Setenv("REPORTNOTIFY_REDIS_ADDR", "env-redis:6380")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logger.Level)
	assert.Equal(t, "env-redis:6380", cfg.Redis.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
