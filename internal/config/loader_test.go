// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/startline/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(EnvDataDir, dataDir)

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, ":8080", cfg.API.ListenAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.TickInterval)
	assert.Equal(t, "5min", cfg.Engine.DefaultSequence)
	assert.Equal(t, filepath.Join(dataDir, "sequences.yaml"), cfg.Sequences.File)
	assert.Equal(t, filepath.Join(dataDir, "journal.sqlite"), cfg.Journal.Path)
	assert.True(t, cfg.Journal.Enabled)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, "startline.yaml", `
dataDir: `+dataDir+`
logLevel: debug
api:
  listen: "127.0.0.1:7000"
  rateLimit:
    enabled: false
engine:
  tickInterval: 100ms
  defaultSequence: 3min
  classes: [laser, "420"]
  staggerGap: 6m
journal:
  enabled: false
telemetry:
  enabled: true
  exporter: http
  endpoint: collector:4318
  samplingRate: 0.5
`)
	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:7000", cfg.API.ListenAddr)
	assert.False(t, cfg.API.RateLimitEnabled)
	assert.Equal(t, 100*time.Millisecond, cfg.Engine.TickInterval)
	assert.Equal(t, "3min", cfg.Engine.DefaultSequence)
	assert.Equal(t, []string{"laser", "420"}, cfg.Engine.Classes)
	assert.Equal(t, 6*time.Minute, cfg.Engine.StaggerGap)
	assert.False(t, cfg.Journal.Enabled)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "http", cfg.Telemetry.Exporter)
	assert.InDelta(t, 0.5, cfg.Telemetry.SamplingRate, 1e-9)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, "startline.yml", `
dataDir: `+dataDir+`
engine:
  classes: [laser]
  tickInterval: 100ms
`)
	t.Setenv(EnvClasses, "optimist, 29er ,")
	t.Setenv(EnvTickInterval, "500ms")
	t.Setenv(EnvMetricsEnabled, "no")

	l := NewLoader(path, "dev")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"optimist", "29er"}, cfg.Engine.Classes)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.TickInterval)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Contains(t, l.ConsumedEnvKeys, EnvClasses)
}

func TestLoad_UnknownFieldIsRejected(t *testing.T) {
	path := writeConfig(t, "startline.yaml", "engine:\n  tickRate: 1s\n")
	_, err := NewLoader(path, "dev").Load()
	require.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoad_RejectsNonYAML(t *testing.T) {
	path := writeConfig(t, "startline.json", "{}")
	_, err := NewLoader(path, "dev").Load()
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_RejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "startline.yaml", "logLevel: info\n---\nlogLevel: debug\n")
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	path := writeConfig(t, "startline.yaml", "")
	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Metrics.ListenAddr)
}

func TestLoad_BadDurationInFile(t *testing.T) {
	path := writeConfig(t, "startline.yaml", "engine:\n  tickInterval: soon\n")
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.tickInterval")
}

func TestValidate(t *testing.T) {
	base := Defaults()
	base.DataDir = t.TempDir()
	base.Journal.Path = filepath.Join(base.DataDir, "j.sqlite")
	require.NoError(t, Validate(base))

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"bad level", func(c *AppConfig) { c.LogLevel = "loud" }, "LogLevel"},
		{"bad listen", func(c *AppConfig) { c.API.ListenAddr = "8080" }, "API.ListenAddr"},
		{"same listeners", func(c *AppConfig) { c.Metrics.ListenAddr = c.API.ListenAddr }, "Metrics.ListenAddr"},
		{"tick too fast", func(c *AppConfig) { c.Engine.TickInterval = time.Millisecond }, "Engine.TickInterval"},
		{"no sequence", func(c *AppConfig) { c.Engine.DefaultSequence = " " }, "Engine.DefaultSequence"},
		{"duplicate class", func(c *AppConfig) { c.Engine.Classes = []string{"a", "a"} }, "Engine.Classes"},
		{"bad class", func(c *AppConfig) { c.Engine.Classes = []string{"a/b"} }, "Engine.Classes"},
		{"bad rpm", func(c *AppConfig) { c.API.RateLimitRPM = 0 }, "API.RateLimitRPM"},
		{"bad exporter", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "zipkin"
		}, "Telemetry.Exporter"},
		{"bad sampling", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.SamplingRate = 2
		}, "Telemetry.SamplingRate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Engine.Classes = nil
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			var ve validate.ValidationError
			require.ErrorAs(t, err, &ve)
			require.NotEmpty(t, ve.Errors())
			assert.Equal(t, tt.field, ve.Errors()[0].Field)
		})
	}
}
