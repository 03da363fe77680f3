// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment keys.
const (
	EnvDataDir           = EnvPrefix + "DATA_DIR"
	EnvLogLevel          = EnvPrefix + "LOG_LEVEL"
	EnvLogService        = EnvPrefix + "LOG_SERVICE"
	EnvListen            = EnvPrefix + "LISTEN"
	EnvShutdownTimeout   = EnvPrefix + "SHUTDOWN_TIMEOUT"
	EnvRateLimitEnabled  = EnvPrefix + "RATELIMIT_ENABLED"
	EnvRateLimitRPM      = EnvPrefix + "RATELIMIT_RPM"
	EnvMetricsEnabled    = EnvPrefix + "METRICS_ENABLED"
	EnvMetricsListen     = EnvPrefix + "METRICS_LISTEN"
	EnvTickInterval      = EnvPrefix + "TICK_INTERVAL"
	EnvDefaultSequence   = EnvPrefix + "DEFAULT_SEQUENCE"
	EnvClasses           = EnvPrefix + "CLASSES"
	EnvStaggerGap        = EnvPrefix + "STAGGER_GAP"
	EnvSequencesFile     = EnvPrefix + "SEQUENCES_FILE"
	EnvSequencesWatch    = EnvPrefix + "SEQUENCES_WATCH"
	EnvJournalEnabled    = EnvPrefix + "JOURNAL_ENABLED"
	EnvJournalPath       = EnvPrefix + "JOURNAL_PATH"
	EnvTelemetryEnabled  = EnvPrefix + "TELEMETRY_ENABLED"
	EnvTelemetryExporter = EnvPrefix + "TELEMETRY_EXPORTER"
	EnvTelemetryEndpoint = EnvPrefix + "TELEMETRY_ENDPOINT"
	EnvTelemetrySampling = EnvPrefix + "TELEMETRY_SAMPLING"
)

const (
	defaultSequencesFile  = "sequences.yaml"
	defaultJournalFile    = "journal.sqlite"
	defaultDataDir        = "data"
	defaultTickInterval   = 250 * time.Millisecond
	defaultStaggerGap     = 5 * time.Minute
	defaultShutdownPeriod = 10 * time.Second
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. configPath may be empty.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:    defaultDataDir,
		LogLevel:   "info",
		LogService: "startline",
		API: APIConfig{
			ListenAddr:        ":8080",
			RateLimitEnabled:  true,
			RateLimitRPM:      240,
			ShutdownTimeout:   defaultShutdownPeriod,
			ReadHeaderTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{Enabled: true, ListenAddr: ":9090"},
		Engine: EngineConfig{
			TickInterval:    defaultTickInterval,
			DefaultSequence: "5min",
			StaggerGap:      defaultStaggerGap,
		},
		Sequences: SequencesConfig{Watch: true},
		Journal:   JournalConfig{Enabled: true},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// Load loads configuration with precedence: ENV > File > Defaults, then
// resolves derived paths and validates.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.Sequences.File == "" {
		cfg.Sequences.File = filepath.Join(cfg.DataDir, defaultSequencesFile)
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = filepath.Join(cfg.DataDir, defaultJournalFile)
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return decodeFile(data)
}

func decodeFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	setString(&dst.DataDir, src.DataDir)
	setString(&dst.LogLevel, src.LogLevel)
	setString(&dst.LogService, src.LogService)

	setString(&dst.API.ListenAddr, src.API.Listen)
	if err := setDuration(&dst.API.ShutdownTimeout, "api.shutdownTimeout", src.API.ShutdownTimeout); err != nil {
		return err
	}
	setBool(&dst.API.RateLimitEnabled, src.API.RateLimit.Enabled)
	if src.API.RateLimit.RequestsPerMinute != 0 {
		dst.API.RateLimitRPM = src.API.RateLimit.RequestsPerMinute
	}

	setBool(&dst.Metrics.Enabled, src.Metrics.Enabled)
	setString(&dst.Metrics.ListenAddr, src.Metrics.Listen)

	if err := setDuration(&dst.Engine.TickInterval, "engine.tickInterval", src.Engine.TickInterval); err != nil {
		return err
	}
	if err := setDuration(&dst.Engine.StaggerGap, "engine.staggerGap", src.Engine.StaggerGap); err != nil {
		return err
	}
	setString(&dst.Engine.DefaultSequence, src.Engine.DefaultSequence)
	if len(src.Engine.Classes) > 0 {
		dst.Engine.Classes = append([]string(nil), src.Engine.Classes...)
	}

	setString(&dst.Sequences.File, src.Sequences.File)
	setBool(&dst.Sequences.Watch, src.Sequences.Watch)

	setBool(&dst.Journal.Enabled, src.Journal.Enabled)
	setString(&dst.Journal.Path, src.Journal.Path)

	setBool(&dst.Telemetry.Enabled, src.Telemetry.Enabled)
	setString(&dst.Telemetry.Exporter, src.Telemetry.Exporter)
	setString(&dst.Telemetry.Endpoint, src.Telemetry.Endpoint)
	if src.Telemetry.SamplingRate != nil {
		dst.Telemetry.SamplingRate = *src.Telemetry.SamplingRate
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)

	cfg.API.ListenAddr = l.envString(EnvListen, cfg.API.ListenAddr)
	cfg.API.ShutdownTimeout = l.envDuration(EnvShutdownTimeout, cfg.API.ShutdownTimeout)
	cfg.API.RateLimitEnabled = l.envBool(EnvRateLimitEnabled, cfg.API.RateLimitEnabled)
	cfg.API.RateLimitRPM = l.envInt(EnvRateLimitRPM, cfg.API.RateLimitRPM)

	cfg.Metrics.Enabled = l.envBool(EnvMetricsEnabled, cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = l.envString(EnvMetricsListen, cfg.Metrics.ListenAddr)

	cfg.Engine.TickInterval = l.envDuration(EnvTickInterval, cfg.Engine.TickInterval)
	cfg.Engine.DefaultSequence = l.envString(EnvDefaultSequence, cfg.Engine.DefaultSequence)
	cfg.Engine.Classes = l.envList(EnvClasses, cfg.Engine.Classes)
	cfg.Engine.StaggerGap = l.envDuration(EnvStaggerGap, cfg.Engine.StaggerGap)

	cfg.Sequences.File = l.envString(EnvSequencesFile, cfg.Sequences.File)
	cfg.Sequences.Watch = l.envBool(EnvSequencesWatch, cfg.Sequences.Watch)

	cfg.Journal.Enabled = l.envBool(EnvJournalEnabled, cfg.Journal.Enabled)
	cfg.Journal.Path = l.envString(EnvJournalPath, cfg.Journal.Path)

	cfg.Telemetry.Enabled = l.envBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvTelemetryExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvTelemetryEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTelemetrySampling, cfg.Telemetry.SamplingRate)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, field, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}
