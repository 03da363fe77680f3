// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the daemon configuration from defaults, a strict YAML
// file and STARTLINE_* environment overrides, in that order of precedence.
package config

import "time"

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version    string
	DataDir    string
	LogLevel   string
	LogService string

	API       APIConfig
	Metrics   MetricsConfig
	Engine    EngineConfig
	Sequences SequencesConfig
	Journal   JournalConfig
	Telemetry TelemetryConfig
}

// APIConfig configures the HTTP control surface.
type APIConfig struct {
	ListenAddr        string
	RateLimitEnabled  bool
	RateLimitRPM      int
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled    bool
	ListenAddr string
}

// EngineConfig configures the runner and its class engines.
type EngineConfig struct {
	TickInterval    time.Duration
	DefaultSequence string
	Classes         []string
	StaggerGap      time.Duration
}

// SequencesConfig locates the custom sequence file.
type SequencesConfig struct {
	File  string
	Watch bool
}

// JournalConfig configures the SQLite signal journal.
type JournalConfig struct {
	Enabled bool
	Path    string
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FileConfig is the on-disk YAML shape. Pointer fields distinguish "unset"
// from the zero value.
type FileConfig struct {
	DataDir    string `yaml:"dataDir,omitempty"`
	LogLevel   string `yaml:"logLevel,omitempty"`
	LogService string `yaml:"logService,omitempty"`

	API       APIFileConfig       `yaml:"api,omitempty"`
	Metrics   MetricsFileConfig   `yaml:"metrics,omitempty"`
	Engine    EngineFileConfig    `yaml:"engine,omitempty"`
	Sequences SequencesFileConfig `yaml:"sequences,omitempty"`
	Journal   JournalFileConfig   `yaml:"journal,omitempty"`
	Telemetry TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

type APIFileConfig struct {
	Listen          string              `yaml:"listen,omitempty"`
	ShutdownTimeout string              `yaml:"shutdownTimeout,omitempty"`
	RateLimit       RateLimitFileConfig `yaml:"rateLimit,omitempty"`
}

type RateLimitFileConfig struct {
	Enabled           *bool `yaml:"enabled,omitempty"`
	RequestsPerMinute int   `yaml:"requestsPerMinute,omitempty"`
}

type MetricsFileConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Listen  string `yaml:"listen,omitempty"`
}

type EngineFileConfig struct {
	TickInterval    string   `yaml:"tickInterval,omitempty"`
	DefaultSequence string   `yaml:"defaultSequence,omitempty"`
	Classes         []string `yaml:"classes,omitempty"`
	StaggerGap      string   `yaml:"staggerGap,omitempty"`
}

type SequencesFileConfig struct {
	File  string `yaml:"file,omitempty"`
	Watch *bool  `yaml:"watch,omitempty"`
}

type JournalFileConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}
