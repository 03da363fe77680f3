// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/ManuGH/startline/internal/config"
	"github.com/ManuGH/startline/internal/version"
	"gopkg.in/yaml.v3"
)

func runConfigCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stderr)
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:], stdout, stderr)
	case "dump":
		return runConfigDump(args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  startline config validate [--file|-f config.yaml]")
	_, _ = fmt.Fprintln(w, "  startline config dump [--file|-f config.yaml] [--format=yaml|json]")
}

func runConfigValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("startline config validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --file is required")
		return 2
	}

	if _, err := config.NewLoader(file, version.Version).Load(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", file, err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "%s is valid\n", file)
	return 0
}

func runConfigDump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("startline config dump", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var file, format string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.NewLoader(file, version.Version).Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	effective := toFileConfig(cfg)

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(effective); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		_ = enc.Close()
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(effective); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	default:
		_, _ = fmt.Fprintf(stderr, "Error: unsupported format %q\n", format)
		return 2
	}
	return 0
}

// toFileConfig renders the effective configuration in the on-disk shape, so
// a dump can be fed back as a config file.
func toFileConfig(cfg config.AppConfig) config.FileConfig {
	rateLimit := cfg.API.RateLimitEnabled
	metricsEnabled := cfg.Metrics.Enabled
	watch := cfg.Sequences.Watch
	journalEnabled := cfg.Journal.Enabled
	telemetryEnabled := cfg.Telemetry.Enabled
	sampling := cfg.Telemetry.SamplingRate

	return config.FileConfig{
		DataDir:    cfg.DataDir,
		LogLevel:   cfg.LogLevel,
		LogService: cfg.LogService,
		API: config.APIFileConfig{
			Listen:          cfg.API.ListenAddr,
			ShutdownTimeout: cfg.API.ShutdownTimeout.String(),
			RateLimit: config.RateLimitFileConfig{
				Enabled:           &rateLimit,
				RequestsPerMinute: cfg.API.RateLimitRPM,
			},
		},
		Metrics: config.MetricsFileConfig{
			Enabled: &metricsEnabled,
			Listen:  cfg.Metrics.ListenAddr,
		},
		Engine: config.EngineFileConfig{
			TickInterval:    cfg.Engine.TickInterval.String(),
			DefaultSequence: cfg.Engine.DefaultSequence,
			Classes:         cfg.Engine.Classes,
			StaggerGap:      cfg.Engine.StaggerGap.String(),
		},
		Sequences: config.SequencesFileConfig{
			File:  cfg.Sequences.File,
			Watch: &watch,
		},
		Journal: config.JournalFileConfig{
			Enabled: &journalEnabled,
			Path:    cfg.Journal.Path,
		},
		Telemetry: config.TelemetryFileConfig{
			Enabled:      &telemetryEnabled,
			Exporter:     cfg.Telemetry.Exporter,
			Endpoint:     cfg.Telemetry.Endpoint,
			SamplingRate: &sampling,
		},
	}
}
