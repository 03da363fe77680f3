// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/startline/internal/validate"
)

// maxClasses bounds the number of boards one daemon drives.
const maxClasses = 64

// Validate validates an AppConfig using the centralized validation package.
// It creates DataDir when missing.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("LogLevel", strings.ToLower(cfg.LogLevel), validate.LogLevels)
	v.Directory("DataDir", cfg.DataDir, false)

	v.ListenAddr("API.ListenAddr", cfg.API.ListenAddr)
	v.DurationRange("API.ShutdownTimeout", cfg.API.ShutdownTimeout, time.Second, 2*time.Minute)
	if cfg.API.RateLimitEnabled {
		v.Positive("API.RateLimitRPM", cfg.API.RateLimitRPM)
	}

	if cfg.Metrics.Enabled {
		v.ListenAddr("Metrics.ListenAddr", cfg.Metrics.ListenAddr)
		if cfg.Metrics.ListenAddr == cfg.API.ListenAddr {
			v.AddError("Metrics.ListenAddr", "must differ from API.ListenAddr", cfg.Metrics.ListenAddr)
		}
	}

	v.DurationRange("Engine.TickInterval", cfg.Engine.TickInterval, 10*time.Millisecond, 5*time.Second)
	v.DurationRange("Engine.StaggerGap", cfg.Engine.StaggerGap, 0, time.Hour)
	v.NotEmpty("Engine.DefaultSequence", cfg.Engine.DefaultSequence)
	v.Range("Engine.Classes", len(cfg.Engine.Classes), 0, maxClasses)
	v.Unique("Engine.Classes", cfg.Engine.Classes)
	for _, c := range cfg.Engine.Classes {
		v.Custom("Engine.Classes", c, classNameRule)
	}

	if cfg.Journal.Enabled {
		v.NotEmpty("Journal.Path", cfg.Journal.Path)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.Fraction("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate)
	}

	return v.Err()
}

func classNameRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" || strings.ContainsAny(s, "/ \t") {
		return fmt.Errorf("invalid class name %q", s)
	}
	return nil
}
