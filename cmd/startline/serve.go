// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/startline/internal/api"
	"github.com/ManuGH/startline/internal/bus"
	"github.com/ManuGH/startline/internal/clock"
	"github.com/ManuGH/startline/internal/config"
	"github.com/ManuGH/startline/internal/daemon"
	"github.com/ManuGH/startline/internal/health"
	"github.com/ManuGH/startline/internal/journal"
	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/runner"
	"github.com/ManuGH/startline/internal/sequence"
	"github.com/ManuGH/startline/internal/telemetry"
	"github.com/ManuGH/startline/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	sinkBreakerThreshold = 5
	sinkBreakerReset     = 30 * time.Second
)

func runServe(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("startline serve", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to config file (YAML)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	// Safe defaults until the config is loaded.
	xglog.Configure(xglog.Config{Level: "info", Service: "startline", Version: version.Version})
	logger := xglog.WithComponent("daemon")

	cfg, err := config.NewLoader(*configPath, version.Version).Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
		return 1
	}
	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version})
	logger = xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "daemon.failed").
			Msg("daemon failed")
		return 1
	}
	logger.Info().Msg("server exiting")
	return 0
}

// serve wires the daemon from cfg and blocks until ctx is cancelled.
func serve(ctx context.Context, cfg config.AppConfig) (err error) {
	logger := xglog.WithComponent("daemon")

	if err := health.CheckDataDir(cfg.DataDir); err != nil {
		return fmt.Errorf("startup check: %w", err)
	}

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.API.ListenAddr).
		Msg("starting startline")
	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)
	logger.Info().Msgf("→ Default sequence: %s (tick %s)", cfg.Engine.DefaultSequence, cfg.Engine.TickInterval)

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	catalog := sequence.NewCatalog()
	var watcher *sequence.Watcher
	if _, statErr := os.Stat(cfg.Sequences.File); statErr == nil {
		watcher = sequence.NewWatcher(catalog, cfg.Sequences.File)
		if err := watcher.Reload(); err != nil {
			return fmt.Errorf("load sequences: %w", err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("stat sequences file: %w", statErr)
	}
	if _, err := catalog.Lookup(cfg.Engine.DefaultSequence); err != nil {
		return fmt.Errorf("default sequence: %w", err)
	}
	if watcher == nil && cfg.Sequences.Watch {
		watcher = sequence.NewWatcher(catalog, cfg.Sequences.File)
	}

	signals := bus.NewMemoryBus()
	opts := []runner.Option{
		runner.WithInterval(cfg.Engine.TickInterval),
		runner.WithClasses(cfg.Engine.Classes...),
		runner.WithSinkBreaker(sinkBreakerThreshold, sinkBreakerReset),
		runner.WithSink("horn", runner.NewHornSink()),
		runner.WithSink("bus", runner.BusSink{Bus: signals}),
	}

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(ctx, cfg.Journal.Path, journal.DefaultConfig())
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		// Closed after the runner has flushed its last signals.
		defer func() {
			if cerr := store.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close journal: %w", cerr)
			}
		}()
		opts = append(opts, runner.WithSink("journal", store))
		logger.Info().Msgf("→ Journal: %s", cfg.Journal.Path)
	}
	r := runner.New(clock.NewReal(), opts...)

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewTickChecker(r.LastTick, r.Interval()))
	hm.RegisterChecker(health.NewFileChecker("sequences_file", cfg.Sequences.File))

	deps := api.Deps{
		Runner:  r,
		Catalog: catalog,
		Bus:     signals,
		Health:  hm,
	}
	if store != nil {
		hm.RegisterChecker(health.NewPingChecker("journal", store))
		deps.Journal = store
	}

	tracingService := ""
	if cfg.Telemetry.Enabled {
		tracingService = cfg.LogService
	}
	srv := api.New(api.Config{
		DefaultSequence:   cfg.Engine.DefaultSequence,
		DefaultStaggerGap: cfg.Engine.StaggerGap,
		RateLimitEnabled:  cfg.API.RateLimitEnabled,
		RateLimitRPM:      cfg.API.RateLimitRPM,
		TracingService:    tracingService,
		SequencesFile:     cfg.Sequences.File,
	}, deps)

	daemonDeps := daemon.Deps{
		Logger:     logger,
		APIHandler: srv.Handler(),
	}
	if cfg.Metrics.Enabled {
		daemonDeps.MetricsHandler = promhttp.Handler()
		daemonDeps.MetricsAddr = cfg.Metrics.ListenAddr
	}
	mgr, err := daemon.NewManager(daemon.ServerConfig{
		ListenAddr:        cfg.API.ListenAddr,
		ReadHeaderTimeout: cfg.API.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.API.ShutdownTimeout,
	}, daemonDeps)
	if err != nil {
		return fmt.Errorf("create daemon manager: %w", err)
	}

	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)

	var reloader daemon.Reloader
	if watcher != nil && cfg.Sequences.Watch {
		reloader = watcher
	}
	return daemon.NewApp(logger, mgr, r, reloader).Run(ctx)
}
