// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/rs/zerolog"
)

// Ticker drives the signal engines until ctx is cancelled.
type Ticker interface {
	Run(ctx context.Context) error
}

// Reloader watches an on-disk catalog and reloads it on demand.
type Reloader interface {
	Start(ctx context.Context) error
	Reload() error
	Wait()
}

// App owns the long-lived runtime (tick loop, sequence watcher, reload
// signal) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	ticker       Ticker
	reloader     Reloader
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. reloader may be nil.
func NewApp(logger zerolog.Logger, manager Manager, ticker Ticker, reloader Reloader) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		ticker:       ticker,
		reloader:     reloader,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned subsystems and blocks until ctx is cancelled or one
// of them fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}
	if a.ticker == nil {
		return ErrMissingRunner
	}

	g, ctx := errgroup.WithContext(ctx)

	// Watcher is best-effort: a missing sequences dir must not block startup.
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "sequences.watcher_start_failed").Msg("failed to start sequence watcher")
		} else {
			g.Go(func() error {
				a.reloader.Wait()
				return nil
			})
		}
	}

	if a.reloader != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(xglog.FieldEvent, "sequences.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading sequences")
					if err := a.reloader.Reload(); err != nil {
						a.logger.Warn().
							Err(err).
							Str(xglog.FieldEvent, "sequences.reload_failed").
							Msg("sequence reload failed")
					}
				}
			}
		})
	}

	g.Go(func() error {
		return a.ticker.Run(ctx)
	})

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}
