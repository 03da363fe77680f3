// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sequence

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads the custom definitions of a Catalog whenever the sequences
// file changes. A file that fails validation leaves the catalog unchanged.
type Watcher struct {
	catalog  *Catalog
	path     string
	debounce time.Duration
	logger   zerolog.Logger

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for path feeding catalog.
func NewWatcher(catalog *Catalog, path string) *Watcher {
	return &Watcher{
		catalog:  catalog,
		path:     path,
		debounce: defaultDebounce,
		logger:   xglog.WithComponent("sequences"),
	}
}

// Reload loads the file once and swaps the custom set.
func (w *Watcher) Reload() error {
	defs, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error().Err(err).Str(xglog.FieldEvent, "sequences.reload_failed").Str(xglog.FieldPath, w.path).Msg("failed to load sequences file")
		return err
	}
	if err := w.catalog.ReplaceCustom(defs); err != nil {
		w.logger.Error().Err(err).Str(xglog.FieldEvent, "sequences.reload_rejected").Msg("sequences file rejected")
		return err
	}
	w.logger.Info().
		Str(xglog.FieldEvent, "sequences.reloaded").
		Str(xglog.FieldPath, w.path).
		Int("count", len(defs)).
		Msg("custom sequences loaded")
	return nil
}

// Start watches the directory holding the file, so editors that replace the
// file by rename are seen too. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch sequences dir: %w", err)
	}
	w.watcher = fw

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Wait blocks until the watch loop has exited.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	defer func() { _ = w.watcher.Close() }()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: reset on each event
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			_ = w.Reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Str(xglog.FieldEvent, "sequences.watcher_error").Msg("sequences watcher error")
		}
	}
}
