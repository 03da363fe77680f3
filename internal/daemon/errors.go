// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import "errors"

// Wiring errors, returned before any listener is bound.
var (
	ErrMissingLogger     = errors.New("daemon: logger is disabled")
	ErrMissingAPIHandler = errors.New("daemon: no API handler")
	ErrMissingManager    = errors.New("daemon: app has no server manager")
	ErrMissingRunner     = errors.New("daemon: app has no tick runner")
)

// ErrManagerNotStarted is returned by Shutdown before Start.
var ErrManagerNotStarted = errors.New("daemon: servers not started")
