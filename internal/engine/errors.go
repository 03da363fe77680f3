// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package engine

import (
	"errors"

	"github.com/ManuGH/startline/internal/sequence"
	"github.com/ManuGH/startline/internal/signal"
)

var (
	// ErrAlreadyRunning rejects Start while a run exists.
	ErrAlreadyRunning = errors.New("sequence already running")
	// ErrNotRunning rejects a command that needs a run in a different state.
	ErrNotRunning = errors.New("no running sequence")
	// ErrInvalidDefinition rejects Start with a definition that fails validation.
	ErrInvalidDefinition = sequence.ErrInvalidDefinition
	// ErrUnknownFlag rejects a flag outside the closed enumeration.
	ErrUnknownFlag = signal.ErrUnknownFlag
	// ErrInvalidBoat rejects an empty boat identifier.
	ErrInvalidBoat = errors.New("invalid boat id")
)
