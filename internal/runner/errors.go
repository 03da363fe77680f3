// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package runner

import "errors"

var (
	// ErrUnknownClass is returned when no engine exists for a class name.
	ErrUnknownClass = errors.New("unknown class")
	// ErrInvalidClass rejects class names that cannot be used as identifiers.
	ErrInvalidClass = errors.New("invalid class name")
	// ErrInvalidSchedule rejects malformed staggered start requests.
	ErrInvalidSchedule = errors.New("invalid staggered schedule")
)
