// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package engine

import (
	"fmt"
	"time"

	"github.com/ManuGH/startline/internal/signal"
)

// View is a read-only copy of the engine state for rendering.
type View struct {
	Class             string         `json:"class"`
	RunID             string         `json:"run_id,omitempty"`
	DefinitionID      string         `json:"sequence,omitempty"`
	Status            Status         `json:"status"`
	RemainingSeconds  int            `json:"remaining_s"`
	SinceStartSeconds int            `json:"since_start_s"`
	ActiveFlags       signal.FlagSet `json:"flags"`
	CurrentPhaseIndex int            `json:"phase_index"`
	CurrentPhase      string         `json:"phase,omitempty"`
	RecalledBoats     []string       `json:"recalled_boats,omitempty"`
	StartedAt         time.Time      `json:"started_at,omitempty"`
}

// Clock renders the countdown as m:ss.
func (v View) Clock() string {
	return FormatClock(v.RemainingSeconds)
}

// FormatClock renders whole seconds as m:ss, with a leading minus when negative.
func FormatClock(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%d:%02d", sign, seconds/60, seconds%60)
}

// FormatRemaining floors d to whole seconds before formatting, so 0:00 only
// shows once the full duration has elapsed.
func FormatRemaining(d time.Duration) string {
	return FormatClock(wholeSeconds(d))
}

// wholeSeconds truncates toward negative infinity.
func wholeSeconds(d time.Duration) int {
	s := d / time.Second
	if d < 0 && d%time.Second != 0 {
		s--
	}
	return int(s)
}
