// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package engine

import (
	"time"

	"github.com/ManuGH/startline/internal/signal"
)

// EventKind distinguishes clock-driven phase signals from operator overrides.
type EventKind string

const (
	KindPhase    EventKind = "phase"
	KindOverride EventKind = "override"
)

// Override phase names carried by override events.
const (
	NamePostponement  = "postponement"
	NameAbandonment   = "abandonment"
	NameGeneralRecall = "general-recall"
)

// Event is one fired signal. Flags and Status describe the board right after
// the event was applied. General recall is a single event with HornCount 2.
type Event struct {
	Class         string         `json:"class"`
	RunID         string         `json:"run_id"`
	Kind          EventKind      `json:"kind"`
	PhaseIndex    int            `json:"phase_index"`
	PhaseName     string         `json:"phase"`
	OffsetSeconds int            `json:"offset_s"`
	HornCount     int            `json:"horns"`
	Status        Status         `json:"status"`
	Flags         signal.FlagSet `json:"flags"`
	At            time.Time      `json:"at"`
}

// FiresHorn reports whether the sink should sound at least one horn.
func (e Event) FiresHorn() bool { return e.HornCount > 0 }

// Listener receives the events of one tick or one override command, in order.
// It runs on the caller's goroutine and must not call Tick or the override
// commands; Snapshot, Status and Subscribe are safe.
type Listener func(events []Event)
