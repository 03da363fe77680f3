// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package engine

import (
	"fmt"
	"strings"
	"time"

	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/metrics"
	"github.com/ManuGH/startline/internal/signal"
)

type overrideSignal struct {
	cmd   command
	name  string
	flag  signal.FlagID
	horns int
}

var (
	postponeSignal      = overrideSignal{cmd: cmdPostpone, name: NamePostponement, flag: signal.FlagAP, horns: 1}
	abandonSignal       = overrideSignal{cmd: cmdAbandon, name: NameAbandonment, flag: signal.FlagN, horns: 1}
	generalRecallSignal = overrideSignal{cmd: cmdGeneralRecall, name: NameGeneralRecall, flag: signal.FlagFirstSub, horns: 2}
)

// Postpone stops the countdown and shows AP over the committee flag.
func (e *Engine) Postpone(now time.Time) ([]Event, error) {
	return e.override(postponeSignal, now)
}

// Abandon stops the run and shows N over the committee flag.
func (e *Engine) Abandon(now time.Time) ([]Event, error) {
	return e.override(abandonSignal, now)
}

// GeneralRecall recalls the whole fleet: First Substitute with two horns.
func (e *Engine) GeneralRecall(now time.Time) ([]Event, error) {
	return e.override(generalRecallSignal, now)
}

// override replaces the board with the override flag set, freezes the run and
// emits one event. Accepted while Running or Finished.
func (e *Engine) override(sig overrideSignal, now time.Time) ([]Event, error) {
	e.deliverMu.Lock()
	e.mu.Lock()
	r := &e.run

	from := r.status
	to, ok := transitionFor(from, sig.cmd)
	if !ok {
		e.mu.Unlock()
		e.deliverMu.Unlock()
		metrics.RecordRejected(e.class, string(sig.cmd), "not_running")
		return nil, fmt.Errorf("%s: %w: status=%s", sig.cmd, ErrNotRunning, from)
	}

	// Freeze the countdown at the command time.
	if elapsed := wholeSeconds(now.Sub(r.startedAt)); elapsed > r.elapsed {
		r.elapsed = elapsed
		r.remaining = r.def.TotalDurationSeconds - elapsed
		if r.remaining < -NegativeGuardSeconds {
			r.remaining = -NegativeGuardSeconds
		}
	}
	e.flags = signal.NewFlagSet(sig.flag, signal.FlagOrange)
	e.transitioned(from, to)

	ev := Event{
		Class:         e.class,
		RunID:         r.id,
		Kind:          KindOverride,
		PhaseIndex:    -1,
		PhaseName:     sig.name,
		OffsetSeconds: r.elapsed - r.def.TotalDurationSeconds,
		HornCount:     sig.horns,
		Status:        to,
		Flags:         e.flags,
		At:            now,
	}
	metrics.RecordSignal(e.class, string(KindOverride), sig.horns)
	e.logger.Warn().
		Str(xglog.FieldEvent, "signal.override").
		Str(xglog.FieldRunID, r.id).
		Str(xglog.FieldPhase, sig.name).
		Str(xglog.FieldOldState, string(from)).
		Int(xglog.FieldHorns, sig.horns).
		Int(xglog.FieldRemaining, r.remaining).
		Msg("override signal")

	events := []Event{ev}
	e.unlockAndDeliver(events)
	return events, nil
}

// ToggleFlag raises or lowers an auxiliary flag without touching the status
// or the phase position. Valid in every state except Idle.
func (e *Engine) ToggleFlag(flag signal.FlagID) error {
	if !flag.Valid() {
		metrics.RecordRejected(e.class, "toggle_flag", "unknown_flag")
		return fmt.Errorf("toggle flag: %w: %q", ErrUnknownFlag, flag)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.run.status.Active() {
		metrics.RecordRejected(e.class, "toggle_flag", "not_running")
		return fmt.Errorf("toggle flag: %w", ErrNotRunning)
	}
	e.flags = e.flags.Toggle(flag)
	e.logger.Info().
		Str(xglog.FieldEvent, "flag.toggled").
		Str(xglog.FieldRunID, e.run.id).
		Str(xglog.FieldFlag, string(flag)).
		Bool("raised", e.flags.Has(flag)).
		Msg("flag toggled")
	return nil
}

// RecallBoat records boat as over the line. The first recalled boat raises X.
func (e *Engine) RecallBoat(boat string) error {
	boat = strings.TrimSpace(boat)
	if boat == "" {
		return fmt.Errorf("recall: %w", ErrInvalidBoat)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s := e.run.status; s != StatusRunning && s != StatusFinished {
		metrics.RecordRejected(e.class, "recall", "not_running")
		return fmt.Errorf("recall: %w: status=%s", ErrNotRunning, s)
	}
	e.run.recalled[boat] = struct{}{}
	e.flags = e.flags.With(signal.FlagX)
	e.logger.Info().
		Str(xglog.FieldEvent, "recall.individual").
		Str(xglog.FieldRunID, e.run.id).
		Str(xglog.FieldBoatID, boat).
		Int("recalled", len(e.run.recalled)).
		Msg("boat recalled")
	return nil
}

// ReleaseBoat clears a recalled boat. Releasing the last one lowers X.
// Releasing a boat that is not recalled is a no-op.
func (e *Engine) ReleaseBoat(boat string) error {
	boat = strings.TrimSpace(boat)
	if boat == "" {
		return fmt.Errorf("release: %w", ErrInvalidBoat)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s := e.run.status; s != StatusRunning && s != StatusFinished {
		metrics.RecordRejected(e.class, "release", "not_running")
		return fmt.Errorf("release: %w: status=%s", ErrNotRunning, s)
	}
	if _, ok := e.run.recalled[boat]; !ok {
		return nil
	}
	delete(e.run.recalled, boat)
	if len(e.run.recalled) == 0 {
		e.flags = e.flags.Without(signal.FlagX)
	}
	e.logger.Info().
		Str(xglog.FieldEvent, "recall.released").
		Str(xglog.FieldRunID, e.run.id).
		Str(xglog.FieldBoatID, boat).
		Int("recalled", len(e.run.recalled)).
		Msg("boat released")
	return nil
}
