// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package engine

import (
	"time"

	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/metrics"
)

// Tick reconciles the run with now and returns the phase events that became
// due, in ascending phase order. Every phase between the last fired one and
// the one now current fires, so a single late tick catches up on all skipped
// boundaries. Listeners receive the same slice, possibly empty, while a run
// exists.
//
// Idle returns nil. Override states return nil and change nothing.
func (e *Engine) Tick(now time.Time) []Event {
	e.deliverMu.Lock()
	e.mu.Lock()
	r := &e.run

	switch {
	case r.status == StatusIdle:
		e.mu.Unlock()
		e.deliverMu.Unlock()
		return nil
	case r.status.IsOverride():
		e.unlockAndDeliver(nil)
		return nil
	}

	elapsed := wholeSeconds(now.Sub(r.startedAt))
	if elapsed < r.elapsed {
		// The clock went backwards; never un-fire or re-fire a phase.
		elapsed = r.elapsed
	}
	r.elapsed = elapsed

	total := r.def.TotalDurationSeconds
	r.remaining = total - elapsed
	if r.remaining < -NegativeGuardSeconds {
		r.remaining = -NegativeGuardSeconds
	}

	if r.status == StatusFinished {
		metrics.RemainingSeconds.WithLabelValues(e.class).Set(0)
		e.unlockAndDeliver(nil)
		return nil
	}

	rel := elapsed - total
	target := r.current
	for i := r.current + 1; i < len(r.def.Phases); i++ {
		if r.def.Phases[i].OffsetSeconds > rel {
			break
		}
		target = i
	}

	var events []Event
	for i := r.current + 1; i <= target; i++ {
		if r.fired[i] {
			continue
		}
		p := r.def.Phases[i]
		e.flags = p.Apply(e.flags)
		r.fired[i] = true

		horns := 0
		if p.FiresHorn {
			horns = 1
		}
		events = append(events, Event{
			Class:         e.class,
			RunID:         r.id,
			Kind:          KindPhase,
			PhaseIndex:    i,
			PhaseName:     p.Name,
			OffsetSeconds: p.OffsetSeconds,
			HornCount:     horns,
			Status:        r.status,
			Flags:         e.flags,
			At:            r.startedAt.Add(time.Duration(total+p.OffsetSeconds) * time.Second),
		})
	}
	if target > r.current {
		r.current = target
	}

	if rel >= 0 && r.current == len(r.def.Phases)-1 {
		if to, ok := transitionFor(r.status, cmdStartReached); ok {
			e.transitioned(r.status, to)
			if n := len(events); n > 0 {
				events[n-1].Status = to
			}
			e.logger.Info().
				Str(xglog.FieldEvent, "sequence.finished").
				Str(xglog.FieldRunID, r.id).
				Msg("start signal given, racing")
		}
	}

	for i := range events {
		metrics.RecordSignal(e.class, string(KindPhase), events[i].HornCount)
		e.logger.Info().
			Str(xglog.FieldEvent, "signal.fired").
			Str(xglog.FieldRunID, r.id).
			Str(xglog.FieldPhase, events[i].PhaseName).
			Int(xglog.FieldPhaseIndex, events[i].PhaseIndex).
			Int(xglog.FieldOffset, events[i].OffsetSeconds).
			Int(xglog.FieldHorns, events[i].HornCount).
			Stringer(xglog.FieldFlags, events[i].Flags).
			Msg("phase signal")
	}
	metrics.PhasesPerTick.Observe(float64(len(events)))
	rem := r.remaining
	if rem < 0 {
		rem = 0
	}
	metrics.RemainingSeconds.WithLabelValues(e.class).Set(float64(rem))

	e.unlockAndDeliver(events)
	return events
}
