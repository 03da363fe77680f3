// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package engine implements the start-sequence signal engine: a timed state
// machine that fires each phase of a sequence exactly once, keeps the flag
// board consistent, and lets operator overrides interrupt the countdown.
//
// The engine does no scheduling of its own. A single driver calls Tick with
// the current time; ticks may arrive late or be batched, and every phase that
// became due in between fires on the next call, in phase order.
package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/metrics"
	"github.com/ManuGH/startline/internal/sequence"
	"github.com/ManuGH/startline/internal/signal"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NegativeGuardSeconds bounds how far below zero the countdown may show.
const NegativeGuardSeconds = 2

var allStatuses = []string{
	string(StatusIdle), string(StatusRunning), string(StatusPostponed),
	string(StatusAbandoned), string(StatusGeneralRecall), string(StatusFinished),
}

// run is the live state of one sequence. Only the engine touches it.
type run struct {
	id        string
	def       sequence.Definition
	status    Status
	startedAt time.Time
	elapsed   int // whole seconds since startedAt, never decreasing
	remaining int
	current   int // highest fired phase index, -1 before the first
	fired     []bool
	recalled  map[string]struct{}
}

// Engine owns a single sequence run. All methods are safe for concurrent use;
// state changes are serialised by one mutex and listeners are notified in
// commit order.
type Engine struct {
	class    string
	logger   zerolog.Logger
	newRunID func() string

	mu    sync.Mutex
	run   run
	flags signal.FlagSet

	// deliverMu is always taken before mu and held until delivery ends, so
	// deliveries keep commit order.
	deliverMu    sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRunIDs overrides run ID generation, mainly for deterministic tests.
func WithRunIDs(gen func() string) Option {
	return func(e *Engine) { e.newRunID = gen }
}

// New creates an idle engine for the named class (fleet).
func New(class string, opts ...Option) *Engine {
	logger := xglog.Derive(func(c *zerolog.Context) {
		*c = c.Str(xglog.FieldComponent, "engine").Str(xglog.FieldClass, class)
	})
	e := &Engine{
		class:     class,
		logger:    logger,
		newRunID:  uuid.NewString,
		run:       run{status: StatusIdle, current: -1},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	metrics.RecordTransition(class, allStatuses, string(StatusIdle))
	return e
}

// Class returns the class name the engine was created for.
func (e *Engine) Class() string { return e.class }

// Subscribe registers l and returns a function that removes it.
func (e *Engine) Subscribe(l Listener) (cancel func()) {
	e.mu.Lock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = l
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// unlockAndDeliver must be called with deliverMu and mu held, in that order.
// It releases mu, hands events to the listeners and then releases deliverMu,
// so a later commit cannot overtake this delivery.
func (e *Engine) unlockAndDeliver(events []Event) {
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, e.listeners[id])
	}

	e.mu.Unlock()
	defer e.deliverMu.Unlock()
	for _, l := range ls {
		l(events)
	}
}

// Start begins a new run of def anchored at now: the start (T0) is at
// now + def.TotalDurationSeconds. No phase fires here; the first Tick fires
// every phase already due.
func (e *Engine) Start(def sequence.Definition, now time.Time) error {
	if err := sequence.Validate(def); err != nil {
		metrics.RecordRejected(e.class, string(cmdStart), "invalid_definition")
		return fmt.Errorf("start: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.run.status
	to, ok := transitionFor(from, cmdStart)
	if !ok {
		metrics.RecordRejected(e.class, string(cmdStart), "already_running")
		return fmt.Errorf("%w: status=%s", ErrAlreadyRunning, from)
	}

	def = def.Clone()
	e.run = run{
		id:        e.newRunID(),
		def:       def,
		status:    to,
		startedAt: now,
		remaining: def.TotalDurationSeconds,
		current:   -1,
		fired:     make([]bool, len(def.Phases)),
		recalled:  make(map[string]struct{}),
	}
	e.flags = e.flags.With(signal.FlagOrange)
	e.transitioned(from, to)

	e.logger.Info().
		Str(xglog.FieldEvent, "sequence.started").
		Str(xglog.FieldRunID, e.run.id).
		Str(xglog.FieldSequence, def.ID).
		Int(xglog.FieldRemaining, def.TotalDurationSeconds).
		Time("start_at", now.Add(time.Duration(def.TotalDurationSeconds)*time.Second)).
		Msg("start sequence running")
	metrics.RemainingSeconds.WithLabelValues(e.class).Set(float64(def.TotalDurationSeconds))
	return nil
}

// Stop ends any run and returns to Idle. Every flag except the committee
// (orange) flag comes down.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.run.status
	to, _ := transitionFor(from, cmdStop)
	runID := e.run.id
	e.run = run{status: to, current: -1}
	e.flags = e.flags.Intersect(signal.NewFlagSet(signal.FlagOrange))
	if from != to {
		e.transitioned(from, to)
		e.logger.Info().
			Str(xglog.FieldEvent, "sequence.stopped").
			Str(xglog.FieldRunID, runID).
			Str(xglog.FieldOldState, string(from)).
			Msg("start sequence stopped")
	}
	metrics.RemainingSeconds.WithLabelValues(e.class).Set(0)
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// Status is a shorthand for Snapshot().Status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run.status
}

func (e *Engine) viewLocked() View {
	r := &e.run
	v := View{
		Class:             e.class,
		RunID:             r.id,
		DefinitionID:      r.def.ID,
		Status:            r.status,
		RemainingSeconds:  r.remaining,
		ActiveFlags:       e.flags,
		CurrentPhaseIndex: r.current,
		StartedAt:         r.startedAt,
	}
	if r.status.Active() {
		if since := r.elapsed - r.def.TotalDurationSeconds; since > 0 {
			v.SinceStartSeconds = since
		}
	}
	if r.current >= 0 && r.current < len(r.def.Phases) {
		v.CurrentPhase = r.def.Phases[r.current].Name
	}
	if len(r.recalled) > 0 {
		v.RecalledBoats = make([]string, 0, len(r.recalled))
		for b := range r.recalled {
			v.RecalledBoats = append(v.RecalledBoats, b)
		}
		sort.Strings(v.RecalledBoats)
	}
	return v
}

func (e *Engine) transitioned(from, to Status) {
	e.run.status = to
	metrics.RecordTransition(e.class, allStatuses, string(to))
	e.logger.Debug().
		Str(xglog.FieldOldState, string(from)).
		Str(xglog.FieldNewState, string(to)).
		Msg("status transition")
}
