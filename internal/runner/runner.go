// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package runner drives one signal engine per class from a clock, executes
// staggered starts and fans fired signals out to sinks.
package runner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/startline/internal/clock"
	"github.com/ManuGH/startline/internal/engine"
	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/metrics"
	"github.com/ManuGH/startline/internal/sequence"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultInterval is the tick period when none is configured.
	DefaultInterval = 250 * time.Millisecond

	maxClassLen  = 64
	drainTimeout = 2 * time.Second
)

// Scheduled describes a pending staggered start.
type Scheduled struct {
	Class    string    `json:"class"`
	Sequence string    `json:"sequence"`
	Due      time.Time `json:"due"`
}

type pendingStart struct {
	class string
	def   sequence.Definition
	due   time.Time
}

type namedSink struct {
	name string
	sink Sink
}

// Runner owns the class engines.
type Runner struct {
	clock      clock.Clock
	interval   time.Duration
	logger     zerolog.Logger
	engineOpts []engine.Option
	sinks      []namedSink
	initial    []string
	breaker    *breakerConfig

	mu       sync.Mutex
	engines  map[string]*engine.Engine
	pending  []pendingStart
	lastTick time.Time

	qmu    sync.Mutex
	queue  []engine.Event
	notify chan struct{}

	lateLog rate.Sometimes
}

// Option configures a Runner.
type Option func(*Runner)

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithSink adds a named sink. Sinks receive signals in registration order.
func WithSink(name string, s Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, namedSink{name: name, sink: s}) }
}

// WithSinkBreaker guards every sink with a circuit breaker: after threshold
// consecutive failures the sink is skipped until reset has passed.
func WithSinkBreaker(threshold int, reset time.Duration) Option {
	return func(r *Runner) { r.breaker = &breakerConfig{threshold: threshold, reset: reset} }
}

// WithEngineOptions passes options to every engine the runner creates.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(r *Runner) { r.engineOpts = append(r.engineOpts, opts...) }
}

// WithClasses pre-creates idle engines for the given classes.
func WithClasses(classes ...string) Option {
	return func(r *Runner) { r.initial = append(r.initial, classes...) }
}

// New creates a runner driven by clk.
func New(clk clock.Clock, opts ...Option) *Runner {
	r := &Runner{
		clock:    clk,
		interval: DefaultInterval,
		logger:   xglog.WithComponent("runner"),
		engines:  make(map[string]*engine.Engine),
		notify:   make(chan struct{}, 1),
		lateLog:  rate.Sometimes{Interval: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker != nil {
		for i, s := range r.sinks {
			r.sinks[i].sink = guard(s.name, s.sink, r.breaker, r.clock)
		}
	}
	for _, c := range r.initial {
		if _, err := r.Engine(c); err != nil {
			r.logger.Warn().Err(err).Str(xglog.FieldClass, c).Msg("skipping configured class")
		}
	}
	return r
}

// Interval returns the tick period.
func (r *Runner) Interval() time.Duration { return r.interval }

// Now returns the runner clock's current time.
func (r *Runner) Now() time.Time { return r.clock.Now() }

func validClass(class string) error {
	if class == "" || len(class) > maxClassLen || strings.ContainsAny(class, "/ \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidClass, class)
	}
	return nil
}

// Engine returns the engine for class, creating an idle one on first use.
func (r *Runner) Engine(class string) (*engine.Engine, error) {
	if err := validClass(class); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engineLocked(class), nil
}

func (r *Runner) engineLocked(class string) *engine.Engine {
	if e, ok := r.engines[class]; ok {
		return e
	}
	e := engine.New(class, r.engineOpts...)
	e.Subscribe(r.enqueue)
	r.engines[class] = e
	r.logger.Debug().Str(xglog.FieldClass, class).Msg("class engine created")
	return e
}

// Lookup returns an existing engine.
func (r *Runner) Lookup(class string) (*engine.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.engines[class]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return e, nil
}

// Classes returns the known class names in lexical order.
func (r *Runner) Classes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.engines))
	for c := range r.engines {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (r *Runner) sortedEngines() []*engine.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.engines))
	for c := range r.engines {
		names = append(names, c)
	}
	sort.Strings(names)
	out := make([]*engine.Engine, 0, len(names))
	for _, c := range names {
		out = append(out, r.engines[c])
	}
	return out
}

// Snapshots returns the view of every class, ordered by class name.
func (r *Runner) Snapshots() []engine.View {
	engines := r.sortedEngines()
	out := make([]engine.View, 0, len(engines))
	for _, e := range engines {
		out = append(out, e.Snapshot())
	}
	return out
}

// Start begins def on class at the current clock time.
func (r *Runner) Start(class string, def sequence.Definition) error {
	if err := validClass(class); err != nil {
		return err
	}
	r.mu.Lock()
	if r.hasPendingLocked(class) {
		r.mu.Unlock()
		return fmt.Errorf("%w: class %q has a pending staggered start", engine.ErrAlreadyRunning, class)
	}
	e := r.engineLocked(class)
	r.mu.Unlock()

	return e.Start(def, r.clock.Now())
}

// StartStaggered schedules classes[k] to start def at now + k*gap. The first
// class starts immediately; the rest are started by the tick loop with their
// due instant as the anchor, so late ticks do not shift a class's start.
func (r *Runner) StartStaggered(classes []string, def sequence.Definition, gap time.Duration) ([]Scheduled, error) {
	if err := sequence.Validate(def); err != nil {
		return nil, fmt.Errorf("staggered start: %w", err)
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: no classes", ErrInvalidSchedule)
	}
	if gap < 0 {
		return nil, fmt.Errorf("%w: negative gap %s", ErrInvalidSchedule, gap)
	}
	seen := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		if err := validClass(c); err != nil {
			return nil, err
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: duplicate class %q", ErrInvalidSchedule, c)
		}
		seen[c] = struct{}{}
	}

	now := r.clock.Now()
	r.mu.Lock()
	for _, c := range classes {
		if r.hasPendingLocked(c) {
			r.mu.Unlock()
			return nil, fmt.Errorf("%w: class %q has a pending staggered start", engine.ErrAlreadyRunning, c)
		}
		if e, ok := r.engines[c]; ok && e.Status() != engine.StatusIdle {
			r.mu.Unlock()
			return nil, fmt.Errorf("%w: class %q status=%s", engine.ErrAlreadyRunning, c, e.Status())
		}
	}
	schedule := make([]Scheduled, 0, len(classes))
	for k, c := range classes {
		due := now.Add(time.Duration(k) * gap)
		r.engineLocked(c)
		r.pending = append(r.pending, pendingStart{class: c, def: def.Clone(), due: due})
		schedule = append(schedule, Scheduled{Class: c, Sequence: def.ID, Due: due})
	}
	sort.SliceStable(r.pending, func(i, j int) bool { return r.pending[i].due.Before(r.pending[j].due) })
	metrics.PendingStarts.Set(float64(len(r.pending)))
	r.mu.Unlock()

	r.logger.Info().
		Str(xglog.FieldEvent, "staggered.scheduled").
		Str(xglog.FieldSequence, def.ID).
		Strs("classes", classes).
		Dur("gap", gap).
		Msg("staggered start scheduled")

	r.startDue(now)
	return schedule, nil
}

// Pending returns the staggered starts not yet executed, earliest first.
func (r *Runner) Pending() []Scheduled {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Scheduled, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, Scheduled{Class: p.class, Sequence: p.def.ID, Due: p.due})
	}
	return out
}

func (r *Runner) hasPendingLocked(class string) bool {
	for _, p := range r.pending {
		if p.class == class {
			return true
		}
	}
	return false
}

// Stop cancels any pending start for class and stops its engine.
func (r *Runner) Stop(class string) error {
	r.mu.Lock()
	kept := r.pending[:0]
	for _, p := range r.pending {
		if p.class != class {
			kept = append(kept, p)
		}
	}
	r.pending = kept
	metrics.PendingStarts.Set(float64(len(r.pending)))
	e, ok := r.engines[class]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	e.Stop()
	return nil
}

// startDue starts every pending class whose due time is at or before now.
func (r *Runner) startDue(now time.Time) {
	r.mu.Lock()
	var due []pendingStart
	i := 0
	for ; i < len(r.pending) && !r.pending[i].due.After(now); i++ {
		due = append(due, r.pending[i])
	}
	r.pending = append(r.pending[:0], r.pending[i:]...)
	metrics.PendingStarts.Set(float64(len(r.pending)))
	engines := make([]*engine.Engine, len(due))
	for k, p := range due {
		engines[k] = r.engineLocked(p.class)
	}
	r.mu.Unlock()

	for k, p := range due {
		if err := engines[k].Start(p.def, p.due); err != nil {
			r.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "staggered.start_failed").
				Str(xglog.FieldClass, p.class).
				Msg("staggered start could not begin")
		}
	}
}

// Tick executes due staggered starts and advances every engine to now.
func (r *Runner) Tick(now time.Time) {
	r.mu.Lock()
	prev := r.lastTick
	r.lastTick = now
	r.mu.Unlock()

	if !prev.IsZero() {
		lag := now.Sub(prev) - r.interval
		if lag < 0 {
			lag = 0
		}
		metrics.TickLagSeconds.Observe(lag.Seconds())
		if lag > r.interval {
			r.lateLog.Do(func() {
				r.logger.Warn().
					Str(xglog.FieldEvent, "tick.late").
					Dur("lag", lag).
					Dur("interval", r.interval).
					Msg("tick arrived late; due signals are fired in catch-up")
			})
		}
	}
	metrics.LastTickTimestamp.Set(float64(now.UnixNano()) / 1e9)

	r.startDue(now)
	for _, e := range r.sortedEngines() {
		e.Tick(now)
	}
}

// LastTick returns the time passed to the most recent Tick.
func (r *Runner) LastTick() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastTick
}

// Run ticks the engines until ctx is cancelled and dispatches their signals
// to the sinks. Signals still queued at shutdown are flushed.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().
		Str(xglog.FieldEvent, "runner.started").
		Dur("interval", r.interval).
		Int("sinks", len(r.sinks)).
		Msg("runner started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.dispatch(gctx) })
	g.Go(func() error {
		r.Tick(r.clock.Now())
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C():
				r.Tick(now)
			}
		}
	})
	err := g.Wait()
	r.logger.Info().Str(xglog.FieldEvent, "runner.stopped").Msg("runner stopped")
	return err
}
