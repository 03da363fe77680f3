// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package runner

import (
	"context"
	"time"

	"github.com/ManuGH/startline/internal/bus"
	"github.com/ManuGH/startline/internal/engine"
	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/resilience"
	"github.com/rs/zerolog"
)

// Sink consumes fired signals: horn controllers, journals, live feeds.
type Sink interface {
	Signal(ctx context.Context, ev engine.Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev engine.Event) error

func (f SinkFunc) Signal(ctx context.Context, ev engine.Event) error { return f(ctx, ev) }

// BusSink republishes signals on bus.TopicSignals.
type BusSink struct {
	Bus bus.Bus
}

func (s BusSink) Signal(ctx context.Context, ev engine.Event) error {
	return s.Bus.Publish(ctx, bus.TopicSignals, ev)
}

// HornSink logs every sound signal. It stands in for a hardware horn driver.
type HornSink struct {
	Logger zerolog.Logger
}

// NewHornSink returns a HornSink on the "horn" component logger.
func NewHornSink() HornSink {
	return HornSink{Logger: xglog.WithComponent("horn")}
}

func (s HornSink) Signal(_ context.Context, ev engine.Event) error {
	evt := s.Logger.Info()
	if !ev.FiresHorn() {
		evt = s.Logger.Debug()
	}
	evt.
		Str(xglog.FieldEvent, "signal.fired").
		Str(xglog.FieldClass, ev.Class).
		Str(xglog.FieldRunID, ev.RunID).
		Str(xglog.FieldPhase, ev.PhaseName).
		Str("clock", engine.FormatClock(ev.OffsetSeconds)).
		Int(xglog.FieldHorns, ev.HornCount).
		Stringer(xglog.FieldFlags, ev.Flags).
		Msg("signal")
	return nil
}

type breakerConfig struct {
	threshold int
	reset     time.Duration
}

// guardedSink skips its sink while the breaker is open.
type guardedSink struct {
	sink    Sink
	breaker *resilience.CircuitBreaker
}

func guard(name string, s Sink, cfg *breakerConfig, clk resilience.Clock) Sink {
	return guardedSink{
		sink:    s,
		breaker: resilience.NewCircuitBreaker("sink_"+name, cfg.threshold, cfg.reset, resilience.WithClock(clk)),
	}
}

func (g guardedSink) Signal(ctx context.Context, ev engine.Event) error {
	return g.breaker.Execute(func() error { return g.sink.Signal(ctx, ev) })
}
