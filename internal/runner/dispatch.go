// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package runner

import (
	"context"
	"errors"

	"github.com/ManuGH/startline/internal/engine"
	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/metrics"
	"github.com/ManuGH/startline/internal/resilience"
)

// enqueue is the engine listener. It never blocks the engine.
func (r *Runner) enqueue(events []engine.Event) {
	if len(events) == 0 {
		return
	}
	r.qmu.Lock()
	r.queue = append(r.queue, events...)
	metrics.SinkQueueDepth.Set(float64(len(r.queue)))
	r.qmu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *Runner) dispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
			r.Flush(drainCtx)
			cancel()
			return nil
		case <-r.notify:
			r.Flush(ctx)
		}
	}
}

// Flush delivers every queued signal to the sinks, in fire order.
func (r *Runner) Flush(ctx context.Context) {
	for {
		r.qmu.Lock()
		batch := r.queue
		r.queue = nil
		metrics.SinkQueueDepth.Set(0)
		r.qmu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, ev := range batch {
			for _, s := range r.sinks {
				err := s.sink.Signal(ctx, ev)
				if errors.Is(err, resilience.ErrCircuitOpen) {
					metrics.SinkSkippedTotal.WithLabelValues(s.name).Inc()
					continue
				}
				if err != nil {
					metrics.SinkErrorsTotal.WithLabelValues(s.name).Inc()
					r.logger.Error().
						Err(err).
						Str(xglog.FieldEvent, "sink.failed").
						Str("sink", s.name).
						Str(xglog.FieldClass, ev.Class).
						Str(xglog.FieldPhase, ev.PhaseName).
						Msg("sink rejected signal")
				}
			}
		}
	}
}
