// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TickLagSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "startline_tick_lag_seconds",
		Help:    "Delay between consecutive ticks beyond the configured interval",
		Buckets: []float64{0, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	LastTickTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "startline_last_tick_timestamp_seconds",
		Help: "Unix time of the most recent runner tick",
	})

	PendingStarts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "startline_pending_starts",
		Help: "Staggered class starts waiting for their due time",
	})

	SinkErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "startline_sink_errors_total",
		Help: "Signal deliveries a sink failed to accept",
	}, []string{"sink"})

	SinkQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "startline_sink_queue_depth",
		Help: "Signals waiting for sink dispatch",
	})
)
