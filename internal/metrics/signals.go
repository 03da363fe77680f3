// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignalsFiredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "startline_signals_fired_total",
		Help: "Signals fired by class and kind (phase|override)",
	}, []string{"class", "kind"})

	HornsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "startline_horns_total",
		Help: "Sound signals requested from the horn sink",
	}, []string{"class"})

	PhasesPerTick = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "startline_phases_per_tick",
		Help:    "Phases fired by a single tick; values above 1 mean ticks were missed",
		Buckets: []float64{0, 1, 2, 3, 4, 6},
	})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "startline_transitions_total",
		Help: "Run status transitions by class and target status",
	}, []string{"class", "to"})

	CommandRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "startline_command_rejected_total",
		Help: "Rejected operator commands by class, command and reason",
	}, []string{"class", "command", "reason"})

	RunStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "startline_run_status",
		Help: "Current run status per class (1 for the active status, 0 otherwise)",
	}, []string{"class", "status"})

	RemainingSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "startline_remaining_seconds",
		Help: "Countdown to the start per class",
	}, []string{"class"})
)

// RecordSignal counts one fired signal and its horns.
func RecordSignal(class, kind string, horns int) {
	SignalsFiredTotal.WithLabelValues(class, kind).Inc()
	if horns > 0 {
		HornsTotal.WithLabelValues(class).Add(float64(horns))
	}
}

// RecordTransition counts a status change and moves the status gauge.
func RecordTransition(class string, statuses []string, to string) {
	TransitionsTotal.WithLabelValues(class, to).Inc()
	for _, s := range statuses {
		v := 0.0
		if s == to {
			v = 1
		}
		RunStatus.WithLabelValues(class, s).Set(v)
	}
}

// RecordRejected counts a rejected command.
func RecordRejected(class, command, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	CommandRejectedTotal.WithLabelValues(class, command, reason).Inc()
}
