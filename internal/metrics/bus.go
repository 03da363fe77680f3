// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusDroppedTotal counts signal messages a subscriber never received.
var BusDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "startline_bus_dropped_total",
	Help: "Signal bus messages not delivered to a subscriber, by topic and reason",
}, []string{"topic", "reason"})

// BusSubscribers tracks live subscriptions, mostly event-stream clients.
var BusSubscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "startline_bus_subscribers",
	Help: "Open signal bus subscriptions by topic",
}, []string{"topic"})

// IncBusDropReason records one undelivered message. Empty labels are kept
// out of the series as "unknown".
func IncBusDropReason(topic, reason string) {
	BusDroppedTotal.WithLabelValues(orUnknown(topic), orUnknown(reason)).Inc()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
