// Package metrics exposes Prometheus collectors for the dataflow runtime.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts executed lifecycle transitions per codelet.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodo_transitions_total",
			Help: "Total number of executed lifecycle transitions",
		},
		[]string{"codelet", "transition"},
	)

	// TransitionsSkippedTotal counts transitions which reported Skipped.
	TransitionsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodo_transitions_skipped_total",
			Help: "Total number of skipped lifecycle transitions",
		},
		[]string{"codelet", "transition"},
	)

	// TransitionFailures counts transitions which returned an error.
	TransitionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodo_transition_failures_total",
			Help: "Total number of failed lifecycle transitions",
		},
		[]string{"codelet", "transition"},
	)

	// WorkerSpinsTotal counts schedule spins per worker.
	WorkerSpinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodo_worker_spins_total",
			Help: "Total number of schedule spins per worker",
		},
		[]string{"worker"},
	)

	// WorkersRunning tracks the number of live worker threads.
	WorkersRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodo_workers_running",
			Help: "Number of live worker threads",
		},
	)
)

// ObserveTransition records one executed or skipped transition.
func ObserveTransition(codelet, transition string, skipped bool) {
	if skipped {
		TransitionsSkippedTotal.WithLabelValues(codelet, transition).Inc()
		return
	}
	TransitionsTotal.WithLabelValues(codelet, transition).Inc()
}
