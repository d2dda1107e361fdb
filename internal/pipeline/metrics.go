// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	phaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "citation_engine_phase_duration_seconds",
			Help:    "Time spent in each pipeline phase",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"phase"},
	)

	runs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citation_engine_runs_total",
			Help: "Pipeline runs by mode and result",
		},
		[]string{"mode", "result"},
	)
)

// timePhase starts a timer for phase; calling the result records it.
func timePhase(phase string) func() {
	start := time.Now()
	return func() {
		phaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	}
}
