package leverage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts completed runs by final status.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leverage_runs_total",
			Help: "Total number of settlement runs by final status",
		},
		[]string{"status"},
	)

	// StepErrorsTotal counts failures by pipeline step and error kind.
	StepErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leverage_step_errors_total",
			Help: "Total number of pipeline step failures by step and error kind",
		},
		[]string{"step", "kind"},
	)

	// RunDurationSeconds observes end-to-end run latency.
	RunDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leverage_run_duration_seconds",
			Help:    "End-to-end settlement run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
