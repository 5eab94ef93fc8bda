package simulator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// SimulationsTotal counts completed simulations by outcome.
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leverage_simulations_total",
			Help: "Total number of completed transaction simulations",
		},
		[]string{"status"},
	)
)
