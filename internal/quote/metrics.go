package quote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// QuotesFetchedTotal counts successfully normalized quotes.
	QuotesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leverage_quotes_fetched_total",
		Help: "Total number of swap quotes fetched from the aggregator",
	})
)
