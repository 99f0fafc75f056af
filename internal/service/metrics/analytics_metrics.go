package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "factorimpact",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of analysis endpoints",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "factorimpact",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by analysis endpoint and error code",
		},
		[]string{"endpoint", "code"},
	)

	BatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "factorimpact",
			Subsystem: "api",
			Name:      "batch_tickers",
			Help:      "Number of tickers per batch request",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		},
	)
)

// Register adds the endpoint collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors, BatchSize)
	})
}
