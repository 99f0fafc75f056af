package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses     *prometheus.CounterVec
	composite    *prometheus.GaugeVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorimpact_analyses_total",
				Help: "Completed analyses by resulting signal",
			},
			[]string{"signal"},
		),
		composite: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "factorimpact_composite_score",
				Help: "Last composite score computed for a ticker",
			},
			[]string{"ticker"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorimpact_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"kind"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "factorimpact_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factorimpact_cache_lookups_total",
				Help: "Cache lookups by kind and outcome",
			},
			[]string{"kind", "result"},
		),
	}
}

// RecordAnalysis records a finished analysis.
func (r *Recorder) RecordAnalysis(ticker, signal string, composite float64) {
	r.analyses.WithLabelValues(signal).Inc()
	r.composite.WithLabelValues(ticker).Set(composite)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(kind, result).Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordAnalysis(string, string, float64) {}
func (Nop) RecordError(string)                     {}
func (Nop) RecordLatency(string, float64)          {}
func (Nop) RecordCacheLookup(string, bool)         {}
