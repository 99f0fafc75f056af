package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordAnalysis("AAPL", "BUY", 6.9)
	r.RecordAnalysis("MSFT", "BUY", 7.1)
	r.RecordError("data_unavailable")
	r.RecordCacheLookup("series", true)
	r.RecordCacheLookup("series", false)
	r.RecordCacheLookup("series", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.analyses.WithLabelValues("BUY")))
	assert.Equal(t, 7.1, testutil.ToFloat64(r.composite.WithLabelValues("MSFT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("data_unavailable")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("series", "hit")))
}
