package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCountsProviderCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordProviderRequest("geckoterminal", "stats")
	r.RecordProviderRequest("geckoterminal", "stats")
	r.RecordProviderError("geckoterminal", "stats")
	r.RecordLastPrice("0xabc", 1.25)
	r.RecordCache(true)
	r.RecordCache(false)
	r.RecordCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.providerRequests.WithLabelValues("geckoterminal", "stats")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.providerErrors.WithLabelValues("geckoterminal", "stats")))
	assert.Equal(t, 1.25, testutil.ToFloat64(r.lastPrice.WithLabelValues("0xabc")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))

	n, err := testutil.GatherAndCount(reg, "yieldprojector_provider_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordersOnSeparateRegistriesDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
