package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerRequests *prometheus.CounterVec
	providerErrors   *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
	projectionPoints prometheus.Histogram
	cacheLookups     *prometheus.CounterVec
}

// New creates a Prometheus metrics recorder registered on reg
// (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		providerRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yieldprojector_provider_requests_total",
				Help: "Total number of upstream provider calls",
			},
			[]string{"provider", "op"},
		),
		providerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yieldprojector_provider_errors_total",
				Help: "Upstream provider calls that failed and were degraded to zero/empty",
			},
			[]string{"provider", "op"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "yieldprojector_last_price_usd",
				Help: "Last observed USD price for a token",
			},
			[]string{"token"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yieldprojector_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		projectionPoints: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "yieldprojector_projection_points",
				Help:    "Number of points in computed projections",
				Buckets: []float64{0, 1, 7, 30, 90, 180, 365, 1000},
			},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yieldprojector_cache_lookups_total",
				Help: "Snapshot cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordProviderRequest counts an upstream call.
func (r *Recorder) RecordProviderRequest(provider, op string) {
	r.providerRequests.WithLabelValues(provider, op).Inc()
}

// RecordProviderError counts a degraded upstream call.
func (r *Recorder) RecordProviderError(provider, op string) {
	r.providerErrors.WithLabelValues(provider, op).Inc()
}

// RecordLastPrice records the last price for a token.
func (r *Recorder) RecordLastPrice(token string, price float64) {
	r.lastPrice.WithLabelValues(token).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordProjection(points int) {
	r.projectionPoints.Observe(float64(points))
}

func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}
