package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutriswap",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream API requests",
		},
		[]string{"upstream", "outcome"}, // ok, timeout, network, status, canceled
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nutriswap",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"upstream"},
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutriswap",
			Name:      "cache_lookups_total",
			Help:      "Product cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	TranslationFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nutriswap",
			Name:      "translation_fallbacks_total",
			Help:      "Category translations that fell back to untranslated tags",
		},
	)
)

var registerUpstream sync.Once

// RegisterUpstreamMetrics registers upstream collectors. Safe to call more than once.
func RegisterUpstreamMetrics() {
	registerUpstream.Do(func() {
		prometheus.MustRegister(UpstreamRequestsTotal)
		prometheus.MustRegister(UpstreamRequestDuration)
		prometheus.MustRegister(CacheLookupsTotal)
		prometheus.MustRegister(TranslationFallbacksTotal)
	})
}
