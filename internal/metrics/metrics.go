// Package metrics exposes Prometheus instrumentation for widget
// fetches, the client cache, and the background refresher.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_widget_fetch_total",
			Help: "Total number of provider fetches by widget type and outcome",
		},
		[]string{"type", "outcome"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulseboard_widget_fetch_duration_seconds",
			Help:    "Provider fetch duration in seconds by widget type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_cache_hits_total",
			Help: "Cache hits by freshness (fresh or stale)",
		},
		[]string{"freshness"},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_cache_misses_total",
			Help: "Cache misses that forced a blocking fetch",
		},
	)

	RefreshTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_refresh_ticks_total",
			Help: "Background refresh timer fires",
		},
	)

	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)
)

func init() {
	prometheus.MustRegister(FetchTotal)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(RefreshTicks)
	prometheus.MustRegister(APIRequestsTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
