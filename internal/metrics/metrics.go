// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "streamreel"

// Upstream (Helix) metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream page requests",
		},
		[]string{"status"}, // "success" / "http_error" / "transport_error" / "malformed" / "rejected"
	)

	UpstreamRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream page request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
	)

	UpstreamRateLimitRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "upstream_ratelimit_remaining",
			Help:      "Last Ratelimit-Remaining value reported by the upstream",
		},
	)

	PagesPerCollect = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "collect_pages",
			Help:      "Upstream pages fetched per collect run",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Response cache metrics.
var CacheOperationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_operations_total",
		Help:      "Response cache operations by outcome",
	},
	[]string{"op", "result"}, // op: get/set; result: hit/miss/ok/error
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Must be called from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			UpstreamRequestsTotal,
			UpstreamRequestDuration,
			UpstreamRateLimitRemaining,
			PagesPerCollect,
			CircuitBreakerState,
			CacheOperationsTotal,
		)
	})
}
