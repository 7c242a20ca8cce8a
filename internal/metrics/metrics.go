// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	// Total counters
	RequestsTotal      prometheus.Counter
	SyncRuns           prometheus.Counter
	SyncFailures       prometheus.Counter
	SnapshotsPublished prometheus.Counter

	// Gauges
	PoolsTracked *prometheus.GaugeVec
}

func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soroswap_analytics_http_requests",
			Help: "The total number of HTTP API requests served",
		}),
		SyncRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soroswap_analytics_sync_runs",
			Help: "The total number of discovery sync runs",
		}),
		SyncFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soroswap_analytics_sync_failures",
			Help: "The total number of failed discovery sync runs",
		}),
		SnapshotsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soroswap_analytics_snapshots_published",
			Help: "The total number of pool snapshots published",
		}),
		PoolsTracked: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "soroswap_analytics_pools_tracked",
			Help: "The number of liquidity pools currently tracked",
		}, []string{"network"}),
	}
}

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
