// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Repairs
	RepairTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repair_transitions_total",
			Help: "Repair transitions by action (open, close) and outcome",
		},
		[]string{"action", "outcome"},
	)

	// Listing cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cache_hits_total",
			Help: "Machine listing requests served from the cache",
		},
		[]string{"store"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cache_misses_total",
			Help: "Machine listing requests that went to the database",
		},
		[]string{"store"},
	)
)

// RecordRepair counts one repair transition. err == nil counts as "ok".
func RecordRepair(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	RepairTransitions.WithLabelValues(action, outcome).Inc()
}

// Middleware observes request latency labelled by route template, so path
// parameters do not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
