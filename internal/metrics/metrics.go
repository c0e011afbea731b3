package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infinityfire_http_requests_total",
			Help: "HTTP requests served, by method, route template and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infinityfire_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	objectStoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infinityfire_objectstore_operations_total",
			Help: "Object store calls, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	objectStoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infinityfire_objectstore_operation_duration_seconds",
			Help:    "Object store call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	activityWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "infinityfire_activity_write_failures_total",
			Help: "Activity log records that could not be persisted.",
		},
	)

	registerOnce sync.Once
)

// InitMetrics registers the collectors with the default registry. Safe to call repeatedly.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			objectStoreOps,
			objectStoreDuration,
			activityWriteFailures,
		)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware records request counts and latency keyed by the matched route
// template, so path parameters do not blow up label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveObjectStore records one object store call.
func ObserveObjectStore(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	objectStoreOps.WithLabelValues(operation, outcome).Inc()
	objectStoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ActivityWriteFailed counts an activity record that was dropped.
func ActivityWriteFailed() {
	activityWriteFailures.Inc()
}
