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
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_http_requests_total",
			Help: "HTTP requests handled, by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vault_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// FileOperations counts metadata mutations by operation (create, delete).
	FileOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_file_operations_total",
			Help: "File record mutations by operation.",
		},
		[]string{"operation"},
	)

	// SharesIssued counts share links minted.
	SharesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_shares_issued_total",
			Help: "Share links issued.",
		},
	)

	// ShareResolutions counts share-link resolutions by outcome.
	ShareResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_share_resolutions_total",
			Help: "Share-link resolutions by outcome (ok, not_found, expired, invalid, error).",
		},
		[]string{"outcome"},
	)

	// Summaries counts summarization requests by outcome.
	Summaries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_summaries_total",
			Help: "Summarization requests by outcome.",
		},
		[]string{"outcome"},
	)

	initOnce sync.Once
)

// InitMetrics registers all collectors with the default registry. Safe to call
// more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			FileOperations,
			SharesIssued,
			ShareResolutions,
			Summaries,
		)
	})
}

// Middleware records request counts and latency keyed by the route template,
// so path parameters such as tokens never become label values.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
