package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"surface", "method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"surface", "method", "route"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of currently active HTTP requests",
		},
	)

	dbConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Database connections currently in use",
		},
	)
)

// Metrics collects Prometheus request metrics labelled by route template
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		activeRequests.Inc()

		c.Next()

		activeRequests.Dec()
		route := c.FullPath()
		if route == "" {
			route = "unmatched" // 404 경로는 카디널리티 폭발 방지
		}
		status := strconv.Itoa(c.Writer.Status())
		surface := Surface(route)

		httpRequestsTotal.WithLabelValues(surface, c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(surface, c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Surface admin | realtime | public | system
func Surface(route string) string {
	switch {
	case strings.HasPrefix(route, "/api/v1/admin"):
		return "admin"
	case strings.HasPrefix(route, "/api/v1/realtime"):
		return "realtime"
	case strings.HasPrefix(route, "/api/"):
		return "public"
	default:
		return "system"
	}
}

// SetDBConnectionsInUse updates the DB connection gauge
func SetDBConnectionsInUse(count int) {
	dbConnectionsInUse.Set(float64(count))
}
