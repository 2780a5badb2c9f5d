// Package metrics holds the Prometheus collectors of the API.
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
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaops_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vaops_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	PirepsReviewed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaops_pireps_reviewed_total",
		Help: "PIREPs approved or rejected",
	}, []string{"status"})

	CareersAssigned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaops_careers_assigned_total",
		Help: "Career chains assigned, by source (pilot, admin, discord)",
	}, []string{"source"})

	SyntheticLegs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vaops_synthetic_legs_total",
		Help: "Closing legs generated because the catalog had no return route",
	})

	FleetMaintenance = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vaops_fleet_maintenance_total",
		Help: "Airframes sent to maintenance",
	})

	ExternalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaops_external_requests_total",
		Help: "Calls to upstream APIs by service and outcome",
	}, []string{"service", "outcome"})
)

// Middleware records request count and latency keyed by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
