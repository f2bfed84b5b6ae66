package main

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nutritionist",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	aiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutritionist",
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "OpenAI calls by feature and outcome.",
		},
		[]string{"feature", "outcome"},
	)

	limitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutritionist",
			Subsystem: "usage",
			Name:      "limit_exceeded_total",
			Help:      "Requests rejected because the daily quota was spent.",
		},
		[]string{"kind"},
	)

	tipsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutritionist",
			Subsystem: "tips",
			Name:      "served_total",
			Help:      "Daily tips returned, by category.",
		},
		[]string{"category"},
	)

	tipsDismissed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nutritionist",
		Subsystem: "tips",
		Name:      "dismissed_total",
		Help:      "Daily tips dismissed by users.",
	})

	calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutritionist",
			Subsystem: "metabolism",
			Name:      "calculations_total",
			Help:      "Calorie target calculations, by goal.",
		},
		[]string{"goal"},
	)
)

// metricsMiddleware records request latency. Unmatched routes share one label.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
