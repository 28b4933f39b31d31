package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	TasksCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "training_tasks_completed_total",
			Help: "Total number of task completions recorded",
		},
	)

	ModulesCertified = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "training_modules_certified_total",
			Help: "Total number of module certifications issued",
		},
	)

	ModulesLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "training_modules_loaded_total",
			Help: "Total number of executable module instantiations",
		},
	)

	MilestonesAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "training_milestones_awarded_total",
			Help: "Total number of milestone records inserted",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(TasksCompleted)
	prometheus.MustRegister(ModulesCertified)
	prometheus.MustRegister(ModulesLoaded)
	prometheus.MustRegister(MilestonesAwarded)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
