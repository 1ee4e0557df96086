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

	// Selection pipeline metrics. "outcome" is selected, fallback_relaxed,
	// fallback_emergency, fallback_adaptive or error.
	SelectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_selections_total",
			Help: "Total quest selection calls by outcome",
		},
		[]string{"outcome"},
	)

	SelectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quest_selection_duration_seconds",
			Help:    "Duration of quest selection pipeline stages",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"stage"},
	)

	FallbackCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_fallbacks_total",
			Help: "Fallback activations by level",
		},
		[]string{"level"},
	)

	FeedbackCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_feedback_total",
			Help: "Processed quest feedback submissions by outcome",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SelectionCounter)
	prometheus.MustRegister(SelectionDuration)
	prometheus.MustRegister(FallbackCounter)
	prometheus.MustRegister(FeedbackCounter)
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

// ObserveStage times one pipeline stage.
func ObserveStage(stage string, start time.Time) {
	SelectionDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
