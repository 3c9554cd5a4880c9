package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yamdb/internal/dataset"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yamdb_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	loadRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_load_data_runs_total",
			Help: "Dataset load runs by outcome and failing stage",
		},
		[]string{"status", "stage"},
	)

	rowsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_load_data_rows_dropped_total",
			Help: "Rows removed while cleaning extracts",
		},
		[]string{"entity"},
	)

	rowsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "yamdb_load_data_rows_loaded",
			Help: "Rows inserted by the most recent run",
		},
		[]string{"entity"},
	)

	lastRunSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yamdb_load_data_last_run_duration_seconds",
			Help: "Wall time of the most recent run",
		},
	)
)

// ObserveRun records a finished dataset run.
func ObserveRun(res *dataset.Result) {
	status, stage := "success", ""
	if f := res.Failure(); f != nil {
		status, stage = "failure", string(f.Stage)
	}
	loadRunsTotal.WithLabelValues(status, stage).Inc()

	for entity, c := range res.Cleaned {
		rowsDroppedTotal.WithLabelValues(entity).Add(float64(c.Dropped()))
	}
	for entity, n := range res.Loaded {
		rowsLoaded.WithLabelValues(entity).Set(float64(n))
	}
	if !res.FinishedAt.IsZero() {
		lastRunSeconds.Set(res.FinishedAt.Sub(res.StartedAt).Seconds())
	}
}

// Middleware records request counts and latencies, skipping /metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/metrics") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
