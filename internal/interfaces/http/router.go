package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patlytics/patscope/internal/domain/quality"
	"github.com/patlytics/patscope/internal/domain/run"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/prometheus"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RouterConfig aggregates the handler dependencies.  Runs is required;
// Health, Metrics and MetricsHandler are optional.
type RouterConfig struct {
	Runs       run.Repository
	Thresholds quality.Thresholds

	Health         HealthChecker
	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler

	Mode   string
	Logger logging.Logger
}

// NewRouter builds the gin route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Thresholds.IsZero() {
		cfg.Thresholds = quality.DefaultThresholds()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestMetrics(cfg.Metrics, cfg.Logger.Named("http")))

	h := &handler{runs: cfg.Runs, thresholds: cfg.Thresholds, health: cfg.Health}

	engine.GET("/healthz", h.healthz)
	if cfg.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := engine.Group("/v1")
	{
		v1.GET("/runs", h.listRuns)
		v1.GET("/runs/:id", h.getRun)
		v1.POST("/score", h.score)
	}
	return engine
}

// requestMetrics records per-route request counts and latency.  The route
// template keeps the path label cardinality bounded.
func requestMetrics(metrics *prometheus.AppMetrics, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		if metrics != nil {
			metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestSeconds.WithLabelValues(c.Request.Method, path).Observe(elapsed.Seconds())
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				logging.String("method", c.Request.Method),
				logging.String("path", path),
				logging.Int("status", status),
				logging.Duration("elapsed", elapsed),
			)
		}
	}
}
