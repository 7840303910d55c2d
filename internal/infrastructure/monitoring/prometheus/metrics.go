package prometheus

import "time"

// AppMetrics holds every metric the pipeline and API expose.
type AppMetrics struct {
	// Pipeline
	PipelineRunsTotal    CounterVec // status
	PipelineStageSeconds HistogramVec // stage
	DatasetApplications  GaugeVec // combine mode
	QualityScore         GaugeVec // combine mode

	// Database
	DBQuerySeconds HistogramVec // query

	// Cache
	CacheHitsTotal   CounterVec // key kind
	CacheMissesTotal CounterVec // key kind

	// Exports
	ExportArtifactsTotal CounterVec // format

	// HTTP API
	HTTPRequestsTotal  CounterVec   // method, path, status
	HTTPRequestSeconds HistogramVec // method, path
}

var (
	stageDurationBuckets = []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300, 600}
	dbDurationBuckets    = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}
	httpDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
)

// NewAppMetrics registers the full metric set on the given collector.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	return &AppMetrics{
		PipelineRunsTotal: c.RegisterCounter("pipeline_runs_total",
			"Completed pipeline runs by terminal status", "status"),
		PipelineStageSeconds: c.RegisterHistogram("pipeline_stage_duration_seconds",
			"Duration of each pipeline stage", stageDurationBuckets, "stage"),
		DatasetApplications: c.RegisterGauge("dataset_applications",
			"Applications in the most recent dataset", "combine"),
		QualityScore: c.RegisterGauge("quality_score",
			"Quality score of the most recent run", "combine"),

		DBQuerySeconds: c.RegisterHistogram("db_query_duration_seconds",
			"Duration of source database queries", dbDurationBuckets, "query"),

		CacheHitsTotal: c.RegisterCounter("cache_hits_total",
			"Query cache hits", "kind"),
		CacheMissesTotal: c.RegisterCounter("cache_misses_total",
			"Query cache misses", "kind"),

		ExportArtifactsTotal: c.RegisterCounter("export_artifacts_total",
			"Exported artifacts by format", "format"),

		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"HTTP requests by route and status", "method", "path", "status"),
		HTTPRequestSeconds: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request duration by route", httpDurationBuckets, "method", "path"),
	}
}

// ObserveStage records one pipeline stage duration.
func (m *AppMetrics) ObserveStage(stage string, d time.Duration) {
	m.PipelineStageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}
