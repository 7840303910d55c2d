package prometheus

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "patscope"}, nil)
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	require.Error(t, err)
}

func TestCollector_CounterAppearsInScrape(t *testing.T) {
	c := newTestCollector(t)

	runs := c.RegisterCounter("pipeline_runs_total", "runs", "status")
	runs.WithLabelValues("completed").Inc()
	runs.WithLabelValues("completed").Add(2)
	runs.WithLabelValues("failed").Inc()

	body := scrape(t, c)
	assert.Contains(t, body, `patscope_pipeline_runs_total{status="completed"} 3`)
	assert.Contains(t, body, `patscope_pipeline_runs_total{status="failed"} 1`)
}

func TestCollector_GaugeSetAndDec(t *testing.T) {
	c := newTestCollector(t)

	g := c.RegisterGauge("quality_score", "score", "combine")
	g.WithLabelValues("intersection").Set(100)
	g.WithLabelValues("intersection").Dec()

	assert.Contains(t, scrape(t, c), `patscope_quality_score{combine="intersection"} 99`)
}

func TestCollector_HistogramObserve(t *testing.T) {
	c := newTestCollector(t)

	h := c.RegisterHistogram("db_query_duration_seconds", "queries", []float64{0.1, 1, 10}, "query")
	h.WithLabelValues("keywords").Observe(0.5)

	body := scrape(t, c)
	assert.Contains(t, body, `patscope_db_query_duration_seconds_count{query="keywords"} 1`)
	assert.Contains(t, body, `patscope_db_query_duration_seconds_bucket{query="keywords",le="1"} 1`)
}

func TestCollector_ReRegistrationReturnsExisting(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("cache_hits_total", "hits", "kind")
	second := c.RegisterCounter("cache_hits_total", "hits", "kind")

	first.WithLabelValues("dataset").Inc()
	second.WithLabelValues("dataset").Inc()

	assert.Contains(t, scrape(t, c), `patscope_cache_hits_total{kind="dataset"} 2`,
		"both handles must feed the same underlying counter")
}

func TestNewAppMetrics_RegistersFullSet(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.PipelineRunsTotal.WithLabelValues("completed").Inc()
	m.ObserveStage("dataset", 2*time.Second)
	m.DatasetApplications.WithLabelValues("union").Set(1977)
	m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/runs", "200").Inc()

	body := scrape(t, c)
	assert.Contains(t, body, "patscope_pipeline_runs_total")
	assert.Contains(t, body, `patscope_pipeline_stage_duration_seconds_count{stage="dataset"} 1`)
	assert.Contains(t, body, `patscope_dataset_applications{combine="union"} 1977`)
	assert.Contains(t, body, `patscope_http_requests_total{method="GET",path="/v1/runs",status="200"} 1`)
}
