package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/HitForge-Discovery/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	cfg := CollectorConfig{
		Namespace:            "test",
		Subsystem:            "unit",
		EnableGoMetrics:      false,
		EnableProcessMetrics: false,
	}
	c, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_ValidConfig(t *testing.T) {
	assert.NotNil(t, newTestCollector(t))
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithProcessMetrics(t *testing.T) {
	cfg := CollectorConfig{
		Namespace:            "test",
		EnableProcessMetrics: true,
	}
	c, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "process_cpu_seconds_total")
}

func TestRegisterCounter_IncrementAndScrape(t *testing.T) {
	c := newTestCollector(t)

	counter := c.RegisterCounter("docking_runs_total", "Docking engine invocations", "status")
	counter.WithLabelValues("ok").Inc()
	counter.WithLabelValues("ok").Add(2)
	counter.WithLabelValues("error").Inc()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_docking_runs_total{status="ok"} 3`)
	assert.Contains(t, out, `test_unit_docking_runs_total{status="error"} 1`)
}

func TestRegisterCounter_DuplicateReturnsSameInstrument(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("dup_total", "dup", "l")
	second := c.RegisterCounter("dup_total", "dup", "l")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Inc()

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_dup_total{l="a"} 2`)
}

func TestRegisterGauge_SetAndMove(t *testing.T) {
	c := newTestCollector(t)

	gauge := c.RegisterGauge("registry_size", "Molecules in registry", "project")
	gauge.WithLabelValues("egfr").Set(10)
	gauge.WithLabelValues("egfr").Inc()
	gauge.WithLabelValues("egfr").Sub(3)

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_registry_size{project="egfr"} 8`)
}

func TestRegisterHistogram_Observes(t *testing.T) {
	c := newTestCollector(t)

	hist := c.RegisterHistogram("stage_duration_seconds", "Stage duration", []float64{1, 10, 100}, "stage")
	hist.WithLabelValues("scoring").Observe(5)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_stage_duration_seconds_count{stage="scoring"} 1`)
	assert.Contains(t, out, `test_unit_stage_duration_seconds_bucket{stage="scoring",le="10"} 1`)
}

func TestRegisterHistogram_NilBucketsUseDefaults(t *testing.T) {
	c := newTestCollector(t)

	hist := c.RegisterHistogram("default_buckets_seconds", "x", nil)
	hist.WithLabelValues().Observe(0.3)
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_default_buckets_seconds_count 1")
}

func TestRegisterSummary_Observes(t *testing.T) {
	c := newTestCollector(t)

	sum := c.RegisterSummary("latency_summary", "x", nil, "svc")
	sum.WithLabelValues("chembl").Observe(0.25)
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_latency_summary_count{svc="chembl"} 1`)
}

func TestRegister_TypeConflictFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)

	_ = c.RegisterCounter("conflict_total", "first registration", "l")
	gauge := c.RegisterGauge("conflict_total", "same name, different type", "l")

	// Must not panic; the returned gauge silently discards.
	gauge.WithLabelValues("a").Set(1)
	assert.NotContains(t, scrapeMetrics(t, c), `conflict_total{l="a"} 1`)
}

func TestTimer_ObservesElapsed(t *testing.T) {
	c := newTestCollector(t)

	hist := c.RegisterHistogram("timer_seconds", "x", []float64{0.001, 1, 10})
	timer := NewTimer(hist.WithLabelValues())
	time.Sleep(2 * time.Millisecond)
	timer.ObserveDuration()

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_timer_seconds_count 1")
}

func TestTimer_NilHistogramIsSafe(t *testing.T) {
	timer := NewTimer(nil)
	timer.ObserveDuration()
}
