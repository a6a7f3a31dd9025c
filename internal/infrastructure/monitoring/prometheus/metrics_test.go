package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.MoleculesRegistered)
	assert.NotNil(t, m.StructuresDropped)
	assert.NotNil(t, m.StageRunsTotal)
	assert.NotNil(t, m.StageDuration)
	assert.NotNil(t, m.CandidatesGenerated)
	assert.NotNil(t, m.CandidatesFiltered)
	assert.NotNil(t, m.StrategySkips)
	assert.NotNil(t, m.ScoresRecorded)
	assert.NotNil(t, m.ScoresMissing)
	assert.NotNil(t, m.DockingRuns)
	assert.NotNil(t, m.ExternalRequestsTotal)
	assert.NotNil(t, m.EventsPublished)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "GET", "/api/v1/hits", 200, 20*time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="GET",path="/api/v1/hits",status_code="200"} 1`)
}

func TestRecordStageRun(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordStageRun(m, "generation", nil, 90*time.Second, 250)
	RecordStageRun(m, "generation", errors.New("boom"), time.Second, 0)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_stage_runs_total{stage="generation",status="ok"} 1`)
	assert.Contains(t, out, `test_unit_stage_runs_total{stage="generation",status="error"} 1`)
	assert.Contains(t, out, `test_unit_stage_duration_seconds_count{stage="generation"} 2`)
}

func TestRecordExternalCall(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordExternalCall(m, "chembl", nil, 120*time.Millisecond)
	RecordExternalCall(m, "chembl", errors.New("timeout"), 5*time.Second)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_external_requests_total{service="chembl",status="ok"} 1`)
	assert.Contains(t, out, `test_unit_external_requests_total{service="chembl",status="error"} 1`)
}

func TestRecordDockingRun(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDockingRun(m, nil, 45*time.Second)
	RecordDockingRun(m, errors.New("exit status 1"), 2*time.Second)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_docking_runs_total{status="ok"} 1`)
	assert.Contains(t, out, `test_unit_docking_runs_total{status="error"} 1`)
	assert.Contains(t, out, "test_unit_docking_run_duration_seconds_count 2")
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "bioactivity", true)
	RecordCacheAccess(m, "bioactivity", true)
	RecordCacheAccess(m, "bioactivity", false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_cache_hits_total{cache="bioactivity"} 2`)
	assert.Contains(t, out, `test_unit_cache_misses_total{cache="bioactivity"} 1`)
}

func TestRecordError(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordError(m, "docking", "DOCK_002")

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_errors_total{code="DOCK_002",component="docking"} 1`)
}
