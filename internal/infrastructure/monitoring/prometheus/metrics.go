package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds all pipeline metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Registry
	MoleculesRegistered CounterVec
	StructuresDropped   CounterVec
	RegistrySize        GaugeVec

	// Stages
	StageRunsTotal CounterVec
	StageDuration  HistogramVec
	StageItemCount HistogramVec

	// Generation
	CandidatesGenerated CounterVec
	CandidatesFiltered  CounterVec
	StrategySkips       CounterVec

	// Scoring
	ScoresRecorded CounterVec
	ScoresMissing  CounterVec
	DockingRuns    CounterVec
	DockingTime    HistogramVec

	// External services
	ExternalRequestsTotal   CounterVec
	ExternalRequestDuration HistogramVec
	ExternalRetriesTotal    CounterVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	EventsPublished  CounterVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultStageDurationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600}
	DefaultDockDurationBuckets  = []float64{5, 15, 30, 60, 120, 300, 600, 1200}
	DefaultItemCountBuckets     = []float64{0, 10, 50, 100, 500, 1000, 5000, 10000}
	DefaultDBDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all pipeline metrics and returns the AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Registry
	m.MoleculesRegistered = collector.RegisterCounter("molecules_registered_total", "Molecules added to the registry", "provenance")
	m.StructuresDropped = collector.RegisterCounter("structures_dropped_total", "Raw structures dropped during ingestion", "reason")
	m.RegistrySize = collector.RegisterGauge("registry_size", "Molecules currently in the registry", "project")

	// Stages
	m.StageRunsTotal = collector.RegisterCounter("stage_runs_total", "Stage executions", "stage", "status")
	m.StageDuration = collector.RegisterHistogram("stage_duration_seconds", "Stage wall-clock duration", DefaultStageDurationBuckets, "stage")
	m.StageItemCount = collector.RegisterHistogram("stage_item_count", "Items produced per stage run", DefaultItemCountBuckets, "stage")

	// Generation
	m.CandidatesGenerated = collector.RegisterCounter("candidates_generated_total", "Raw analogs produced", "strategy")
	m.CandidatesFiltered = collector.RegisterCounter("candidates_filtered_total", "Analogs removed by a filter", "filter")
	m.StrategySkips = collector.RegisterCounter("strategy_skips_total", "Seed/strategy applications skipped after failure", "strategy")

	// Scoring
	m.ScoresRecorded = collector.RegisterCounter("scores_recorded_total", "Score values recorded", "signal")
	m.ScoresMissing = collector.RegisterCounter("scores_missing_total", "Scores recorded as missing", "signal", "reason")
	m.DockingRuns = collector.RegisterCounter("docking_runs_total", "Docking engine invocations", "status")
	m.DockingTime = collector.RegisterHistogram("docking_run_duration_seconds", "Docking run duration", DefaultDockDurationBuckets)

	// External
	m.ExternalRequestsTotal = collector.RegisterCounter("external_requests_total", "External service requests", "service", "status")
	m.ExternalRequestDuration = collector.RegisterHistogram("external_request_duration_seconds", "External request duration", DefaultHTTPDurationBuckets, "service")
	m.ExternalRetriesTotal = collector.RegisterCounter("external_retries_total", "External request retries", "service")

	// Infrastructure
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublished = collector.RegisterCounter("events_published_total", "Pipeline events published", "topic", "status")

	// System health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordStageRun(metrics *AppMetrics, stage string, err error, duration time.Duration, items int) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.StageRunsTotal.WithLabelValues(stage, status).Inc()
	metrics.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	metrics.StageItemCount.WithLabelValues(stage).Observe(float64(items))
}

func RecordExternalCall(metrics *AppMetrics, service string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ExternalRequestsTotal.WithLabelValues(service, status).Inc()
	metrics.ExternalRequestDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func RecordDockingRun(metrics *AppMetrics, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.DockingRuns.WithLabelValues(status).Inc()
	metrics.DockingTime.WithLabelValues().Observe(duration.Seconds())
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, code string) {
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}
