package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the sync worker

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigleague_api_calls_total",
			Help: "Total number of Sleeper API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bigleague_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigleague_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bigleague_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bigleague_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bigleague_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bigleague_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bigleague_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bigleague_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigleague_sync_operations_total",
			Help: "Total number of sync task runs",
		},
		[]string{"task", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bigleague_sync_duration_seconds",
			Help:    "Duration of sync task runs in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"task"},
	)

	RecordsReconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigleague_records_reconciled_total",
			Help: "Total number of records upserted by kind",
		},
		[]string{"kind"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigleague_records_skipped_total",
			Help: "Total number of upstream records skipped by kind and reason",
		},
		[]string{"kind", "reason"},
	)

	// Bracket metrics
	BracketResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigleague_bracket_resolutions_total",
			Help: "Total number of bracket resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigleague_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// Scheduler metrics
	SchedulerTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigleague_scheduler_ticks_total",
			Help: "Total number of scheduler dispatches by task and source",
		},
		[]string{"task", "source"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bigleague_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bigleague_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync per task",
		},
		[]string{"task"},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordSync records a sync task run
func RecordSync(task, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(task, status).Inc()
	SyncDuration.WithLabelValues(task).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.WithLabelValues(task).SetToCurrentTime()
	}
}

// RecordReconciled adds n upserted records of the given kind
func RecordReconciled(kind string, n int) {
	RecordsReconciled.WithLabelValues(kind).Add(float64(n))
}

// RecordSkipped records an upstream record that could not be stored
func RecordSkipped(kind, reason string) {
	RecordsSkipped.WithLabelValues(kind, reason).Inc()
}

// RecordBracketResolution records whether a bracket could be resolved
func RecordBracketResolution(resolved bool) {
	outcome := "resolved"
	if !resolved {
		outcome = "unresolved"
	}
	BracketResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordSchedulerTick records a task dispatch. source is "ticker", "trigger" or "initial".
func RecordSchedulerTick(task, source string) {
	SchedulerTicksTotal.WithLabelValues(task, source).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
