// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Feed metrics track the composition engine itself
var (
	// FeedServesTotal counts home feed responses by serve mode
	FeedServesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_serves_total",
			Help: "Total number of home feed responses by serve mode",
		},
		[]string{"mode"},
	)

	// FeedPlanOutcomesTotal counts planning passes by terminal outcome
	FeedPlanOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_plan_outcomes_total",
			Help: "Total number of planning passes by outcome",
		},
		[]string{"outcome"},
	)

	// FeedPlanDuration measures one full planning pass in seconds
	FeedPlanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_plan_duration_seconds",
			Help:    "Candidate planning pass duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"outcome"},
	)

	// FeedRowsBuilt measures how many rows survive ranking per response
	FeedRowsBuilt = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_rows_built",
			Help:    "Number of rows in one composed home payload",
			Buckets: prometheus.LinearBuckets(0, 1, 16),
		},
	)

	// FeedRowRankDuration measures ranking one candidate row
	FeedRowRankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_row_rank_duration_seconds",
			Help:    "Time taken to score and select one row",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	// SnapshotBuildsTotal counts per-profile snapshot builds by version and result
	SnapshotBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_builds_total",
			Help: "Total number of per-profile snapshot builds",
		},
		[]string{"algo_version", "status"},
	)

	// SnapshotBuildDuration measures building one profile's snapshot
	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_build_duration_seconds",
			Help:    "Time taken to build one profile snapshot",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	// SnapshotJobRunsTotal counts full offline job sweeps by result
	SnapshotJobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_job_runs_total",
			Help: "Total number of offline snapshot job sweeps",
		},
		[]string{"status"},
	)

	// SnapshotJobDuration measures one full offline job sweep
	SnapshotJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_job_duration_seconds",
			Help:    "Offline snapshot job sweep duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// ImpressionsLoggedTotal counts accepted impression events
	ImpressionsLoggedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "impressions_logged_total",
			Help: "Total number of accepted impression events",
		},
	)

	// ActionsLoggedTotal counts accepted action events by type
	ActionsLoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actions_logged_total",
			Help: "Total number of accepted action events",
		},
		[]string{"action"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_candidates", "upsert_snapshot").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
