package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/antoinerimano/Netflix/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the snapshot worker.
// It embeds the standard ConfigMetrics for configuration monitoring and
// adds worker-specific metrics for cron sweep execution tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Worker-specific metrics:
//   - worker_cron_job_runs_total: Total sweep runs by status
//   - worker_cron_job_duration_seconds: Duration histogram of sweep execution
//   - worker_cron_job_profiles_processed_total: Total profiles processed
//   - worker_cron_job_last_success_timestamp: Unix timestamp of last successful run
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts sweep runs.
	// Labels: status (success, partial, failure)
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures sweep execution time.
	// Buckets cover 1s through 30m, matching typical sweep durations.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobProfilesProcessedTotal counts profiles processed across all
	// sweep runs, including profiles whose build failed.
	CronJobProfilesProcessedTotal prometheus.Counter

	// CronJobLastSuccessTimestamp records the Unix timestamp of the last
	// sweep that completed without failures.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a WorkerMetrics instance with all metrics
// initialized and registered via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of snapshot sweep runs by status (success/partial/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of snapshot sweep execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobProfilesProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_profiles_processed_total",
			Help: "Total number of profiles processed across all sweep runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last fully successful sweep run",
		}),
	}
}

// MustRegister is a no-op method for API compatibility.
// Metrics are automatically registered via promauto when created in
// NewWorkerMetrics. The explicit call keeps the initialization intent
// visible at the call site.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordJobRun increments the sweep run counter for the given status.
// Status should be one of "success", "partial", or "failure".
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a sweep in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordProfilesProcessed adds the number of profiles processed in a
// sweep to the running total.
func (m *WorkerMetrics) RecordProfilesProcessed(count int) {
	m.CronJobProfilesProcessedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last fully
// successful sweep completion.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
