package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/antoinerimano/Netflix/internal/pkg/config"
)

// WorkerConfig holds the configuration for the snapshot worker component.
// It controls the cron schedule, timezone, sweep sizing, and other
// operational parameters for the offline snapshot builder.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have sensible defaults and validation rules so the worker can
// operate safely even with invalid or missing configuration.
type WorkerConfig struct {
	// CronSchedule is the cron expression for snapshot sweep scheduling.
	// Format: "minute hour day month weekday"
	// Example: "0 */4 * * *" (every 4 hours)
	// Default: "0 */4 * * *"
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Example: "UTC", "Asia/Tokyo", "America/New_York"
	// Default: "UTC"
	Timezone string

	// SnapshotHours is the lifetime of a successfully built snapshot in
	// hours. Snapshots older than this are no longer servable.
	// Range: 1-48
	// Default: 6
	SnapshotHours int

	// SweepLimit is the maximum number of profiles processed per sweep.
	// Range: 1-100000
	// Default: 5000
	SweepLimit int

	// Concurrency is the number of profiles built in parallel.
	// Range: 1-64
	// Default: 4
	Concurrency int

	// PerSecond throttles snapshot builds per second across all workers.
	// Zero disables throttling.
	// Range: 0-1000
	// Default: 0
	PerSecond int

	// OnlyActiveDays restricts the sweep to profiles with at least one
	// action in the last N days. Zero sweeps every profile.
	// Range: 0-90
	// Default: 0
	OnlyActiveDays int

	// JobTimeout is the maximum duration for a single sweep. After this
	// timeout the sweep context is cancelled.
	// Range: 1m-4h
	// Default: 20 minutes
	JobTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production-ready defaults:
// a sweep every 4 hours keeps 6-hour snapshots fresh with margin, 4-way
// concurrency balances build throughput against database load, and the
// 20-minute timeout prevents stuck sweeps from overlapping the next run.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:   "0 */4 * * *",
		Timezone:       "UTC",
		SnapshotHours:  6,
		SweepLimit:     5000,
		Concurrency:    4,
		PerSecond:      0,
		OnlyActiveDays: 0,
		JobTimeout:     20 * time.Minute,
		HealthPort:     9091,
	}
}

// Validate checks the configuration values using the reusable validators
// from internal/pkg/config. If multiple fields are invalid, all errors are
// collected and returned together.
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cron schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateIntRange(c.SnapshotHours, 1, 48); err != nil {
		errors = append(errors, fmt.Errorf("snapshot hours: %w", err))
	}

	if err := config.ValidateIntRange(c.SweepLimit, 1, 100000); err != nil {
		errors = append(errors, fmt.Errorf("sweep limit: %w", err))
	}

	if err := config.ValidateIntRange(c.Concurrency, 1, 64); err != nil {
		errors = append(errors, fmt.Errorf("concurrency: %w", err))
	}

	if err := config.ValidateIntRange(c.PerSecond, 0, 1000); err != nil {
		errors = append(errors, fmt.Errorf("per second: %w", err))
	}

	if err := config.ValidateIntRange(c.OnlyActiveDays, 0, 90); err != nil {
		errors = append(errors, fmt.Errorf("only active days: %w", err))
	}

	if err := config.ValidateDuration(c.JobTimeout, 1*time.Minute, 4*time.Hour); err != nil {
		errors = append(errors, fmt.Errorf("job timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// This function implements the fail-open strategy:
//  1. Start with DefaultConfig() as base
//  2. Load each field from environment variables
//  3. Validate each loaded value
//  4. If validation fails: use the default, log a warning, bump metrics
//  5. Never return an error - always return a valid configuration
//
// Environment variables:
//   - SNAPSHOT_CRON_SCHEDULE: Cron expression (default: "0 */4 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - SNAPSHOT_HOURS: Integer 1-48 (default: 6)
//   - SNAPSHOT_SWEEP_LIMIT: Integer 1-100000 (default: 5000)
//   - SNAPSHOT_CONCURRENCY: Integer 1-64 (default: 4)
//   - SNAPSHOT_PER_SECOND: Integer 0-1000, 0 disables (default: 0)
//   - SNAPSHOT_ONLY_ACTIVE_DAYS: Integer 0-90, 0 sweeps all (default: 0)
//   - SNAPSHOT_JOB_TIMEOUT: Duration string, e.g. "20m" (default: 20 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	warn := func(field string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("SNAPSHOT_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	warn("cron_schedule", result)

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	warn("timezone", result)

	result = config.LoadEnvInt("SNAPSHOT_HOURS", cfg.SnapshotHours, func(v int) error {
		return config.ValidateIntRange(v, 1, 48)
	})
	cfg.SnapshotHours = result.Value.(int)
	warn("snapshot_hours", result)

	result = config.LoadEnvInt("SNAPSHOT_SWEEP_LIMIT", cfg.SweepLimit, func(v int) error {
		return config.ValidateIntRange(v, 1, 100000)
	})
	cfg.SweepLimit = result.Value.(int)
	warn("sweep_limit", result)

	result = config.LoadEnvInt("SNAPSHOT_CONCURRENCY", cfg.Concurrency, func(v int) error {
		return config.ValidateIntRange(v, 1, 64)
	})
	cfg.Concurrency = result.Value.(int)
	warn("concurrency", result)

	result = config.LoadEnvInt("SNAPSHOT_PER_SECOND", cfg.PerSecond, func(v int) error {
		return config.ValidateIntRange(v, 0, 1000)
	})
	cfg.PerSecond = result.Value.(int)
	warn("per_second", result)

	result = config.LoadEnvInt("SNAPSHOT_ONLY_ACTIVE_DAYS", cfg.OnlyActiveDays, func(v int) error {
		return config.ValidateIntRange(v, 0, 90)
	})
	cfg.OnlyActiveDays = result.Value.(int)
	warn("only_active_days", result)

	result = config.LoadEnvDuration("SNAPSHOT_JOB_TIMEOUT", cfg.JobTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.JobTimeout = result.Value.(time.Duration)
	warn("job_timeout", result)

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	warn("health_port", result)

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
