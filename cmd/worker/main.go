package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"github.com/antoinerimano/Netflix/internal/handler/http/respond"
	pgRepo "github.com/antoinerimano/Netflix/internal/infra/adapter/persistence/postgres"
	"github.com/antoinerimano/Netflix/internal/infra/cache"
	"github.com/antoinerimano/Netflix/internal/infra/db"
	workerPkg "github.com/antoinerimano/Netflix/internal/infra/worker"
	"github.com/antoinerimano/Netflix/internal/observability/logging"
	feedUC "github.com/antoinerimano/Netflix/internal/usecase/feed"
	"github.com/antoinerimano/Netflix/internal/usecase/snapshot"
)

// waitForMigrations blocks until the API process has created the schema. The
// worker never migrates on its own; two concurrent migrators would race.
func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM profiles LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	var (
		once           = flag.Bool("once", false, "run a single sweep and exit instead of scheduling")
		hours          = flag.Int("hours", 0, "override snapshot rebuild interval in hours")
		limit          = flag.Int("limit", 0, "override max profiles per sweep")
		profileID      = flag.Int64("profile-id", 0, "rebuild only this profile and exit")
		onlyActiveDays = flag.Int("only-active-days", 0, "override active-profile window in days")
	)
	flag.Parse()

	logger := logging.NewLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	applyFlagOverrides(workerConfig, *hours, *limit, *onlyActiveDays)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("snapshot_hours", workerConfig.SnapshotHours),
		slog.Int("sweep_limit", workerConfig.SweepLimit),
		slog.Int("concurrency", workerConfig.Concurrency),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	builder := setupBuilder(logger, database)

	// Ad-hoc runs skip the scheduler entirely.
	if *once || *profileID > 0 {
		opts := optionsFromConfig(workerConfig)
		opts.ProfileID = *profileID
		if runSweep(logger, builder, workerConfig, workerMetrics, opts) {
			return
		}
		os.Exit(1)
	}

	// Start metrics HTTP server
	startMetricsServer(ctx, logger)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(logger, builder, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// applyFlagOverrides lets command-line flags override the env-derived config
// for ad-hoc runs.
func applyFlagOverrides(cfg *workerPkg.WorkerConfig, hours, limit, onlyActiveDays int) {
	if hours > 0 {
		cfg.SnapshotHours = hours
	}
	if limit > 0 {
		cfg.SweepLimit = limit
	}
	if onlyActiveDays > 0 {
		cfg.OnlyActiveDays = onlyActiveDays
	}
}

// setupBuilder wires the snapshot builder with a full feed service. The
// worker always uses an in-process cache: sweep-local reuse is what matters,
// and sharing candidate caches with the API through Redis is a bonus, not a
// requirement.
func setupBuilder(logger *slog.Logger, database *sql.DB) *snapshot.Builder {
	var feedCache cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		logger.Info("cache backend: redis", slog.String("addr", addr))
		feedCache = cache.NewRedis(addr, logger)
	} else {
		logger.Info("cache backend: in-memory")
		feedCache = cache.NewMemory()
	}

	feedCfg, err := feedUC.LoadConfig()
	if err != nil {
		logger.Error("failed to load feed configuration", slog.Any("error", err))
		os.Exit(1)
	}

	profiles := pgRepo.NewProfileRepo(database)
	feedSvc := &feedUC.Service{
		Titles:       pgRepo.NewTitleRepo(database),
		Embeddings:   pgRepo.NewEmbeddingRepo(database),
		Interactions: pgRepo.NewInteractionRepo(database),
		Snapshots:    pgRepo.NewSnapshotRepo(database),
		Artifacts:    pgRepo.NewArtifactRepo(database),
		Profiles:     profiles,
		Indexes:      pgRepo.NewAttributeIndexes(database),
		Cache:        feedCache,
		Logger:       logger,
		Config:       feedCfg,
	}

	return &snapshot.Builder{
		Feed:     feedSvc,
		Profiles: profiles,
		Logger:   logger,
	}
}

func optionsFromConfig(cfg *workerPkg.WorkerConfig) snapshot.Options {
	return snapshot.Options{
		Hours:          cfg.SnapshotHours,
		Limit:          cfg.SweepLimit,
		OnlyActiveDays: cfg.OnlyActiveDays,
		Concurrency:    cfg.Concurrency,
		PerSecond:      float64(cfg.PerSecond),
	}
}

// startCronWorker starts the cron scheduler and runs the snapshot sweep periodically.
func startCronWorker(logger *slog.Logger, builder *snapshot.Builder, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runSweep(logger, builder, cfg, metrics, optionsFromConfig(cfg))
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runSweep executes a single snapshot sweep with timeout and error handling.
func runSweep(logger *slog.Logger, builder *snapshot.Builder, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, opts snapshot.Options) bool {
	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("snapshot sweep started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
	defer cancel()

	report, err := builder.Run(ctx, opts)
	if err != nil {
		// Mask secrets (DSNs and the like) before logging
		logger.Error("snapshot sweep failed", slog.Any("error", respond.SanitizeError(err)))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return false
	}

	metrics.RecordJobRun(report.Status())
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordProfilesProcessed(report.Profiles)
	if report.Status() != "failure" {
		metrics.RecordLastSuccess()
	}

	logger.Info("snapshot sweep completed",
		slog.Int("profiles", report.Profiles),
		slog.Int("ok", report.OK),
		slog.Int("failed", report.Failed),
		slog.String("status", report.Status()),
		slog.Duration("duration", report.Took),
	)
	return report.Status() != "failure"
}
