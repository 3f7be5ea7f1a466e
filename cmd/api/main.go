package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pgRepo "github.com/antoinerimano/Netflix/internal/infra/adapter/persistence/postgres"
	"github.com/antoinerimano/Netflix/internal/infra/cache"
	"github.com/antoinerimano/Netflix/internal/infra/db"
	"github.com/antoinerimano/Netflix/internal/observability/logging"

	eventUC "github.com/antoinerimano/Netflix/internal/usecase/event"
	feedUC "github.com/antoinerimano/Netflix/internal/usecase/feed"

	hhttp "github.com/antoinerimano/Netflix/internal/handler/http"
	hevents "github.com/antoinerimano/Netflix/internal/handler/http/events"
	hhome "github.com/antoinerimano/Netflix/internal/handler/http/home"
	"github.com/antoinerimano/Netflix/internal/handler/http/requestid"
)

func main() {
	logger := logging.NewLogger()

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	feedCache := initCache(logger)
	defer func() {
		if closer, ok := feedCache.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("failed to close cache", slog.Any("error", err))
			}
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, feedCache, version)

	runServer(logger, handler, version)
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// initCache selects the cache backend. With REDIS_ADDR set the shared Redis
// instance is used; otherwise each process keeps a local in-memory cache,
// which is fine for single-instance deployments and tests.
func initCache(logger *slog.Logger) cache.Cache {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		logger.Info("cache backend: redis", slog.String("addr", addr))
		return cache.NewRedis(addr, logger)
	}
	logger.Info("cache backend: in-memory")
	return cache.NewMemory()
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires the repositories, services, routes, and middleware chain.
func setupServer(logger *slog.Logger, database *sql.DB, feedCache cache.Cache, version string) http.Handler {
	feedCfg, err := feedUC.LoadConfig()
	if err != nil {
		logger.Error("failed to load feed configuration", slog.Any("error", err))
		os.Exit(1)
	}

	feedSvc := &feedUC.Service{
		Titles:       pgRepo.NewTitleRepo(database),
		Embeddings:   pgRepo.NewEmbeddingRepo(database),
		Interactions: pgRepo.NewInteractionRepo(database),
		Snapshots:    pgRepo.NewSnapshotRepo(database),
		Artifacts:    pgRepo.NewArtifactRepo(database),
		Profiles:     pgRepo.NewProfileRepo(database),
		Indexes:      pgRepo.NewAttributeIndexes(database),
		Cache:        feedCache,
		Logger:       logger,
		Config:       feedCfg,
	}
	eventSvc := &eventUC.Service{
		Interactions: pgRepo.NewInteractionRepo(database),
		Logger:       logger,
	}

	// The telemetry endpoints take the write traffic; one client replaying
	// impression batches must not drown the write path.
	eventsLimiter := hhttp.NewRateLimiter(300, 1*time.Minute)

	mux := http.NewServeMux()
	hhome.Register(mux, feedSvc)
	hevents.Register(mux, eventSvc, eventsLimiter.Limit)

	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, mux)
}

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost first): Request ID → Metrics → Logging → Recovery →
// Input Validation → Body Limit → Timeout.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	chain := handler

	// Applied in reverse order (innermost to outermost).
	chain = hhttp.Timeout(10 * time.Second)(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.MetricsMiddleware(chain)
	chain = requestid.Middleware(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
