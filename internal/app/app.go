// Package app wires the trip manager's object graph from a Config. The API
// server and tripctl share it so both run the same services over the same
// repositories.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/andes-trip-manager/backend/internal/config"
	"github.com/andes-trip-manager/backend/internal/events"
	"github.com/andes-trip-manager/backend/internal/query"
	"github.com/andes-trip-manager/backend/internal/repo"
	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/service"
	"github.com/andes-trip-manager/backend/internal/tripfile"
	"github.com/andes-trip-manager/backend/migrations"
)

// App holds every long-lived component. Close releases the pool and the
// event publisher.
type App struct {
	Pool        *pgxpool.Pool
	Repos       service.Repos
	Diagnostics *retry.RingLog
	Runner      *retry.Runner
	Publisher   events.Publisher
	Trips       *service.TripService
	Exports     *service.ExportService
	Imports     *service.ImportService
	Query       *query.Service
}

// New builds the App. The pool is created lazily: no connection is opened
// until the first query, so callers that need the database up should Ping.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app.New: create pool: %w", err)
	}

	diagnostics := retry.NewRingLog(cfg.RetryLogSize)
	runner, err := retry.NewRunner(cfg.Retry, diagnostics, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("app.New: %w", err)
	}

	repos := service.Repos{
		Trips:       repo.NewTripRepo(pool),
		Days:        repo.NewDayRepo(pool),
		Stops:       repo.NewStopRepo(pool),
		Lodgings:    repo.NewLodgingRepo(pool),
		Costs:       repo.NewCostRepo(pool),
		Maintenance: repo.NewMaintenanceRepo(pool),
		Weather:     repo.NewWeatherRepo(pool),
		Diary:       repo.NewDiaryRepo(pool),
	}
	publisher := newPublisher(cfg, logger)

	collector := service.NewCollector(repos, runner)
	exports := service.NewExportService(repos.Trips, collector, runner,
		tripfile.LookupLocale(cfg.ExportLocale), publisher, logger)
	backup := service.NewFileBackup(cfg.BackupDir, exports)
	imports := service.NewImportService(repos, runner, backup, publisher, logger, service.ImportConfig{
		Concurrency: cfg.ImportConcurrency,
		MaxBytes:    cfg.MaxImportBytes,
	})

	return &App{
		Pool:        pool,
		Repos:       repos,
		Diagnostics: diagnostics,
		Runner:      runner,
		Publisher:   publisher,
		Trips:       service.NewTripService(repos.Trips),
		Exports:     exports,
		Imports:     imports,
		Query:       query.New(repos, collector),
	}, nil
}

// newPublisher returns a Kafka publisher when brokers are configured and a
// no-op one otherwise.
func newPublisher(cfg config.Config, logger *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NopPublisher{}
	}
	logger.Info("publishing trip events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return events.NewKafkaPublisher(events.ProducerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	}, logger)
}

// Migrate applies every pending migration.
func (a *App) Migrate(ctx context.Context, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(a.Pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("app.Migrate: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("app.Migrate: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// Close flushes the publisher and closes the pool.
func (a *App) Close(logger *slog.Logger) {
	if err := a.Publisher.Close(); err != nil {
		logger.Warn("closing event publisher", "error", err)
	}
	a.Pool.Close()
}
