package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// RawAggregate is a trip with its sub-collections as stored. Collections
// that were not requested are empty, never nil.
type RawAggregate struct {
	Trip               domain.Trip
	Days               []domain.Day
	Stops              []domain.Stop
	Lodgings           []domain.Lodging
	Costs              []domain.Cost
	MaintenanceRecords []domain.MaintenanceRecord
	Weather            []domain.WeatherSnapshot
	DiaryEntries       []domain.DiaryEntry
}

// Collector reads a trip's sub-collections in parallel.
type Collector struct {
	repos  Repos
	runner *retry.Runner
}

func NewCollector(repos Repos, runner *retry.Runner) *Collector {
	return &Collector{repos: repos, runner: runner}
}

// Collect issues one read per enabled sub-collection, all at once, each
// through the retry runner. The first failure cancels the other reads and is
// returned.
func (c *Collector) Collect(ctx context.Context, trip domain.Trip, opts tripfile.ExportOptions) (RawAggregate, error) {
	raw := RawAggregate{
		Trip:               trip,
		Days:               []domain.Day{},
		Stops:              []domain.Stop{},
		Lodgings:           []domain.Lodging{},
		Costs:              []domain.Cost{},
		MaintenanceRecords: []domain.MaintenanceRecord{},
		Weather:            []domain.WeatherSnapshot{},
		DiaryEntries:       []domain.DiaryEntry{},
	}

	g, gctx := errgroup.WithContext(ctx)
	id := trip.ID
	if opts.IncludeDays {
		read(g, gctx, c.runner, "days", &raw.Days, func(ctx context.Context) ([]domain.Day, error) {
			return c.repos.Days.ListByTrip(ctx, id)
		})
	}
	if opts.IncludeStops {
		read(g, gctx, c.runner, "stops", &raw.Stops, func(ctx context.Context) ([]domain.Stop, error) {
			return c.repos.Stops.ListByTrip(ctx, id)
		})
	}
	if opts.IncludeLodgings {
		read(g, gctx, c.runner, "lodgings", &raw.Lodgings, func(ctx context.Context) ([]domain.Lodging, error) {
			return c.repos.Lodgings.ListByTrip(ctx, id)
		})
	}
	if opts.IncludeCosts {
		read(g, gctx, c.runner, "costs", &raw.Costs, func(ctx context.Context) ([]domain.Cost, error) {
			return c.repos.Costs.ListByTrip(ctx, id)
		})
	}
	if opts.IncludeMaintenance {
		read(g, gctx, c.runner, "maintenance", &raw.MaintenanceRecords, func(ctx context.Context) ([]domain.MaintenanceRecord, error) {
			return c.repos.Maintenance.ListByTrip(ctx, id)
		})
	}
	if opts.IncludeWeather {
		read(g, gctx, c.runner, "weather", &raw.Weather, func(ctx context.Context) ([]domain.WeatherSnapshot, error) {
			return c.repos.Weather.ListByTrip(ctx, id)
		})
	}
	if opts.IncludeDiary {
		read(g, gctx, c.runner, "diary", &raw.DiaryEntries, func(ctx context.Context) ([]domain.DiaryEntry, error) {
			return c.repos.Diary.ListByTrip(ctx, id)
		})
	}

	if err := g.Wait(); err != nil {
		return RawAggregate{}, fmt.Errorf("service.Collector.Collect: %w", err)
	}
	return raw, nil
}

// read schedules one retried list call writing into dst. Each call owns its
// own dst, so no locking is needed.
func read[T any](g *errgroup.Group, ctx context.Context, r *retry.Runner, what string, dst *[]T, list func(context.Context) ([]T, error)) {
	g.Go(func() error {
		v, err := retry.Run(ctx, r, "collect "+what, list)
		if err != nil {
			return fmt.Errorf("read %s: %w", what, err)
		}
		if v != nil {
			*dst = v
		}
		return nil
	})
}
