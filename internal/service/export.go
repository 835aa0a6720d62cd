package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/events"
	"github.com/andes-trip-manager/backend/internal/repo"
	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/tripfile"
	"github.com/andes-trip-manager/backend/internal/validation"
)

// ExportService builds trip files for the caller's trips.
type ExportService struct {
	trips     repo.TripRepo
	collector *Collector
	runner    *retry.Runner
	locale    tripfile.Locale
	publisher events.Publisher
	validate  *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewExportService wires an ExportService. loc is used for local date format
// exports; a nil publisher disables events.
func NewExportService(trips repo.TripRepo, collector *Collector, runner *retry.Runner, loc tripfile.Locale, publisher events.Publisher, logger *slog.Logger) *ExportService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ExportService{
		trips:     trips,
		collector: collector,
		runner:    runner,
		locale:    loc,
		publisher: publisher,
		validate:  validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// ExportTrip exports one of the caller's trips. Any read failure fails the
// whole export.
func (s *ExportService) ExportTrip(ctx context.Context, id uuid.UUID, opts tripfile.ExportOptions) (tripfile.Aggregate, error) {
	timer := prometheus.NewTimer(pipelineDuration.WithLabelValues("export"))
	defer timer.ObserveDuration()

	if err := s.validate.Validate(opts); err != nil {
		return tripfile.Aggregate{}, fmt.Errorf("service.ExportService.ExportTrip: %w", err)
	}
	trip, user, err := retryOwnedTrip(ctx, s.runner, s.trips, id)
	if err != nil {
		exportsTotal.WithLabelValues("trip", "error").Inc()
		return tripfile.Aggregate{}, fmt.Errorf("service.ExportService.ExportTrip: %w", err)
	}
	agg, err := s.build(ctx, user, trip, opts)
	if err != nil {
		exportsTotal.WithLabelValues("trip", "error").Inc()
		return tripfile.Aggregate{}, fmt.Errorf("service.ExportService.ExportTrip: %w", err)
	}

	exportsTotal.WithLabelValues("trip", "ok").Inc()
	s.publish(ctx, user, []tripfile.Aggregate{agg})
	return agg, nil
}

// ExportTrips exports several of the caller's trips in the order given.
// One trip the caller does not own fails the whole export.
func (s *ExportService) ExportTrips(ctx context.Context, ids []uuid.UUID, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error) {
	timer := prometheus.NewTimer(pipelineDuration.WithLabelValues("export"))
	defer timer.ObserveDuration()

	if err := s.validate.Validate(opts); err != nil {
		return nil, fmt.Errorf("service.ExportService.ExportTrips: %w", err)
	}
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.ExportTrips: %w", err)
	}

	trips := make([]domain.Trip, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			t, _, err := retryOwnedTrip(gctx, s.runner, s.trips, id)
			if err != nil {
				return fmt.Errorf("trip %s: %w", id, err)
			}
			trips[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		exportsTotal.WithLabelValues("trips", "error").Inc()
		return nil, fmt.Errorf("service.ExportService.ExportTrips: %w", err)
	}

	aggs, err := s.buildAll(ctx, user, trips, opts)
	if err != nil {
		exportsTotal.WithLabelValues("trips", "error").Inc()
		return nil, fmt.Errorf("service.ExportService.ExportTrips: %w", err)
	}
	exportsTotal.WithLabelValues("trips", "ok").Inc()
	s.publish(ctx, user, aggs)
	return aggs, nil
}

// ExportAll exports every trip the caller owns.
func (s *ExportService) ExportAll(ctx context.Context, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error) {
	timer := prometheus.NewTimer(pipelineDuration.WithLabelValues("export"))
	defer timer.ObserveDuration()

	if err := s.validate.Validate(opts); err != nil {
		return nil, fmt.Errorf("service.ExportService.ExportAll: %w", err)
	}
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.ExportAll: %w", err)
	}

	trips, err := retry.Run(ctx, s.runner, "list trips", func(ctx context.Context) ([]domain.Trip, error) {
		return s.trips.ListByOwner(ctx, user.ID)
	})
	if err != nil {
		exportsTotal.WithLabelValues("all", "error").Inc()
		return nil, fmt.Errorf("service.ExportService.ExportAll: %w", err)
	}
	aggs, err := s.buildAll(ctx, user, trips, opts)
	if err != nil {
		exportsTotal.WithLabelValues("all", "error").Inc()
		return nil, fmt.Errorf("service.ExportService.ExportAll: %w", err)
	}
	exportsTotal.WithLabelValues("all", "ok").Inc()
	s.publish(ctx, user, aggs)
	return aggs, nil
}

// Classify exposes the runner's classification for handlers reporting
// export failures.
func (s *ExportService) Classify(err error) retry.Classification {
	return s.runner.Classify(err)
}

func (s *ExportService) build(ctx context.Context, user auth.User, trip domain.Trip, opts tripfile.ExportOptions) (tripfile.Aggregate, error) {
	raw, err := s.collector.Collect(ctx, trip, opts)
	if err != nil {
		return tripfile.Aggregate{}, err
	}
	return Transform(raw, opts, user, s.now(), s.locale), nil
}

func (s *ExportService) buildAll(ctx context.Context, user auth.User, trips []domain.Trip, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error) {
	aggs := make([]tripfile.Aggregate, len(trips))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range trips {
		g.Go(func() error {
			agg, err := s.build(gctx, user, t, opts)
			if err != nil {
				return fmt.Errorf("trip %s: %w", t.ID, err)
			}
			aggs[i] = agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return aggs, nil
}

func (s *ExportService) publish(ctx context.Context, user auth.User, aggs []tripfile.Aggregate) {
	ids := make([]string, len(aggs))
	records := 0
	for i, a := range aggs {
		ids[i] = a.Trip.ID
		if a.Statistics != nil {
			st := a.Statistics
			records += st.TotalDays + st.TotalStops + st.TotalLodgings + st.TotalCosts +
				st.TotalMaintenanceRecords + st.TotalDiaryEntries + len(a.Weather)
		}
	}
	err := s.publisher.Publish(ctx, events.TripEvent{
		Type:    events.TypeTripExported,
		OwnerID: user.ID,
		TripIDs: ids,
		Success: true,
		Records: records,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "publish export event", "error", err)
	}
}

// retryOwnedTrip is ownedTrip with the trip read going through the runner.
func retryOwnedTrip(ctx context.Context, r *retry.Runner, trips repo.TripRepo, id uuid.UUID) (domain.Trip, auth.User, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return domain.Trip{}, auth.User{}, err
	}
	trip, err := retry.Run(ctx, r, "read trip", func(ctx context.Context) (domain.Trip, error) {
		return trips.GetByID(ctx, id)
	})
	if err != nil {
		return domain.Trip{}, auth.User{}, err
	}
	if trip.OwnerID != user.ID {
		return domain.Trip{}, auth.User{}, domain.ErrForbidden
	}
	return trip, user, nil
}
