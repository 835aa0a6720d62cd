// Package service contains the business logic of the trip manager: trip
// bookkeeping and the export, validation and import pipeline for whole trip
// aggregates. Services depend on repo interfaces, never on SQL.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/repo"
)

// Repos bundles the repositories of one trip aggregate.
type Repos struct {
	Trips       repo.TripRepo
	Days        repo.DayRepo
	Stops       repo.StopRepo
	Lodgings    repo.LodgingRepo
	Costs       repo.CostRepo
	Maintenance repo.MaintenanceRepo
	Weather     repo.WeatherRepo
	Diary       repo.DiaryRepo
}

// TripService implements the caller-scoped trip operations.
type TripService struct {
	repo repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{repo: r}
}

// Create validates trip and persists it as owned by the caller.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	trip.OwnerID = user.ID
	trip.Name = strings.TrimSpace(trip.Name)
	if trip.Status == "" {
		trip.Status = domain.TripStatusPlanned
	}
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}

	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// Get returns one of the caller's trips.
// Returns domain.ErrNotFound if it does not exist, domain.ErrForbidden if it
// belongs to someone else.
func (s *TripService) Get(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, _, err := ownedTrip(ctx, s.repo, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// List returns one page of the caller's trips.
func (s *TripService) List(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Trip], error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return domain.Page[domain.Trip]{}, fmt.Errorf("service.TripService.List: %w", err)
	}
	trips, total, err := s.repo.ListPaged(ctx, user.ID, p)
	if err != nil {
		return domain.Page[domain.Trip]{}, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return domain.Page[domain.Trip]{Items: trips, Total: total, Params: p}, nil
}

// Delete removes one of the caller's trips with everything attached to it.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, _, err := ownedTrip(ctx, s.repo, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// ownedTrip loads a trip and checks the caller owns it.
func ownedTrip(ctx context.Context, trips repo.TripRepo, id uuid.UUID) (domain.Trip, auth.User, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return domain.Trip{}, auth.User{}, err
	}
	trip, err := trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, auth.User{}, err
	}
	if trip.OwnerID != user.ID {
		return domain.Trip{}, auth.User{}, domain.ErrForbidden
	}
	return trip, user, nil
}

// validateTrip enforces the rules shared by every way a trip is created.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Both dates are required and StartDate must not be after EndDate.
func validateTrip(t domain.Trip) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	if t.StartDate.After(t.EndDate) {
		return fmt.Errorf("%w: start_date must not be after end_date", domain.ErrValidation)
	}
	return nil
}
