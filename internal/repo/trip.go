package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// TripRepo defines the persistence operations for trips.
// Every read is scoped by owner except GetByID; callers check ownership.
type TripRepo interface {
	// Create inserts a trip and returns it with the DB-generated id and timestamps.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns domain.ErrNotFound if no trip has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByOwner returns every trip of owner, most recent start date first.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Trip, error)

	// ListPaged returns one page of owner's trips and the owner's total count.
	ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// FindByNameAndStart returns owner's trips with exactly this name and start date.
	FindByNameAndStart(ctx context.Context, ownerID, name string, start time.Time) ([]domain.Trip, error)

	// Delete removes a trip and, by cascade, everything attached to it.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by db.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, owner_id, name, description, start_date, end_date, status, origin, destination,
		total_distance, total_cost, number_of_days, photos, notes, created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (owner_id, name, description, start_date, end_date, status, origin, destination,
		                   total_distance, total_cost, number_of_days, photos, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q,
		trip.OwnerID, trip.Name, trip.Description, trip.StartDate, trip.EndDate, trip.Status,
		trip.Origin, trip.Destination, trip.TotalDistance, trip.TotalCost, trip.NumberOfDays,
		photos(trip.Photos), trip.Notes,
	)
	result, err := scanOne(row, scanTrip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	result, err := scanOne(r.db.QueryRow(ctx, q, id), scanTrip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE owner_id = $1 ORDER BY start_date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
	}
	trips, err := collect(rows, scanTrip)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) ListPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	q := `SELECT ` + tripColumns + ` FROM trips WHERE owner_id = $1
		ORDER BY start_date DESC, created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, q, ownerID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	trips, err := collect(rows, scanTrip)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) FindByNameAndStart(ctx context.Context, ownerID, name string, start time.Time) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE owner_id = $1 AND name = $2 AND start_date = $3`

	rows, err := r.db.Query(ctx, q, ownerID, name, start)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.FindByNameAndStart: %w", err)
	}
	trips, err := collect(rows, scanTrip)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.FindByNameAndStart: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanTrip(s scanner) (domain.Trip, error) {
	var t domain.Trip
	err := s.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &t.Status,
		&t.Origin, &t.Destination, &t.TotalDistance, &t.TotalCost, &t.NumberOfDays, &t.Photos,
		&t.Notes, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
