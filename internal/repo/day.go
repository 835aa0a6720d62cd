package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// DayRepo persists itinerary days.
type DayRepo interface {
	Create(ctx context.Context, day domain.Day) (domain.Day, error)
	// ListByTrip returns the trip's days ordered by day number.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error)
}

type pgDayRepo struct {
	db db
}

func NewDayRepo(db db) DayRepo {
	return &pgDayRepo{db: db}
}

const dayColumns = `id, trip_id, day_number, date, title, description, planned_distance, notes, created_at, updated_at`

func (r *pgDayRepo) Create(ctx context.Context, day domain.Day) (domain.Day, error) {
	const q = `
		INSERT INTO trip_days (trip_id, day_number, date, title, description, planned_distance, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + dayColumns

	row := r.db.QueryRow(ctx, q,
		day.TripID, day.DayNumber, day.Date, day.Title, day.Description, day.PlannedDistance, day.Notes)
	result, err := scanOne(row, scanDay)
	if err != nil {
		return domain.Day{}, fmt.Errorf("repo.DayRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgDayRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error) {
	q := `SELECT ` + dayColumns + ` FROM trip_days WHERE trip_id = $1 ORDER BY day_number`

	rows, err := r.db.Query(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.ListByTrip: %w", err)
	}
	days, err := collect(rows, scanDay)
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.ListByTrip: %w", err)
	}
	return days, nil
}

func scanDay(s scanner) (domain.Day, error) {
	var d domain.Day
	err := s.Scan(&d.ID, &d.TripID, &d.DayNumber, &d.Date, &d.Title, &d.Description,
		&d.PlannedDistance, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
