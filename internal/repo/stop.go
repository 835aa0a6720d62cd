package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// StopRepo persists the places visited on a trip.
type StopRepo interface {
	Create(ctx context.Context, stop domain.Stop) (domain.Stop, error)
	// ListByTrip returns the trip's stops in visiting order.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error)
}

type pgStopRepo struct {
	db db
}

func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

const stopColumns = `id, trip_id, day_id, name, type, address, latitude, longitude, stop_order,
		arrival_time, departure_time, photos, notes, created_at, updated_at`

func (r *pgStopRepo) Create(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	const q = `
		INSERT INTO stops (trip_id, day_id, name, type, address, latitude, longitude, stop_order,
		                   arrival_time, departure_time, photos, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + stopColumns

	row := r.db.QueryRow(ctx, q,
		stop.TripID, stop.DayID, stop.Name, stop.Type, stop.Address, stop.Latitude, stop.Longitude,
		stop.Order, stop.ArrivalTime, stop.DepartureTime, photos(stop.Photos), stop.Notes)
	result, err := scanOne(row, scanStop)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgStopRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	q := `SELECT ` + stopColumns + ` FROM stops WHERE trip_id = $1 ORDER BY stop_order, created_at`

	rows, err := r.db.Query(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTrip: %w", err)
	}
	stops, err := collect(rows, scanStop)
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTrip: %w", err)
	}
	return stops, nil
}

func scanStop(s scanner) (domain.Stop, error) {
	var st domain.Stop
	err := s.Scan(&st.ID, &st.TripID, &st.DayID, &st.Name, &st.Type, &st.Address, &st.Latitude,
		&st.Longitude, &st.Order, &st.ArrivalTime, &st.DepartureTime, &st.Photos, &st.Notes,
		&st.CreatedAt, &st.UpdatedAt)
	return st, err
}
