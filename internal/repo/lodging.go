package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// LodgingRepo persists where the travellers slept.
type LodgingRepo interface {
	Create(ctx context.Context, l domain.Lodging) (domain.Lodging, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Lodging, error)
}

type pgLodgingRepo struct {
	db db
}

func NewLodgingRepo(db db) LodgingRepo {
	return &pgLodgingRepo{db: db}
}

const lodgingColumns = `id, trip_id, day_id, name, type, address, check_in, check_out, price, photos, notes,
		created_at, updated_at`

func (r *pgLodgingRepo) Create(ctx context.Context, l domain.Lodging) (domain.Lodging, error) {
	const q = `
		INSERT INTO lodgings (trip_id, day_id, name, type, address, check_in, check_out, price, photos, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + lodgingColumns

	row := r.db.QueryRow(ctx, q,
		l.TripID, l.DayID, l.Name, l.Type, l.Address, l.CheckIn, l.CheckOut, l.Price, photos(l.Photos), l.Notes)
	result, err := scanOne(row, scanLodging)
	if err != nil {
		return domain.Lodging{}, fmt.Errorf("repo.LodgingRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgLodgingRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Lodging, error) {
	q := `SELECT ` + lodgingColumns + ` FROM lodgings WHERE trip_id = $1 ORDER BY check_in NULLS LAST, created_at`

	rows, err := r.db.Query(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.LodgingRepo.ListByTrip: %w", err)
	}
	out, err := collect(rows, scanLodging)
	if err != nil {
		return nil, fmt.Errorf("repo.LodgingRepo.ListByTrip: %w", err)
	}
	return out, nil
}

func scanLodging(s scanner) (domain.Lodging, error) {
	var l domain.Lodging
	err := s.Scan(&l.ID, &l.TripID, &l.DayID, &l.Name, &l.Type, &l.Address, &l.CheckIn, &l.CheckOut,
		&l.Price, &l.Photos, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}
