package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// MaintenanceRepo persists vehicle maintenance done during a trip.
type MaintenanceRepo interface {
	Create(ctx context.Context, m domain.MaintenanceRecord) (domain.MaintenanceRecord, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.MaintenanceRecord, error)
}

type pgMaintenanceRepo struct {
	db db
}

func NewMaintenanceRepo(db db) MaintenanceRepo {
	return &pgMaintenanceRepo{db: db}
}

const maintenanceColumns = `id, trip_id, type, description, date, odometer, cost, location, notes, created_at, updated_at`

func (r *pgMaintenanceRepo) Create(ctx context.Context, m domain.MaintenanceRecord) (domain.MaintenanceRecord, error) {
	const q = `
		INSERT INTO maintenance_records (trip_id, type, description, date, odometer, cost, location, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + maintenanceColumns

	row := r.db.QueryRow(ctx, q,
		m.TripID, m.Type, m.Description, m.Date, m.Odometer, m.Cost, m.Location, m.Notes)
	result, err := scanOne(row, scanMaintenance)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("repo.MaintenanceRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgMaintenanceRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.MaintenanceRecord, error) {
	q := `SELECT ` + maintenanceColumns + ` FROM maintenance_records WHERE trip_id = $1 ORDER BY date NULLS LAST, created_at`

	rows, err := r.db.Query(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.MaintenanceRepo.ListByTrip: %w", err)
	}
	out, err := collect(rows, scanMaintenance)
	if err != nil {
		return nil, fmt.Errorf("repo.MaintenanceRepo.ListByTrip: %w", err)
	}
	return out, nil
}

func scanMaintenance(s scanner) (domain.MaintenanceRecord, error) {
	var m domain.MaintenanceRecord
	err := s.Scan(&m.ID, &m.TripID, &m.Type, &m.Description, &m.Date, &m.Odometer, &m.Cost,
		&m.Location, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
