package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// CostRepo persists expenses.
type CostRepo interface {
	Create(ctx context.Context, c domain.Cost) (domain.Cost, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Cost, error)
}

type pgCostRepo struct {
	db db
}

func NewCostRepo(db db) CostRepo {
	return &pgCostRepo{db: db}
}

const costColumns = `id, trip_id, day_id, category, description, amount, currency, date, payment_method, notes,
		created_at, updated_at`

func (r *pgCostRepo) Create(ctx context.Context, c domain.Cost) (domain.Cost, error) {
	const q = `
		INSERT INTO costs (trip_id, day_id, category, description, amount, currency, date, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + costColumns

	row := r.db.QueryRow(ctx, q,
		c.TripID, c.DayID, c.Category, c.Description, c.Amount, c.Currency, c.Date, c.PaymentMethod, c.Notes)
	result, err := scanOne(row, scanCost)
	if err != nil {
		return domain.Cost{}, fmt.Errorf("repo.CostRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgCostRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Cost, error) {
	q := `SELECT ` + costColumns + ` FROM costs WHERE trip_id = $1 ORDER BY date NULLS LAST, created_at`

	rows, err := r.db.Query(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.CostRepo.ListByTrip: %w", err)
	}
	out, err := collect(rows, scanCost)
	if err != nil {
		return nil, fmt.Errorf("repo.CostRepo.ListByTrip: %w", err)
	}
	return out, nil
}

func scanCost(s scanner) (domain.Cost, error) {
	var c domain.Cost
	err := s.Scan(&c.ID, &c.TripID, &c.DayID, &c.Category, &c.Description, &c.Amount, &c.Currency,
		&c.Date, &c.PaymentMethod, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
