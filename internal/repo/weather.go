package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// WeatherRepo persists weather snapshots taken along the route.
type WeatherRepo interface {
	Create(ctx context.Context, w domain.WeatherSnapshot) (domain.WeatherSnapshot, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.WeatherSnapshot, error)
}

type pgWeatherRepo struct {
	db db
}

func NewWeatherRepo(db db) WeatherRepo {
	return &pgWeatherRepo{db: db}
}

const weatherColumns = `id, trip_id, day_id, location, date, temperature_c, condition, humidity, wind_speed_kmh, created_at`

func (r *pgWeatherRepo) Create(ctx context.Context, w domain.WeatherSnapshot) (domain.WeatherSnapshot, error) {
	const q = `
		INSERT INTO weather_snapshots (trip_id, day_id, location, date, temperature_c, condition, humidity, wind_speed_kmh)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + weatherColumns

	row := r.db.QueryRow(ctx, q,
		w.TripID, w.DayID, w.Location, w.Date, w.TemperatureC, w.Condition, w.Humidity, w.WindSpeedKmh)
	result, err := scanOne(row, scanWeather)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("repo.WeatherRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgWeatherRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.WeatherSnapshot, error) {
	q := `SELECT ` + weatherColumns + ` FROM weather_snapshots WHERE trip_id = $1 ORDER BY date NULLS LAST, created_at`

	rows, err := r.db.Query(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.WeatherRepo.ListByTrip: %w", err)
	}
	out, err := collect(rows, scanWeather)
	if err != nil {
		return nil, fmt.Errorf("repo.WeatherRepo.ListByTrip: %w", err)
	}
	return out, nil
}

func scanWeather(s scanner) (domain.WeatherSnapshot, error) {
	var w domain.WeatherSnapshot
	err := s.Scan(&w.ID, &w.TripID, &w.DayID, &w.Location, &w.Date, &w.TemperatureC, &w.Condition,
		&w.Humidity, &w.WindSpeedKmh, &w.CreatedAt)
	return w, err
}
