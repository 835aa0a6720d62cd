package domain

import (
	"time"

	"github.com/google/uuid"
)

// WeatherSnapshot is a recorded weather observation for a place on the route.
type WeatherSnapshot struct {
	ID           uuid.UUID
	TripID       uuid.UUID
	DayID        *uuid.UUID
	Location     string
	Date         *time.Time
	TemperatureC *float64
	Condition    string
	Humidity     *float64
	WindSpeedKmh *float64
	CreatedAt    time.Time
}
