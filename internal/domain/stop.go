package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stop represents a single location visited during a trip.
// DayID is nil when the stop is not attached to an itinerary day.
// Latitude and Longitude are nil when the stop was entered without coordinates.
type Stop struct {
	ID            uuid.UUID
	TripID        uuid.UUID
	DayID         *uuid.UUID
	Name          string
	Type          string // e.g. "combustivel", "alimentacao", "atracao"
	Address       string
	Latitude      *float64
	Longitude     *float64
	Order         int
	ArrivalTime   *time.Time
	DepartureTime *time.Time
	Photos        []string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasCoordinates reports whether both coordinates are known.
func (s Stop) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}
