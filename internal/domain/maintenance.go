package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceRecord logs a vehicle service performed during a trip.
type MaintenanceRecord struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Type        string
	Description string
	Date        *time.Time
	Odometer    *float64 // km
	Cost        *float64
	Location    string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
