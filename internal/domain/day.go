package domain

import (
	"time"

	"github.com/google/uuid"
)

// Day is one day of a trip's itinerary.
// DayNumber is 1-based; Date is the calendar date of that day.
type Day struct {
	ID              uuid.UUID
	TripID          uuid.UUID
	DayNumber       int
	Date            time.Time
	Title           string
	Description     string
	PlannedDistance *float64 // km
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
