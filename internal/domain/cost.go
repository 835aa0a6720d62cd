package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cost is a single expense booked against a trip.
// Amount is expressed in Currency; no conversion is ever applied.
type Cost struct {
	ID            uuid.UUID
	TripID        uuid.UUID
	DayID         *uuid.UUID
	Category      string
	Description   string
	Amount        float64
	Currency      string
	Date          *time.Time
	PaymentMethod string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
