package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lodging is a place the travellers sleep at.
type Lodging struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	DayID     *uuid.UUID
	Name      string
	Type      string // hotel, hostel, camping, ...
	Address   string
	CheckIn   *time.Time
	CheckOut  *time.Time
	Price     *float64
	Photos    []string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
