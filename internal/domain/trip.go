// Package domain contains the core data types for the Andes Trip Manager backend.
// This package has no dependencies on other internal packages and is imported
// by every layer (repo, service, handler, tripfile).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip statuses used by the planning UI. The set is open: imported files may
// carry other values and they are stored verbatim.
const (
	TripStatusPlanned    = "planejada"
	TripStatusInProgress = "em_andamento"
	TripStatusFinished   = "finalizada"
	TripStatusCancelled  = "cancelada"
)

// Trip represents one planned or completed trip.
// A trip is the aggregate root; every other record belongs to exactly one trip.
// OwnerID is the subject of the access token that created the trip.
type Trip struct {
	ID            uuid.UUID
	OwnerID       string
	Name          string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	Status        string
	Origin        string
	Destination   string
	TotalDistance *float64 // km; nil when never computed
	TotalCost     *float64
	NumberOfDays  *int
	Photos        []string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DurationDays returns the trip length in whole days, rounding partial days up.
// Returns 0 when EndDate is not after StartDate.
func (t Trip) DurationDays() int {
	return DurationDays(t.StartDate, t.EndDate)
}

// DurationDays returns ceil((end - start) / 24h), never negative.
func DurationDays(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
