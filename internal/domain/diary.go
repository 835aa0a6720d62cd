package domain

import (
	"time"

	"github.com/google/uuid"
)

// DiaryEntry is a free-text travel journal entry.
type DiaryEntry struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	DayID     *uuid.UUID
	Date      *time.Time
	Title     string
	Content   string
	Mood      string
	Location  string
	Photos    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
