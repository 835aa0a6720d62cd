package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// DiaryRepo persists travel diary entries.
type DiaryRepo interface {
	Create(ctx context.Context, e domain.DiaryEntry) (domain.DiaryEntry, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.DiaryEntry, error)
}

type pgDiaryRepo struct {
	db db
}

func NewDiaryRepo(db db) DiaryRepo {
	return &pgDiaryRepo{db: db}
}

const diaryColumns = `id, trip_id, day_id, date, title, content, mood, location, photos, created_at, updated_at`

func (r *pgDiaryRepo) Create(ctx context.Context, e domain.DiaryEntry) (domain.DiaryEntry, error) {
	const q = `
		INSERT INTO diary_entries (trip_id, day_id, date, title, content, mood, location, photos)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + diaryColumns

	row := r.db.QueryRow(ctx, q,
		e.TripID, e.DayID, e.Date, e.Title, e.Content, e.Mood, e.Location, photos(e.Photos))
	result, err := scanOne(row, scanDiary)
	if err != nil {
		return domain.DiaryEntry{}, fmt.Errorf("repo.DiaryRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgDiaryRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.DiaryEntry, error) {
	q := `SELECT ` + diaryColumns + ` FROM diary_entries WHERE trip_id = $1 ORDER BY date NULLS LAST, created_at`

	rows, err := r.db.Query(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.DiaryRepo.ListByTrip: %w", err)
	}
	out, err := collect(rows, scanDiary)
	if err != nil {
		return nil, fmt.Errorf("repo.DiaryRepo.ListByTrip: %w", err)
	}
	return out, nil
}

func scanDiary(s scanner) (domain.DiaryEntry, error) {
	var e domain.DiaryEntry
	err := s.Scan(&e.ID, &e.TripID, &e.DayID, &e.Date, &e.Title, &e.Content, &e.Mood, &e.Location,
		&e.Photos, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
