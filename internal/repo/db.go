// Package repo contains all database access for the trip manager. Each record
// type has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, pgx.Tx
// and pgxmock pools. Integration tests pass a transaction that is rolled back
// after each test; unit tests pass a pgxmock pool.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanOne scans a single row, mapping pgx.ErrNoRows to domain.ErrNotFound.
func scanOne[T any](s scanner, scan func(scanner) (T, error)) (T, error) {
	v, err := scan(s)
	if errors.Is(err, pgx.ErrNoRows) {
		var zero T
		return zero, domain.ErrNotFound
	}
	return v, err
}

// collect drains rows with scan. The result is never nil.
func collect[T any](rows pgx.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// photos keeps NOT NULL text[] columns from receiving NULL.
func photos(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}
