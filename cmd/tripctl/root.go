package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andes-trip-manager/backend/internal/app"
	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/config"
	"github.com/andes-trip-manager/backend/internal/service"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

type exporter interface {
	ExportTrips(ctx context.Context, ids []uuid.UUID, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error)
	ExportAll(ctx context.Context, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error)
}

type importer interface {
	ImportFile(ctx context.Context, data []byte, opts tripfile.ImportOptions) (tripfile.ImportResult, tripfile.ValidationResult, error)
	RestoreBackup(ctx context.Context, r io.Reader) (tripfile.ImportResult, error)
}

// backend is what the database-backed commands run against.
type backend struct {
	exports exporter
	imports importer
	close   func()
}

// cli carries the commands' collaborators so tests can replace them.
type cli struct {
	connect  func(ctx context.Context) (backend, error)
	now      func() time.Time
	getenv   func(string) string
	maxBytes int64
}

func defaultCLI() *cli {
	return &cli{connect: connect, now: time.Now, getenv: os.Getenv, maxBytes: service.DefaultMaxImportBytes}
}

var errFileTooLarge = errors.New("file is too large to import")

// readTripFile reads path, refusing files over the import size limit without
// loading them whole.
func (c *cli) readTripFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", path, errFileTooLarge, c.maxBytes)
	}
	return data, nil
}

// connect loads the CLI configuration and builds the services over a live
// database.
func connect(ctx context.Context) (backend, error) {
	if err := config.LoadFile(".env"); err != nil {
		return backend{}, err
	}
	cfg, err := config.LoadCLI()
	if err != nil {
		return backend{}, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return backend{}, err
	}
	if err := a.Pool.Ping(ctx); err != nil {
		a.Close(logger)
		return backend{}, fmt.Errorf("connect to database: %w", err)
	}
	return backend{exports: a.Exports, imports: a.Imports, close: func() { a.Close(logger) }}, nil
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "tripctl",
		Short:        "Validate, export, import and restore Andes trip files",
		SilenceUsage: true,
	}
	root.AddCommand(
		newValidateCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newRestoreCmd(c),
		newTokenCmd(c),
	)
	return root
}

// ownerContext is ctx acting as the trip owner named by --owner.
func ownerContext(ctx context.Context, owner string) context.Context {
	return auth.WithUser(ctx, auth.User{ID: owner})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
