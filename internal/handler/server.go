// Package handler implements the HTTP handlers for the trip manager API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, export.go, ...) but share the same Server struct
// so they can access its dependencies. NewRouter mounts them on chi.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/query"
	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// TripServicer defines the trip operations the trip handlers depend on.
// Interfaces live here, in the consumer package, so handler tests can inject
// mocks without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Trip], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExportServicer builds trip files for the caller.
type ExportServicer interface {
	ExportTrip(ctx context.Context, id uuid.UUID, opts tripfile.ExportOptions) (tripfile.Aggregate, error)
	ExportTrips(ctx context.Context, ids []uuid.UUID, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error)
	ExportAll(ctx context.Context, opts tripfile.ExportOptions) ([]tripfile.Aggregate, error)
	Classify(err error) retry.Classification
}

// ImportServicer writes trip files into the caller's account.
type ImportServicer interface {
	ImportFile(ctx context.Context, data []byte, opts tripfile.ImportOptions) (tripfile.ImportResult, tripfile.ValidationResult, error)
	RestoreBackup(ctx context.Context, r io.Reader) (tripfile.ImportResult, error)
}

// QueryServicer is the read-only assistant surface.
type QueryServicer interface {
	Resources() []query.Resource
	ReadResource(ctx context.Context, uri string) (any, error)
	Tools() []query.ToolDefinition
	CallTool(ctx context.Context, name string, args json.RawMessage) (any, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the Server's collaborators. Any of them may be nil in tests that
// do not reach the corresponding routes.
type Deps struct {
	Trips       TripServicer
	Exports     ExportServicer
	Imports     ImportServicer
	Query       QueryServicer
	Diagnostics retry.Log
	DB          Pinger
	Logger      *slog.Logger
	// OpenAPI is served verbatim at /openapi.yaml.
	OpenAPI []byte
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips       TripServicer
	exports     ExportServicer
	imports     ImportServicer
	query       QueryServicer
	diagnostics retry.Log
	db          Pinger
	logger      *slog.Logger
	openAPI     []byte
	now         func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	diagnostics := d.Diagnostics
	if diagnostics == nil {
		diagnostics = retry.NopLog{}
	}
	return &Server{
		trips:       d.Trips,
		exports:     d.Exports,
		imports:     d.Imports,
		query:       d.Query,
		diagnostics: diagnostics,
		db:          d.DB,
		logger:      logger,
		openAPI:     d.OpenAPI,
		now:         time.Now,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Deps{})
}
