// Package query is the read-only surface offered to external assistants: a
// fixed set of URI-addressed resources and named tools over the caller's own
// trips. Every tool takes a small JSON argument object and returns a JSON
// document; nothing here writes.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/service"
	"github.com/andes-trip-manager/backend/internal/tripfile"
	"github.com/andes-trip-manager/backend/internal/validation"
)

var callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "andes_query_calls_total",
	Help: "Assistant resource reads and tool calls by name and outcome.",
}, []string{"name", "outcome"})

// Resource describes one family of readable URIs.
type Resource struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// Service answers resource reads and tool calls for the authenticated caller.
type Service struct {
	repos     service.Repos
	collector *service.Collector
	validate  *validation.Validator
	tools     map[string]tool
	now       func() time.Time
}

func New(repos service.Repos, collector *service.Collector) *Service {
	s := &Service{
		repos:     repos,
		collector: collector,
		validate:  validation.New(),
		now:       time.Now,
	}
	s.tools = s.registry()
	return s
}

var resources = []Resource{
	{"viagens://{usuarioId}", "viagens", "Every trip of a user, most recent first.", "application/json"},
	{"viagem://{viagemId}", "viagem", "One trip record.", "application/json"},
	{"paradas://{viagemId}", "paradas", "The stops of a trip in visiting order.", "application/json"},
	{"custos://{viagemId}", "custos", "The costs of a trip.", "application/json"},
	{"dias://{viagemId}", "dias", "The days of a trip by day number.", "application/json"},
}

// Resources lists the readable URI families.
func (s *Service) Resources() []Resource {
	out := make([]Resource, len(resources))
	copy(out, resources)
	return out
}

// ReadResource resolves uri to a JSON-encodable value.
// Returns domain.ErrNotFound for an unknown scheme or trip,
// domain.ErrValidation for a malformed id and domain.ErrForbidden for
// someone else's data.
func (s *Service) ReadResource(ctx context.Context, uri string) (any, error) {
	scheme, id, ok := strings.Cut(uri, "://")
	if !ok || id == "" {
		return nil, fmt.Errorf("query.Service.ReadResource: %w: malformed uri %q", domain.ErrValidation, uri)
	}

	out, err := s.readResource(ctx, scheme, id)
	if err != nil {
		callsTotal.WithLabelValues(resourceLabel(scheme), "error").Inc()
		return nil, fmt.Errorf("query.Service.ReadResource: %w", err)
	}
	callsTotal.WithLabelValues(resourceLabel(scheme), "ok").Inc()
	return out, nil
}

// resourceLabel keeps caller-supplied schemes out of metric labels.
func resourceLabel(scheme string) string {
	for _, r := range resources {
		if strings.HasPrefix(r.URITemplate, scheme+"://") {
			return scheme
		}
	}
	return "unknown"
}

func (s *Service) readResource(ctx context.Context, scheme, id string) (any, error) {
	if scheme == "viagens" {
		return s.listTrips(ctx, id, "")
	}

	var opts tripfile.ExportOptions
	switch scheme {
	case "viagem":
	case "paradas":
		opts.IncludeStops = true
	case "custos":
		opts.IncludeCosts = true
	case "dias":
		opts.IncludeDays = true
	default:
		return nil, fmt.Errorf("%w: unknown resource %q", domain.ErrNotFound, scheme)
	}

	agg, err := s.aggregate(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case "paradas":
		return agg.Stops, nil
	case "custos":
		return agg.Costs, nil
	case "dias":
		return agg.Days, nil
	}
	return agg.Trip, nil
}

// ErrorBody is the JSON shape every query failure is reported in.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WrapError renders err as an ErrorBody. Errors outside the domain sentinels
// are reported as internal without their text.
func WrapError(err error) ErrorBody {
	code := domain.ErrorCode(err)
	msg := err.Error()
	if code == "internal" {
		msg = "internal error"
	}
	return ErrorBody{Error: ErrorDetail{Code: code, Message: msg}}
}

// MarshalError is WrapError encoded as JSON.
func MarshalError(err error) []byte {
	b, _ := json.Marshal(WrapError(err))
	return b
}

// ownTrip loads a trip by its string id and checks the caller owns it.
func (s *Service) ownTrip(ctx context.Context, rawID string) (domain.Trip, auth.User, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return domain.Trip{}, auth.User{}, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Trip{}, auth.User{}, fmt.Errorf("%w: viagemId %q is not a valid id", domain.ErrValidation, rawID)
	}
	trip, err := s.repos.Trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, auth.User{}, err
	}
	if trip.OwnerID != user.ID {
		return domain.Trip{}, auth.User{}, domain.ErrForbidden
	}
	return trip, user, nil
}

// ownUser checks that usuarioId names the caller.
func ownUser(ctx context.Context, usuarioID string) (auth.User, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return auth.User{}, err
	}
	if usuarioID != user.ID {
		return auth.User{}, domain.ErrForbidden
	}
	return user, nil
}

// aggregate reads one owned trip with the selected collections in file form.
func (s *Service) aggregate(ctx context.Context, rawID string, opts tripfile.ExportOptions) (tripfile.Aggregate, error) {
	trip, user, err := s.ownTrip(ctx, rawID)
	if err != nil {
		return tripfile.Aggregate{}, err
	}
	raw, err := s.collector.Collect(ctx, trip, opts)
	if err != nil {
		return tripfile.Aggregate{}, err
	}
	opts.IncludePhotos = true
	return service.Transform(raw, opts, user, s.now(), tripfile.Locale{}), nil
}
