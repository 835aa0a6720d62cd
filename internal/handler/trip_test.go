package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/handler"
)

func tripRouter(svc handler.TripServicer) http.Handler {
	return newRouter(handler.Deps{Trips: svc}, handler.RouterConfig{})
}

// --- POST /trips ---

func TestCreateTrip_returns201WithCreatedTrip(t *testing.T) {
	want := tripFixture()
	svc := &mockTripServicer{
		create: func(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
			assert.Equal(t, testUser.ID, userFrom(t, ctx).ID)
			assert.Equal(t, "Carretera Austral", trip.Name)
			assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), trip.StartDate)
			assert.Equal(t, "Puerto Montt", trip.Origin)
			assert.Empty(t, trip.Status)
			return want, nil
		},
	}

	rec := do(t, tripRouter(svc), http.MethodPost, "/trips", map[string]any{
		"name":      "Carretera Austral",
		"startDate": "2025-01-10",
		"endDate":   "2025-01-24",
		"origin":    "Puerto Montt",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	got := decode[handler.Trip](t, rec)
	assert.Equal(t, want.ID, got.Id)
	assert.Equal(t, "planejada", got.Status)
	assert.Equal(t, []string{}, got.Photos)
}

func TestCreateTrip_validationError_returns422(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: name is required", domain.ErrValidation)
		},
	}

	rec := do(t, tripRouter(svc), http.MethodPost, "/trips", map[string]any{
		"name": "", "startDate": "2025-01-10", "endDate": "2025-01-24",
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "name is required", body.Error.Message)
}

func TestCreateTrip_malformedBody_returns422(t *testing.T) {
	rec := do(t, tripRouter(&mockTripServicer{}), http.MethodPost, "/trips", "{not json")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decode[handler.ErrorResponse](t, rec).Error.Code)
}

func TestCreateTrip_serviceError_returns500WithoutDetails(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, errors.New("pq: connection reset by peer")
		},
	}

	rec := do(t, tripRouter(svc), http.MethodPost, "/trips", map[string]any{
		"name": "x", "startDate": "2025-01-10", "endDate": "2025-01-24",
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "internal", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "connection reset")
}

// --- GET /trips ---

func TestListTrips_returnsPageAndPagination(t *testing.T) {
	trip := tripFixture()
	svc := &mockTripServicer{
		list: func(_ context.Context, p domain.PaginationParams) (domain.Page[domain.Trip], error) {
			assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 100}, p)
			return domain.Page[domain.Trip]{Items: []domain.Trip{trip}, Total: 101, Params: p}, nil
		},
	}

	rec := do(t, tripRouter(svc), http.MethodGet, "/trips?page=2&limit=500", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.TripList](t, rec)
	require.Len(t, got.Data, 1)
	assert.Equal(t, trip.ID, got.Data[0].Id)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 100, Total: 101}, got.Pagination)
}

func TestListTrips_badPage_returns422(t *testing.T) {
	rec := do(t, tripRouter(&mockTripServicer{}), http.MethodGet, "/trips?page=abc", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[handler.ErrorResponse](t, rec).Error.Message, "page")
}

// --- GET /trips/{id} ---

func TestGetTrip_statusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("service.TripService.Get: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{"foreign trip", fmt.Errorf("service.TripService.Get: %w", domain.ErrForbidden), http.StatusForbidden, "forbidden"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTripServicer{
				get: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) { return domain.Trip{}, tc.err },
			}

			rec := do(t, tripRouter(svc), http.MethodGet, "/trips/"+uuid.NewString(), nil)

			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decode[handler.ErrorResponse](t, rec).Error.Code)
		})
	}
}

func TestGetTrip_returnsTrip(t *testing.T) {
	trip := tripFixture()
	svc := &mockTripServicer{
		get: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, trip.ID, id)
			return trip, nil
		},
	}

	rec := do(t, tripRouter(svc), http.MethodGet, "/trips/"+trip.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.Trip](t, rec)
	assert.Equal(t, trip.Name, got.Name)
	assert.Equal(t, "2025-01-24", got.EndDate.Time.Format("2006-01-02"))
}

func TestGetTrip_invalidID_returns422(t *testing.T) {
	rec := do(t, tripRouter(&mockTripServicer{}), http.MethodGet, "/trips/not-a-uuid", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// --- DELETE /trips/{id} ---

func TestDeleteTrip_returns204(t *testing.T) {
	id := uuid.New()
	var deleted uuid.UUID
	svc := &mockTripServicer{
		delete: func(_ context.Context, got uuid.UUID) error {
			deleted = got
			return nil
		},
	}

	rec := do(t, tripRouter(svc), http.MethodDelete, "/trips/"+id.String(), nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, deleted)
}

func TestDeleteTrip_notFound_returns404(t *testing.T) {
	svc := &mockTripServicer{
		delete: func(_ context.Context, _ uuid.UUID) error { return domain.ErrNotFound },
	}

	rec := do(t, tripRouter(svc), http.MethodDelete, "/trips/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
