package handler

import (
	"encoding/json"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/andes-trip-manager/backend/internal/domain"
)

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body must be a trip object"))
		return
	}

	created, err := s.trips.Create(r.Context(), requestToTrip(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params, err := bindListTripsParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.trips.List(r.Context(), domain.NewPaginationParams(params.Page, params.Limit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := make([]Trip, len(page.Items))
	for i, t := range page.Items {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data: data,
		Pagination: Pagination{
			Page:  page.Params.Page,
			Limit: page.Params.Limit,
			Total: int(page.Total),
		},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	trip, err := s.trips.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a CreateTripRequest body into a domain.Trip.
// Missing optional fields stay empty; the service fills the status default.
func requestToTrip(body CreateTripRequest) domain.Trip {
	t := domain.Trip{
		Name:      body.Name,
		StartDate: body.StartDate.Time,
		EndDate:   body.EndDate.Time,
		Photos:    body.Photos,
	}
	if body.Description != nil {
		t.Description = *body.Description
	}
	if body.Status != nil {
		t.Status = *body.Status
	}
	if body.Origin != nil {
		t.Origin = *body.Origin
	}
	if body.Destination != nil {
		t.Destination = *body.Destination
	}
	if body.Notes != nil {
		t.Notes = *body.Notes
	}
	return t
}

// tripToResponse converts a domain.Trip into the wire Trip.
func tripToResponse(t domain.Trip) Trip {
	photos := t.Photos
	if photos == nil {
		photos = []string{}
	}
	return Trip{
		Id:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		StartDate:     openapi_types.Date{Time: t.StartDate},
		EndDate:       openapi_types.Date{Time: t.EndDate},
		Status:        t.Status,
		Origin:        t.Origin,
		Destination:   t.Destination,
		TotalDistance: t.TotalDistance,
		TotalCost:     t.TotalCost,
		NumberOfDays:  t.NumberOfDays,
		Photos:        photos,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
