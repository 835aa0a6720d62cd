package handler

import (
	"fmt"
	"net/http"

	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// ExportTrip handles GET /trips/{id}/export.
// The response is the trip file as a download named trip_<name>_<date>.json.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	params, err := bindExportParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	agg, err := s.exports.ExportTrip(r.Context(), id, params.exportOptions())
	if err != nil {
		s.writeExportError(w, r, err)
		return
	}
	s.writeFile(w, r, tripfile.FileName(agg.Trip.Name, s.now()), agg)
}

// ExportTrips handles GET /export.
// With ?ids= it exports those trips in the order given, otherwise every trip
// the caller owns. The body is always an array.
func (s *Server) ExportTrips(w http.ResponseWriter, r *http.Request) {
	params, err := bindExportParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var aggs []tripfile.Aggregate
	if params.Ids != nil && len(*params.Ids) > 0 {
		aggs, err = s.exports.ExportTrips(r.Context(), *params.Ids, params.exportOptions())
	} else {
		aggs, err = s.exports.ExportAll(r.Context(), params.exportOptions())
	}
	if err != nil {
		s.writeExportError(w, r, err)
		return
	}
	if aggs == nil {
		aggs = []tripfile.Aggregate{}
	}
	s.writeFile(w, r, tripfile.MultiFileName(s.now()), aggs)
}

// writeExportError is writeError plus the classified failure, so the client
// can show the user message and whether retrying makes sense.
func (s *Server) writeExportError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "export failed", "path", r.URL.Path, "error", err)
	}
	body := errorBody(err)
	c := s.exports.Classify(err)
	c.TechnicalMessage = body.Error.Message
	body.Classification = &c
	writeJSON(w, status, body)
}

// writeFile sends v as a trip file attachment.
func (s *Server) writeFile(w http.ResponseWriter, r *http.Request, name string, v any) {
	data, err := tripfile.Marshal(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
