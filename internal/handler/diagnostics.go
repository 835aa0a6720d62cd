package handler

import (
	"fmt"
	"net/http"

	"github.com/andes-trip-manager/backend/internal/retry"
	"github.com/andes-trip-manager/backend/internal/validation"
)

var filterValidator = validation.New()

// ListOperations handles GET /diagnostics/operations.
// Entries are newest first.
func (s *Server) ListOperations(w http.ResponseWriter, r *http.Request) {
	params, err := bindOperationsParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var f retry.Filter
	if params.Operation != nil {
		f.Operation = *params.Operation
	}
	if params.Status != nil {
		f.Status = retry.Status(*params.Status)
	}
	if params.Limit != nil {
		f.Limit = *params.Limit
	}
	if err := filterValidator.Validate(f); err != nil {
		s.writeError(w, r, err)
		return
	}

	entries := s.diagnostics.Query(f)
	if entries == nil {
		entries = []retry.Entry{}
	}
	writeJSON(w, http.StatusOK, OperationList{Data: entries})
}

// ExportOperations handles GET /diagnostics/operations/export.
func (s *Server) ExportOperations(w http.ResponseWriter, r *http.Request) {
	data, err := s.diagnostics.Export()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := "operations_" + s.now().UTC().Format("2006-01-02") + ".json"
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ClearOperations handles DELETE /diagnostics/operations.
func (s *Server) ClearOperations(w http.ResponseWriter, _ *http.Request) {
	s.diagnostics.Clear()
	w.WriteHeader(http.StatusNoContent)
}
