package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/tripfile"
)

// ValidateImport handles POST /import/validate.
// The body is checked but nothing is written; an invalid file is still a 200
// whose result lists the errors.
func (s *Server) ValidateImport(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripfile.ValidateJSON(data))
}

// ImportTrips handles POST /import.
// A file the validator rejects is a 422 carrying the validation result. A
// file that validated is a 200 even when some records failed; the result
// reports them.
func (s *Server) ImportTrips(w http.ResponseWriter, r *http.Request) {
	params, err := bindImportParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, vr, err := s.imports.ImportFile(r.Context(), data, params.importOptions())
	if err != nil {
		body := errorBody(err)
		if errors.Is(err, domain.ErrInvalidData) && !vr.Valid && len(vr.Errors) > 0 {
			body.Validation = &vr
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "import failed", "error", err)
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RestoreBackup handles POST /restore.
func (s *Server) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.imports.RestoreBackup(r.Context(), bytes.NewReader(data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// readBody reads the whole request body. Oversized bodies surface as the
// *http.MaxBytesError set by the body size middleware.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrValidation, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: request body is empty", domain.ErrValidation)
	}
	return data, nil
}
