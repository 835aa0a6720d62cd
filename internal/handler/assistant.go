package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/query"
)

// maxToolArgsBytes bounds the JSON arguments of a tool call.
const maxToolArgsBytes = 64 << 10

// ListResources handles GET /assistant/resources.
func (s *Server) ListResources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ResourceList{Resources: s.query.Resources()})
}

// ReadResource handles GET /assistant/resources/read?uri=.
func (s *Server) ReadResource(w http.ResponseWriter, r *http.Request) {
	var uri *string
	if err := queryParam(r.URL.Query(), "uri", true, &uri); err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	if uri == nil || *uri == "" {
		s.writeQueryError(w, r, fmt.Errorf("%w: uri is required", domain.ErrValidation))
		return
	}

	contents, err := s.query.ReadResource(r.Context(), *uri)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResourceContents{URI: *uri, Contents: contents})
}

// ListTools handles GET /assistant/tools.
func (s *Server) ListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ToolList{Tools: s.query.Tools()})
}

// CallTool handles POST /assistant/tools/{name}.
// The body is the tool's JSON arguments object; an empty body means {}.
func (s *Server) CallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	args, err := io.ReadAll(io.LimitReader(r.Body, maxToolArgsBytes))
	if err != nil {
		s.writeQueryError(w, r, fmt.Errorf("%w: reading arguments: %v", domain.ErrValidation, err))
		return
	}
	if len(args) == 0 {
		args = []byte("{}")
	}

	result, err := s.query.CallTool(r.Context(), name, json.RawMessage(args))
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToolResult{Tool: name, Result: result})
}

// writeQueryError renders assistant failures with the query package's
// error envelope.
func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "assistant request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, query.WrapError(err))
}
