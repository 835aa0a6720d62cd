package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist (or is not owned by the caller).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidData is returned by the importer when an aggregate does not pass
// the trip file validator. No write has happened when it is returned.
var ErrInvalidData = errors.New("invalid data")

// ErrUnauthenticated is returned when an operation requires a caller identity
// and none is present in the context. Handlers map it to HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden is returned when the caller is known but may not access the
// requested data. Handlers map it to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrorCode maps err onto the stable error code reported to API clients.
// Errors that wrap none of the sentinels are "internal".
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidData):
		return "validation_error"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "internal"
	}
}
