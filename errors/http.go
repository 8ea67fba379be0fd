package errors

import (
	stderrors "errors"
	"net/http"
)

// Reasons are the machine-readable codes returned to HTTP clients.
const (
	ReasonValidation = "validation_error"
	ReasonNotFound   = "not_found"
	ReasonAuth       = "unauthorized"
	ReasonStore      = "store_error"
)

// MapToHTTPStatus translates the taxonomy into a status code and a reason.
// Anything outside the taxonomy is treated as a store failure.
func MapToHTTPStatus(err error) (int, string) {
	switch {
	case stderrors.Is(err, ErrValidation):
		return http.StatusBadRequest, ReasonValidation
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound, ReasonNotFound
	case stderrors.Is(err, ErrAuth):
		return http.StatusUnauthorized, ReasonAuth
	default:
		return http.StatusInternalServerError, ReasonStore
	}
}
