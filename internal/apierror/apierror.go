// Package apierror provides the JSON error envelopes of the REST API and the
// mapping from service error kinds to HTTP status codes. Clients never see
// store errors or stack traces; anything unclassified becomes a generic 500.
package apierror

import (
	"net/http"

	"github.com/juju/errors"
)

// APIError is the canonical error envelope for all 4xx/5xx JSON responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps per-field validation failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Status maps a service error to the HTTP status it should produce.
// The second result is false for errors that are not a known client-facing
// kind; those must be logged and answered with a generic 500.
func Status(err error) (int, bool) {
	switch {
	case errors.Is(err, errors.NotFound):
		return http.StatusNotFound, true
	case errors.Is(err, errors.NotValid), errors.Is(err, errors.BadRequest):
		return http.StatusBadRequest, true
	case errors.Is(err, errors.Forbidden), errors.Is(err, errors.AlreadyExists):
		return http.StatusConflict, true
	case errors.Is(err, errors.Unauthorized):
		return http.StatusUnauthorized, true
	}
	return http.StatusInternalServerError, false
}
