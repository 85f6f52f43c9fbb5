// Package apierror provides standardized error response structures for the API
// and the domain error taxonomy shared by all services. All errors returned to
// clients go through this package to ensure consistency and to prevent leaking
// internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}

// Domain sentinels. Services return these (optionally wrapped); handlers map
// them to HTTP statuses via Status. All of them are recoverable, user-facing
// conditions — none is fatal to the process.
var (
	ErrAccessDenied        = errors.New("access denied")
	ErrInvalidCredentials  = errors.New("invalid credentials or role")
	ErrPendingApproval     = errors.New("account is pending approval")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrCapacityExceeded    = errors.New("user limit for this manager has been reached")
	ErrOrderNotFound       = errors.New("order not found")
	ErrAlreadyDecided      = errors.New("order has already been decided")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrNoSupplierAvailable = errors.New("no supplier available for this product")
	ErrNotFound            = errors.New("not found")
	ErrReferenced          = errors.New("record is referenced by existing orders or sales")
)

// Status returns the HTTP status code a domain error maps to.
// Unrecognized errors map to 500 so internals are never exposed.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrPendingApproval):
		return http.StatusUnauthorized
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrAlreadyDecided),
		errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrReferenced),
		errors.Is(err, ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, ErrNoSupplierAvailable):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
