package carbon

import (
	"errors"
	"fmt"
	"net/http"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors for the core operations. Compare with errors.Is.
var (
	ErrInvalidInput     = constError("invalid input")
	ErrFactorNotFound   = constError("emission factor not found")
	ErrOwnerNotFound    = constError("owner not found")
	ErrActivityNotFound = constError("activity not found")
	ErrPassportNotFound = constError("passport not found")
	ErrUnauthenticated  = constError("unauthenticated")
)

// Stable machine-readable error codes exposed at the HTTP boundary.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeFactorNotFound   = "FACTOR_NOT_FOUND"
	CodeOwnerNotFound    = "OWNER_NOT_FOUND"
	CodeActivityNotFound = "ACTIVITY_NOT_FOUND"
	CodePassportNotFound = "PASSPORT_NOT_FOUND"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL"
)

// FactorNotFoundError identifies the lookup key that failed to resolve,
// including after the default-region fallback.
type FactorNotFoundError struct {
	Type          FactorType
	Category      string
	Region        string
	DefaultRegion string
}

func (e *FactorNotFoundError) Error() string {
	if e.DefaultRegion == "" || e.DefaultRegion == e.Region {
		return fmt.Sprintf("no emission factor found for %s/%s in region %s", e.Type, e.Category, e.Region)
	}
	return fmt.Sprintf("no emission factor found for %s/%s in region %s (fallback region %s)",
		e.Type, e.Category, e.Region, e.DefaultRegion)
}

// Unwrap lets errors.Is(err, ErrFactorNotFound) match.
func (e *FactorNotFoundError) Unwrap() error { return ErrFactorNotFound }

// InvalidInputf returns an ErrInvalidInput wrapped with a formatted reason.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Code maps an error to its stable code. Unknown errors map to CodeInternal.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrFactorNotFound):
		return CodeFactorNotFound
	case errors.Is(err, ErrOwnerNotFound):
		return CodeOwnerNotFound
	case errors.Is(err, ErrActivityNotFound):
		return CodeActivityNotFound
	case errors.Is(err, ErrPassportNotFound):
		return CodePassportNotFound
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	default:
		return CodeInternal
	}
}

// HTTPStatus maps an error to the status code used by the HTTP handlers.
func HTTPStatus(err error) int {
	switch Code(err) {
	case "":
		return http.StatusOK
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeFactorNotFound:
		return http.StatusUnprocessableEntity
	case CodeOwnerNotFound, CodeActivityNotFound, CodePassportNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show to API callers. Internal
// errors are reduced to a generic message; the full error is for logs.
func PublicMessage(err error) string {
	if Code(err) == CodeInternal {
		return "internal error"
	}
	return err.Error()
}
