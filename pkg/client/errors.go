package client

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying store failures. Callers match them with
// errors.Is; APIError carries the raw response alongside.
var (
	// ErrUnavailable wraps transport-level failures: the generic
	// "could not load/save" class.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrUnauthorized marks a 401; the session layer reacts process-wide.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks a 403: the caller's role may not perform the
	// mutation. Surfaced distinctly from generic failures.
	ErrForbidden = errors.New("forbidden")
)

// APIError is a non-2xx response from the record store.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("record store returned status %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	}
	return nil
}
