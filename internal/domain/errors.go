package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound signals a missing map session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrMarkerNotFound signals a marker that is not displayed in the session.
	ErrMarkerNotFound = errors.New("marker not found")
	// ErrEmptyQuery signals a blank query submission.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrInvalidFilter signals a filter descriptor that violates its invariants.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrObservationsUnavailable signals an observations collaborator failure.
	ErrObservationsUnavailable = errors.New("observations service unavailable")
	// ErrQueryUnavailable signals that no question-answering collaborator responded.
	ErrQueryUnavailable = errors.New("query service unavailable")
)

// UpstreamError carries the HTTP status returned by a collaborator.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
	sentinel   error
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: upstream status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Service, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.sentinel }

// NewUpstreamError creates an upstream error wrapping the given sentinel.
func NewUpstreamError(service string, status int, message string, sentinel error) error {
	return &UpstreamError{Service: service, StatusCode: status, Message: message, sentinel: sentinel}
}
