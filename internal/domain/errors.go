package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates the entity exists upstream (e.g. duplicate auth identity).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInsufficientPoints is returned when a redemption costs more than the balance.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrNoCart indicates an operation that requires a backend cart ran without one.
	ErrNoCart = errors.New("no cart")
)

// UpstreamError carries a non-2xx response from one of the external systems.
type UpstreamError struct {
	System  string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.System, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.System, e.Status, e.Message)
}

// AsUpstream unwraps err into an UpstreamError if possible.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
