package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady means no organization snapshot with usable records is loaded.
	ErrNotReady = errors.New("matching is not ready: organization data unavailable")

	// ErrNoOrganizations means a reload found no organization with
	// coordinates.
	ErrNoOrganizations = errors.New("source returned no organizations with coordinates")

	// ErrGeocodeFailed means the donor address could not be resolved.
	ErrGeocodeFailed = errors.New("could not geocode address")
)

// ValidationError reports a malformed suggestion request.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}
