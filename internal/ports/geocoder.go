package ports

import (
	"context"
	"donation-matching-service/internal/domain"
	"errors"
)

// ErrAddressNotFound is returned by a Geocoder when the provider has no
// match for an address.
var ErrAddressNotFound = errors.New("address not found")

// Contract for turning a free-form address into coordinates.
type Geocoder interface {
	// Resolve an address with a single provider call.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
