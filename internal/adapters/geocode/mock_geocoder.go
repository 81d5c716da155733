package geocode

import (
	"context"
	"donation-matching-service/internal/domain"
	"donation-matching-service/internal/ports"
	"fmt"
	"sync/atomic"
)

// MockGeocoder answers from a fixed address table.
type MockGeocoder struct {
	m     map[string]domain.Coordinates
	Err   error
	calls atomic.Int64
}

func NewMockGeocoder(known map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(known))
	for addr, c := range known {
		m[normalize(addr)] = c
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	g.calls.Add(1)

	if g.Err != nil {
		return domain.Coordinates{}, g.Err
	}

	c, ok := g.m[normalize(address)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock geocode %q: %w", address, ports.ErrAddressNotFound)
	}
	return c, nil
}

// Calls reports how many times Geocode ran.
func (g *MockGeocoder) Calls() int {
	return int(g.calls.Load())
}
