package repositories

import (
	"donation-matching-service/internal/domain"
	"strings"
	"time"
)

const missingText = "N/A"

// organizationRecord is the storage-neutral shape every source scans into.
// Nil fields were absent in the store and receive domain defaults.
type organizationRecord struct {
	ID                string
	Name              string
	Address           string
	Lat               *float64
	Lng               *float64
	LastDonationAt    *time.Time
	AcceptedFoodTypes []string
	CapacityMin       *float64
	CapacityMax       *float64
	UrgencyPreference *bool
	CurrentNeeds      []string
}

func (r organizationRecord) toDomain() *domain.Organization {
	o := &domain.Organization{
		ID:                r.ID,
		Name:              orDefault(r.Name),
		Address:           orDefault(r.Address),
		AcceptedFoodTypes: r.AcceptedFoodTypes,
		CapacityMin:       domain.DefaultCapacityMin,
		CapacityMax:       domain.DefaultCapacityMax,
		CurrentNeeds:      r.CurrentNeeds,
	}

	if r.Lat != nil && r.Lng != nil {
		o.Location = &domain.Coordinates{Lat: *r.Lat, Lon: *r.Lng}
	}
	if r.LastDonationAt != nil {
		t := r.LastDonationAt.UTC()
		o.LastDonationAt = &t
	}
	if r.CapacityMin != nil {
		o.CapacityMin = *r.CapacityMin
	}
	if r.CapacityMax != nil {
		o.CapacityMax = *r.CapacityMax
	}
	if r.UrgencyPreference != nil {
		o.UrgencyPreference = *r.UrgencyPreference
	}

	o.ApplyDefaults()
	return o
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return missingText
	}
	return s
}
