package repositories

import (
	"donation-matching-service/internal/domain"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Seed is the fixture file format shared by every store.
type Seed struct {
	Organizations []OrganizationSeed `yaml:"organizations"`
	Receipts      []ReceiptSeed      `yaml:"receipts"`
}

type OrganizationSeed struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	Email             string   `yaml:"email"`
	Address           string   `yaml:"address"`
	Lat               *float64 `yaml:"lat"`
	Lng               *float64 `yaml:"lng"`
	AcceptedFoodTypes []string `yaml:"accepted_food_types"`
	CapacityMin       *float64 `yaml:"capacity_min"`
	CapacityMax       *float64 `yaml:"capacity_max"`
	UrgencyPreference *bool    `yaml:"urgency_preference"`
	CurrentNeeds      []string `yaml:"current_needs"`
}

// ReceiptSeed records a donation an organization received.
type ReceiptSeed struct {
	OrganizationID string    `yaml:"organization_id"`
	ReceivedAt     time.Time `yaml:"received_at"`
}

// LoadSeedFile reads and validates a YAML fixture file.
func LoadSeedFile(path string) (*Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("load seed: parse yaml: %w", err)
	}

	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("load seed %q: %w", path, err)
	}

	return &seed, nil
}

// Validate checks ids, names, capacity ranges and receipt references.
func (s *Seed) Validate() error {
	ids := make(map[string]struct{}, len(s.Organizations))
	for i, o := range s.Organizations {
		id := strings.TrimSpace(o.ID)
		if id == "" {
			return fmt.Errorf("organization at index %d: id cannot be empty", i+1)
		}
		if _, dup := ids[id]; dup {
			return fmt.Errorf("organization at index %d: duplicate id %q", i+1, id)
		}
		ids[id] = struct{}{}

		if strings.TrimSpace(o.Name) == "" {
			return fmt.Errorf("organization %q: name cannot be empty", id)
		}
		if (o.Lat == nil) != (o.Lng == nil) {
			return fmt.Errorf("organization %q: lat and lng must be set together", id)
		}
		if o.CapacityMin != nil && o.CapacityMax != nil && *o.CapacityMin > *o.CapacityMax {
			return fmt.Errorf("organization %q: capacity_min %v exceeds capacity_max %v", id, *o.CapacityMin, *o.CapacityMax)
		}
	}

	for i, r := range s.Receipts {
		if _, ok := ids[r.OrganizationID]; !ok {
			return fmt.Errorf("receipt at index %d: unknown organization %q", i+1, r.OrganizationID)
		}
		if r.ReceivedAt.IsZero() {
			return fmt.Errorf("receipt at index %d: received_at is required", i+1)
		}
	}

	return nil
}

// lastReceipts maps organization id to its latest receipt time.
func (s *Seed) lastReceipts() map[string]time.Time {
	out := make(map[string]time.Time)
	for _, r := range s.Receipts {
		if last, ok := out[r.OrganizationID]; !ok || r.ReceivedAt.After(last) {
			out[r.OrganizationID] = r.ReceivedAt
		}
	}
	return out
}

func (o OrganizationSeed) record(last *time.Time) organizationRecord {
	return organizationRecord{
		ID:                o.ID,
		Name:              o.Name,
		Address:           o.Address,
		Lat:               o.Lat,
		Lng:               o.Lng,
		LastDonationAt:    last,
		AcceptedFoodTypes: o.AcceptedFoodTypes,
		CapacityMin:       o.CapacityMin,
		CapacityMax:       o.CapacityMax,
		UrgencyPreference: o.UrgencyPreference,
		CurrentNeeds:      o.CurrentNeeds,
	}
}

// DomainOrganizations converts the fixtures, deriving last donation dates
// from the receipts.
func (s *Seed) DomainOrganizations() []*domain.Organization {
	last := s.lastReceipts()

	out := make([]*domain.Organization, 0, len(s.Organizations))
	for _, o := range s.Organizations {
		var lastAt *time.Time
		if t, ok := last[o.ID]; ok {
			lastAt = &t
		}
		out = append(out, o.record(lastAt).toDomain())
	}
	return out
}
