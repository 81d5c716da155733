package domain

import (
	"math"
	"slices"
	"time"
)

// Capacity range assumed when a record omits it.
const (
	DefaultCapacityMin = 10
	DefaultCapacityMax = 200
)

// NeverDonatedDays stands in for days-since-last-donation when an
// organization has never received a donation.
const NeverDonatedDays = 999

// Represents a recipient organization (NGO) that can accept donations.
// Location is nil when the source has no coordinates for the record;
// such records are dropped before they reach a snapshot.
type Organization struct {
	ID                string
	Name              string
	Address           string
	Location          *Coordinates
	LastDonationAt    *time.Time
	AcceptedFoodTypes []string
	CapacityMin       float64
	CapacityMax       float64
	UrgencyPreference bool
	CurrentNeeds      []string
}

// Accepts reports whether the organization takes the canonical food type.
func (o *Organization) Accepts(foodType string) bool {
	return slices.Contains(o.AcceptedFoodTypes, foodType)
}

// Needs reports whether the food type is on the organization's current needs.
func (o *Organization) Needs(foodType string) bool {
	return slices.Contains(o.CurrentNeeds, foodType)
}

// Fits reports whether quantity lies within the capacity range, inclusive.
func (o *Organization) Fits(quantity float64) bool {
	return o.CapacityMin <= quantity && quantity <= o.CapacityMax
}

// DaysSinceDonation returns whole days elapsed since the last donation,
// or NeverDonatedDays if there was none.
func (o *Organization) DaysSinceDonation(now time.Time) int {
	if o.LastDonationAt == nil {
		return NeverDonatedDays
	}
	return int(math.Floor(now.Sub(*o.LastDonationAt).Hours() / 24))
}

// ApplyDefaults fills the list fields a source left unset. Capacity
// defaults are applied by the sources, which can tell a missing bound
// from a zero one.
func (o *Organization) ApplyDefaults() {
	if o.AcceptedFoodTypes == nil {
		o.AcceptedFoodTypes = AllFoodTypes()
	}
	if o.CurrentNeeds == nil {
		o.CurrentNeeds = []string{}
	}
}
