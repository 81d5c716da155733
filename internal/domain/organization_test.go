package domain

import (
	"testing"
	"time"
)

func TestOrganizationDaysSinceDonation(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	never := &Organization{ID: "a"}
	if got := never.DaysSinceDonation(now); got != NeverDonatedDays {
		t.Fatalf("never donated = %d, want %d", got, NeverDonatedDays)
	}

	last := now.Add(-50 * time.Hour)
	recent := &Organization{ID: "b", LastDonationAt: &last}
	if got := recent.DaysSinceDonation(now); got != 2 {
		t.Fatalf("days since donation = %d, want 2", got)
	}
}

func TestOrganizationFits(t *testing.T) {
	o := &Organization{CapacityMin: 10, CapacityMax: 100}

	cases := map[float64]bool{
		9.99:  false,
		10:    true,
		50:    true,
		100:   true,
		100.5: false,
	}
	for q, want := range cases {
		if got := o.Fits(q); got != want {
			t.Errorf("Fits(%v) = %v, want %v", q, got, want)
		}
	}
}

func TestOrganizationApplyDefaults(t *testing.T) {
	o := &Organization{ID: "x"}
	o.ApplyDefaults()

	for _, ft := range AllFoodTypes() {
		if !o.Accepts(ft) {
			t.Errorf("default organization should accept %q", ft)
		}
	}
	if o.CurrentNeeds == nil || len(o.CurrentNeeds) != 0 {
		t.Errorf("CurrentNeeds = %v, want empty", o.CurrentNeeds)
	}

	custom := &Organization{AcceptedFoodTypes: []string{FoodCookedMeals}, CurrentNeeds: []string{FoodCookedMeals}}
	custom.ApplyDefaults()
	if custom.Accepts(FoodRawVegetables) {
		t.Errorf("explicit accepted types were overwritten")
	}
	if !custom.Needs(FoodCookedMeals) {
		t.Errorf("explicit needs were overwritten")
	}
}
