package domain

import (
	"math"
	"strings"
	"time"
)

// Canonical food type labels used by organizations.
const (
	FoodRawVegetables = "Raw Vegetables"
	FoodCookedMeals   = "Cooked Meals"
	FoodPackagedGoods = "Packaged Goods"
)

// ExpiryLayout is the only accepted expiry date format.
const ExpiryLayout = "2006-01-02"

var foodKeywords = map[string]string{
	"raw":      FoodRawVegetables,
	"cooked":   FoodCookedMeals,
	"packaged": FoodPackagedGoods,
}

// AllFoodTypes lists every canonical label.
func AllFoodTypes() []string {
	return []string{FoodCookedMeals, FoodRawVegetables, FoodPackagedGoods}
}

// CanonicalFoodType maps a donor keyword to its canonical label.
// Lookup is case-insensitive; unknown keywords are used verbatim.
func CanonicalFoodType(keyword string) string {
	if label, ok := foodKeywords[strings.ToLower(keyword)]; ok {
		return label
	}
	return keyword
}

// A Donation is built per request and never shared across requests.
// DonorLocation is nil when the donor address could not be geocoded.
type Donation struct {
	DonorAddress  string
	DonorLocation *Coordinates
	FoodType      string
	Quantity      float64
	ExpiryDate    string
}

// Expiry parses ExpiryDate as midnight of that calendar date in loc, so day
// counts against a "now" in the same zone follow the local calendar.
func (d Donation) Expiry(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(ExpiryLayout, d.ExpiryDate, loc)
}

// DaysUntil returns the whole number of days from now until t, rounded
// toward negative infinity, so an expiry earlier today counts as -1.
func DaysUntil(t, now time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

// Donation-side urgency levels.
const (
	UrgencyCritical = 3.0
	UrgencyHigh     = 2.0
	UrgencyNormal   = 1.0
)

// UrgencyForDays grades a donation by the days left before it expires.
func UrgencyForDays(days int) float64 {
	switch {
	case days <= 1:
		return UrgencyCritical
	case days <= 3:
		return UrgencyHigh
	default:
		return UrgencyNormal
	}
}
