package services

import (
	"donation-matching-service/internal/domain"
	"math"
	"slices"
	"time"
)

// Criterion weights. They sum to 1.0; the current-needs bonus is added on
// top, so a match score can exceed 1.0.
const (
	WeightDistance     = 0.30
	WeightFoodType     = 0.25
	WeightQuantity     = 0.15
	WeightUrgency      = 0.10
	WeightRecency      = 0.20
	WeightCurrentNeeds = 0.15
)

// Quantity score for a donation outside an organization's capacity range.
// A capacity mismatch lowers a candidate but never disqualifies it.
const quantityMismatchScore = 0.5

// Organization-side urgency multipliers.
const (
	urgencyMatched   = 1.0
	urgencyUnmatched = 0.5
)

// Score ranks organizations for a donation, best match first.
//
// Every organization is scored, then those that do not accept the food type
// or cannot be located are dropped. Ties keep the input order. The result is
// empty when orgs is empty or the donation's expiry date does not parse.
func Score(donation domain.Donation, orgs []*domain.Organization, now time.Time) []domain.ScoredCandidate {
	detailed := ScoreDetailed(donation, orgs, now)

	out := make([]domain.ScoredCandidate, 0, len(detailed))
	for _, b := range detailed {
		out = append(out, b.ScoredCandidate)
	}
	return out
}

// ScoreDetailed is Score with every intermediate score kept.
func ScoreDetailed(donation domain.Donation, orgs []*domain.Organization, now time.Time) []domain.ScoreBreakdown {
	if len(orgs) == 0 {
		return []domain.ScoreBreakdown{}
	}

	expiry, err := donation.Expiry(now.Location())
	if err != nil {
		return []domain.ScoreBreakdown{}
	}

	foodType := domain.CanonicalFoodType(donation.FoodType)
	donationUrgency := domain.UrgencyForDays(domain.DaysUntil(expiry, now))

	rows := make([]domain.ScoreBreakdown, len(orgs))

	// First pass: raw per-organization values and the set-wide maxima used
	// for normalization.
	maxDistance := math.NaN()
	maxDays := math.Inf(-1)
	for i, o := range orgs {
		d := domain.DistanceKm(donation.DonorLocation, o.Location)
		if !math.IsInf(d, 0) && (math.IsNaN(maxDistance) || d > maxDistance) {
			maxDistance = d
		}

		days := o.DaysSinceDonation(now)
		maxDays = math.Max(maxDays, float64(days))

		rows[i] = domain.ScoreBreakdown{
			ScoredCandidate: domain.ScoredCandidate{
				OrganizationID: o.ID,
				Name:           o.Name,
				Address:        o.Address,
				DistanceKm:     d,
			},
			DaysSinceDonation: days,
		}
	}

	for i, o := range orgs {
		r := &rows[i]

		r.DistanceScore = distanceScore(r.DistanceKm, maxDistance)

		if o.Accepts(foodType) {
			r.FoodTypeScore = 1.0
		}

		r.QuantityScore = quantityMismatchScore
		if o.Fits(donation.Quantity) {
			r.QuantityScore = 1.0
		}

		orgUrgency := urgencyUnmatched
		if o.UrgencyPreference && donationUrgency > domain.UrgencyNormal {
			orgUrgency = urgencyMatched
		}
		r.UrgencyScore = donationUrgency * orgUrgency

		r.RecencyScore = 1.0
		if maxDays > 0 {
			r.RecencyScore = clamp01(float64(r.DaysSinceDonation) / maxDays)
		}

		if o.Needs(foodType) {
			r.CurrentNeedsBonus = WeightCurrentNeeds
		}

		r.MatchScore = r.DistanceScore*WeightDistance +
			r.FoodTypeScore*WeightFoodType +
			r.QuantityScore*WeightQuantity +
			r.UrgencyScore*WeightUrgency +
			r.RecencyScore*WeightRecency +
			r.CurrentNeedsBonus
	}

	out := slices.DeleteFunc(rows, func(r domain.ScoreBreakdown) bool {
		return r.FoodTypeScore <= 0 || math.IsInf(r.DistanceKm, 1)
	})

	slices.SortStableFunc(out, func(a, b domain.ScoreBreakdown) int {
		switch {
		case a.MatchScore > b.MatchScore:
			return -1
		case a.MatchScore < b.MatchScore:
			return 1
		default:
			return 0
		}
	})

	return out
}

// distanceScore maps a distance onto [0, 1], closer being higher. maxDistance
// is the largest finite distance in the set, or NaN when there is none.
func distanceScore(d, maxDistance float64) float64 {
	if math.IsNaN(maxDistance) || maxDistance == 0 {
		return 1.0
	}
	return clamp01(1 - d/maxDistance)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
