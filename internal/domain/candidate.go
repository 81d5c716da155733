package domain

// A ScoredCandidate is one organization's place in a ranking.
// It is recomputed for every request and has no identity of its own.
type ScoredCandidate struct {
	OrganizationID string
	Name           string
	Address        string
	DistanceKm     float64
	MatchScore     float64
}

// ScoreBreakdown holds every intermediate score behind a candidate's
// MatchScore, used for diagnostics.
type ScoreBreakdown struct {
	ScoredCandidate
	DistanceScore     float64
	FoodTypeScore     float64
	QuantityScore     float64
	UrgencyScore      float64
	DaysSinceDonation int
	RecencyScore      float64
	CurrentNeedsBonus float64
}
