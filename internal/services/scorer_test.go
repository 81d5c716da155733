package services

import (
	"donation-matching-service/internal/domain"
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// Kilometers per degree of latitude for the haversine radius in use.
const kmPerDegree = 111.19508

func tomorrow() string { return testNow.AddDate(0, 0, 1).Format(domain.ExpiryLayout) }

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

// northOf returns a point km kilometers due north of the origin.
func northOf(km float64) *domain.Coordinates {
	return &domain.Coordinates{Lat: km / kmPerDegree, Lon: 0}
}

var origin = &domain.Coordinates{Lat: 0, Lon: 0}

func rawOrg(id string, km float64) *domain.Organization {
	return &domain.Organization{
		ID:                id,
		Name:              "Org " + id,
		Address:           id + " street",
		Location:          northOf(km),
		AcceptedFoodTypes: []string{domain.FoodRawVegetables},
		CapacityMin:       10,
		CapacityMax:       100,
		CurrentNeeds:      []string{},
	}
}

func rawDonation(expiry string) domain.Donation {
	return domain.Donation{
		DonorAddress:  "A",
		DonorLocation: origin,
		FoodType:      "raw",
		Quantity:      50,
		ExpiryDate:    expiry,
	}
}

func TestScoreNeverDonatedRanksFirst(t *testing.T) {
	org1 := rawOrg("1", 5)
	org1.LastDonationAt = daysAgo(2)
	org2 := rawOrg("2", 5)

	got := Score(rawDonation(tomorrow()), []*domain.Organization{org1, org2}, testNow)

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].OrganizationID != "2" || got[1].OrganizationID != "1" {
		t.Fatalf("order = [%s %s], want [2 1]", got[0].OrganizationID, got[1].OrganizationID)
	}
	if got[0].MatchScore <= got[1].MatchScore {
		t.Fatalf("never-donated score %v should exceed %v", got[0].MatchScore, got[1].MatchScore)
	}
	if math.Abs(got[0].DistanceKm-5) > 0.01 {
		t.Fatalf("distance = %v, want about 5km", got[0].DistanceKm)
	}
}

func TestScoreCompositeFormula(t *testing.T) {
	org1 := rawOrg("1", 5)
	org1.LastDonationAt = daysAgo(2)
	org2 := rawOrg("2", 5)

	got := ScoreDetailed(rawDonation(tomorrow()), []*domain.Organization{org1, org2}, testNow)

	// Both at the max distance: distance score 0. Expiry tomorrow: urgency
	// 3.0, halved because neither organization prefers urgent donations.
	never := got[0]
	wantNever := 0*0.30 + 1*0.25 + 1*0.15 + 1.5*0.10 + 1*0.20
	if math.Abs(never.MatchScore-wantNever) > 1e-9 {
		t.Fatalf("never-donated score = %v, want %v", never.MatchScore, wantNever)
	}

	recent := got[1]
	wantRecent := 0*0.30 + 1*0.25 + 1*0.15 + 1.5*0.10 + (2.0/999)*0.20
	if math.Abs(recent.MatchScore-wantRecent) > 1e-9 {
		t.Fatalf("recent score = %v, want %v", recent.MatchScore, wantRecent)
	}
	if recent.DaysSinceDonation != 2 {
		t.Fatalf("days since donation = %d, want 2", recent.DaysSinceDonation)
	}
}

func TestScoreMalformedExpiryIsEmpty(t *testing.T) {
	orgs := []*domain.Organization{rawOrg("1", 1), rawOrg("2", 2)}

	got := Score(rawDonation("not-a-date"), orgs, testNow)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestScoreNoOrganizations(t *testing.T) {
	if got := Score(rawDonation(tomorrow()), nil, testNow); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestScoreFiltersFoodTypeAndUnreachable(t *testing.T) {
	cooked := rawOrg("cooked", 1)
	cooked.AcceptedFoodTypes = []string{domain.FoodCookedMeals}
	lost := rawOrg("lost", 0)
	lost.Location = nil
	ok := rawOrg("ok", 3)

	got := ScoreDetailed(rawDonation(tomorrow()), []*domain.Organization{cooked, lost, ok}, testNow)

	if len(got) != 1 || got[0].OrganizationID != "ok" {
		t.Fatalf("expected only %q, got %+v", "ok", got)
	}
	if got[0].FoodTypeScore != 1 {
		t.Fatalf("food type score = %v, want 1", got[0].FoodTypeScore)
	}
}

func TestScoreDonorWithoutLocation(t *testing.T) {
	d := rawDonation(tomorrow())
	d.DonorLocation = nil

	got := Score(d, []*domain.Organization{rawOrg("1", 1), rawOrg("2", 2)}, testNow)
	if len(got) != 0 {
		t.Fatalf("expected every candidate filtered as unreachable, got %v", got)
	}
}

func TestScoreDistanceNormalization(t *testing.T) {
	orgs := []*domain.Organization{rawOrg("near", 2), rawOrg("mid", 5), rawOrg("far", 10)}

	got := ScoreDetailed(rawDonation(tomorrow()), orgs, testNow)

	byID := map[string]domain.ScoreBreakdown{}
	for _, b := range got {
		if b.DistanceScore < 0 || b.DistanceScore > 1 {
			t.Fatalf("%s distance score %v outside [0,1]", b.OrganizationID, b.DistanceScore)
		}
		byID[b.OrganizationID] = b
	}

	if s := byID["far"].DistanceScore; s != 0 {
		t.Fatalf("farthest distance score = %v, want 0", s)
	}
	if s := byID["mid"].DistanceScore; math.Abs(s-0.5) > 1e-6 {
		t.Fatalf("mid distance score = %v, want 0.5", s)
	}
	if s := byID["near"].DistanceScore; math.Abs(s-0.8) > 1e-6 {
		t.Fatalf("near distance score = %v, want 0.8", s)
	}
	if got[0].OrganizationID != "near" {
		t.Fatalf("closest organization should rank first, got %q", got[0].OrganizationID)
	}
}

func TestScoreDistanceAtMaximum(t *testing.T) {
	cases := map[string][]*domain.Organization{
		"single":     {rawOrg("1", 7)},
		"same place": {rawOrg("1", 0), rawOrg("2", 0)},
	}

	for name, orgs := range cases {
		t.Run(name, func(t *testing.T) {
			// A single organization sits at the max distance; only a
			// zero max resets every score to 1.
			got := ScoreDetailed(rawDonation(tomorrow()), orgs, testNow)
			for _, b := range got {
				want := 0.0
				if b.DistanceKm == 0 {
					want = 1.0
				}
				if b.DistanceScore != want {
					t.Fatalf("%s distance score = %v, want %v", b.OrganizationID, b.DistanceScore, want)
				}
			}
		})
	}
}

func TestScoreDistanceNoFiniteDistance(t *testing.T) {
	lost := rawOrg("lost", 1)
	lost.Location = nil

	// Still scored (then filtered); nothing finite means every distance
	// score is 1.0.
	rows := ScoreDetailed(rawDonation(tomorrow()), []*domain.Organization{lost}, testNow)
	if len(rows) != 0 {
		t.Fatalf("unreachable organization must be filtered, got %v", rows)
	}
	if s := distanceScore(math.Inf(1), math.NaN()); s != 1 {
		t.Fatalf("distance score with no finite max = %v, want 1", s)
	}
	if s := distanceScore(math.Inf(1), 10); s != 0 {
		t.Fatalf("unreachable distance score = %v, want 0", s)
	}
}

func TestScoreQuantityIsSoftPenalty(t *testing.T) {
	small := rawOrg("small", 3)
	small.CapacityMax = 20

	got := ScoreDetailed(rawDonation(tomorrow()), []*domain.Organization{small, rawOrg("big", 3)}, testNow)
	if len(got) != 2 {
		t.Fatalf("capacity mismatch must not filter; got %d candidates", len(got))
	}

	for _, b := range got {
		switch b.OrganizationID {
		case "small":
			if b.QuantityScore != 0.5 {
				t.Fatalf("mismatched quantity score = %v, want 0.5", b.QuantityScore)
			}
		case "big":
			if b.QuantityScore != 1 {
				t.Fatalf("fitting quantity score = %v, want 1", b.QuantityScore)
			}
		}
	}
	if got[0].OrganizationID != "big" {
		t.Fatalf("fitting organization should rank first")
	}
}

func TestScoreUrgency(t *testing.T) {
	cases := []struct {
		name       string
		expiryDays int
		preference bool
		want       float64
	}{
		{"critical, prefers urgent", 1, true, 3.0},
		{"critical, indifferent", 1, false, 1.5},
		{"high, prefers urgent", 3, true, 2.0},
		{"normal, prefers urgent", 10, true, 0.5},
		{"normal, indifferent", 10, false, 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := rawOrg("1", 1)
			o.UrgencyPreference = tc.preference

			// Midnight of the expiry day minus 10:00 now gives expiryDays-1
			// whole days, so add one to land on the intended bucket.
			expiry := testNow.AddDate(0, 0, tc.expiryDays+1).Format(domain.ExpiryLayout)

			got := ScoreDetailed(rawDonation(expiry), []*domain.Organization{o}, testNow)
			if len(got) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(got))
			}
			if got[0].UrgencyScore != tc.want {
				t.Fatalf("urgency = %v, want %v", got[0].UrgencyScore, tc.want)
			}
		})
	}
}

func TestScoreUrgencyFollowsLocalCalendar(t *testing.T) {
	newYork := time.FixedZone("EDT", -4*3600)
	india := time.FixedZone("IST", 5*3600+1800)

	cases := []struct {
		name     string
		now      time.Time
		expiry   string
		wantDays int
		want     float64
	}{
		// 22:00 on the 4th locally is already the 5th in UTC.
		{"west of UTC", time.Date(2026, 5, 4, 22, 0, 0, 0, newYork), "2026-05-09", 4, 0.5},
		// 03:00 on the 4th locally is still the 3rd in UTC.
		{"east of UTC", time.Date(2026, 5, 4, 3, 0, 0, 0, india), "2026-05-08", 3, 2.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := rawOrg("1", 1)
			o.UrgencyPreference = true

			got := ScoreDetailed(rawDonation(tc.expiry), []*domain.Organization{o}, tc.now)
			if len(got) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(got))
			}
			if got[0].UrgencyScore != tc.want {
				t.Fatalf("urgency = %v, want %v", got[0].UrgencyScore, tc.want)
			}

			expiry, err := rawDonation(tc.expiry).Expiry(tc.now.Location())
			if err != nil {
				t.Fatalf("parse expiry: %v", err)
			}
			if days := domain.DaysUntil(expiry, tc.now); days != tc.wantDays {
				t.Fatalf("days until expiry = %d, want %d", days, tc.wantDays)
			}
		})
	}
}

func TestScoreCurrentNeedsBonus(t *testing.T) {
	plain := rawOrg("plain", 4)
	needy := rawOrg("needy", 4)
	needy.CurrentNeeds = []string{domain.FoodRawVegetables}

	got := ScoreDetailed(rawDonation(tomorrow()), []*domain.Organization{plain, needy}, testNow)

	if got[0].OrganizationID != "needy" {
		t.Fatalf("organization with matching need should rank first, got %q", got[0].OrganizationID)
	}
	if got[0].CurrentNeedsBonus != WeightCurrentNeeds {
		t.Fatalf("bonus = %v, want %v", got[0].CurrentNeedsBonus, WeightCurrentNeeds)
	}
	if diff := got[0].MatchScore - got[1].MatchScore; math.Abs(diff-WeightCurrentNeeds) > 1e-9 {
		t.Fatalf("score difference = %v, want %v", diff, WeightCurrentNeeds)
	}
}

func TestScoreRecencyNeverDonatedDominates(t *testing.T) {
	orgs := []*domain.Organization{rawOrg("a", 1), rawOrg("b", 1), rawOrg("c", 1)}
	orgs[0].LastDonationAt = daysAgo(400)
	orgs[1].LastDonationAt = daysAgo(0)

	got := ScoreDetailed(rawDonation(tomorrow()), orgs, testNow)

	byID := map[string]domain.ScoreBreakdown{}
	for _, b := range got {
		byID[b.OrganizationID] = b
	}

	if byID["c"].RecencyScore != 1 {
		t.Fatalf("never-donated recency = %v, want 1", byID["c"].RecencyScore)
	}
	for _, id := range []string{"a", "b"} {
		if byID[id].RecencyScore > byID["c"].RecencyScore {
			t.Fatalf("%s recency %v exceeds never-donated", id, byID[id].RecencyScore)
		}
	}
	if byID["b"].RecencyScore != 0 {
		t.Fatalf("donated today recency = %v, want 0", byID["b"].RecencyScore)
	}
}

func TestScoreRecencyAllDonatedToday(t *testing.T) {
	orgs := []*domain.Organization{rawOrg("a", 1), rawOrg("b", 2)}
	orgs[0].LastDonationAt = daysAgo(0)
	orgs[1].LastDonationAt = daysAgo(0)

	for _, b := range ScoreDetailed(rawDonation(tomorrow()), orgs, testNow) {
		if b.RecencyScore != 1 {
			t.Fatalf("%s recency = %v, want 1 when nobody is behind", b.OrganizationID, b.RecencyScore)
		}
	}
}

func TestScoreTiesKeepInputOrder(t *testing.T) {
	orgs := []*domain.Organization{rawOrg("x", 5), rawOrg("y", 5), rawOrg("z", 5)}

	got := Score(rawDonation(tomorrow()), orgs, testNow)
	for i, want := range []string{"x", "y", "z"} {
		if got[i].OrganizationID != want {
			t.Fatalf("position %d = %q, want %q", i, got[i].OrganizationID, want)
		}
	}
}

func TestScoreSortedDescending(t *testing.T) {
	orgs := []*domain.Organization{rawOrg("1", 9), rawOrg("2", 1), rawOrg("3", 4), rawOrg("4", 6)}
	orgs[1].LastDonationAt = daysAgo(1)
	orgs[3].CurrentNeeds = []string{domain.FoodRawVegetables}
	orgs[2].UrgencyPreference = true

	got := Score(rawDonation(tomorrow()), orgs, testNow)
	for i := 1; i < len(got); i++ {
		if got[i-1].MatchScore < got[i].MatchScore {
			t.Fatalf("result not sorted at %d: %v < %v", i, got[i-1].MatchScore, got[i].MatchScore)
		}
	}
}

func TestScoreVerbatimFoodType(t *testing.T) {
	fruit := rawOrg("fruit", 1)
	fruit.AcceptedFoodTypes = []string{"Fruits"}

	d := rawDonation(tomorrow())
	d.FoodType = "Fruits"

	if got := Score(d, []*domain.Organization{fruit}, testNow); len(got) != 1 {
		t.Fatalf("verbatim food type should match, got %v", got)
	}
}
