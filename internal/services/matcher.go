package services

import (
	"context"
	"donation-matching-service/internal/domain"
	"donation-matching-service/internal/platform/obs"
	"donation-matching-service/internal/ports"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultTopN           = 5
	defaultGeocodeTimeout = 10 * time.Second
)

// SuggestRequest is a donation as submitted by a donor, before geocoding.
type SuggestRequest struct {
	DonorAddress string
	FoodType     string
	Quantity     float64
	ExpiryDate   string
}

// Validate reports the first missing or malformed field.
func (r SuggestRequest) Validate() error {
	if strings.TrimSpace(r.DonorAddress) == "" {
		return &ValidationError{Field: "donor_address", Msg: "is required"}
	}
	if strings.TrimSpace(r.FoodType) == "" {
		return &ValidationError{Field: "food_type", Msg: "is required"}
	}
	if r.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Msg: "must be greater than 0"}
	}
	if strings.TrimSpace(r.ExpiryDate) == "" {
		return &ValidationError{Field: "expiry_date", Msg: "is required"}
	}
	if _, err := time.Parse(domain.ExpiryLayout, r.ExpiryDate); err != nil {
		return &ValidationError{Field: "expiry_date", Msg: "must be a date in YYYY-MM-DD format"}
	}
	return nil
}

// Matcher answers suggestion requests: it geocodes the donor, scores the
// current snapshot and keeps the best TopN candidates.
type Matcher struct {
	Snapshots      *SnapshotStore
	Geocoder       ports.Geocoder
	GeocodeTimeout time.Duration
	TopN           int
	Logger         logrus.FieldLogger
	Now            func() time.Time
}

func NewMatcher(snapshots *SnapshotStore, geocoder ports.Geocoder, logger logrus.FieldLogger) *Matcher {
	return &Matcher{
		Snapshots:      snapshots,
		Geocoder:       geocoder,
		GeocodeTimeout: defaultGeocodeTimeout,
		TopN:           defaultTopN,
		Logger:         logger,
		Now:            time.Now,
	}
}

// Suggest returns up to TopN candidates, best first.
func (m *Matcher) Suggest(ctx context.Context, req SuggestRequest) ([]domain.ScoredCandidate, error) {
	detailed, err := m.Explain(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScoredCandidate, 0, len(detailed))
	for _, b := range detailed {
		out = append(out, b.ScoredCandidate)
	}
	return out, nil
}

// Explain is Suggest with the per-criterion scores of each candidate.
func (m *Matcher) Explain(ctx context.Context, req SuggestRequest) (_ []domain.ScoreBreakdown, err error) {
	defer obs.Time(ctx, m.Logger, "matcher.Suggest")(&err)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	snap := m.Snapshots.Current()
	if snap.Size() == 0 {
		return nil, ErrNotReady
	}

	loc, err := m.geocode(ctx, req.DonorAddress)
	if err != nil {
		m.Logger.WithFields(logrus.Fields{
			"req_id":  obs.RequestID(ctx),
			"address": req.DonorAddress,
		}).WithError(err).Warn("donor address could not be geocoded")
		return nil, fmt.Errorf("%w %q", ErrGeocodeFailed, req.DonorAddress)
	}

	donation := domain.Donation{
		DonorAddress:  req.DonorAddress,
		DonorLocation: &loc,
		FoodType:      req.FoodType,
		Quantity:      req.Quantity,
		ExpiryDate:    req.ExpiryDate,
	}

	ranked := ScoreDetailed(donation, snap.Organizations, m.now())
	m.logBreakdown(ctx, ranked)

	if n := m.topN(); len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func (m *Matcher) geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	timeout := m.GeocodeTimeout
	if timeout <= 0 {
		timeout = defaultGeocodeTimeout
	}

	gctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return m.Geocoder.Geocode(gctx, address)
}

func (m *Matcher) logBreakdown(ctx context.Context, ranked []domain.ScoreBreakdown) {
	for i, b := range ranked {
		m.Logger.WithFields(logrus.Fields{
			"req_id":         obs.RequestID(ctx),
			"rank":           i + 1,
			"ngo_id":         b.OrganizationID,
			"distance_km":    b.DistanceKm,
			"distance_score": b.DistanceScore,
			"food_score":     b.FoodTypeScore,
			"quantity_score": b.QuantityScore,
			"urgency_score":  b.UrgencyScore,
			"days_since":     b.DaysSinceDonation,
			"recency_score":  b.RecencyScore,
			"needs_bonus":    b.CurrentNeedsBonus,
			"match_score":    b.MatchScore,
		}).Debug("candidate scored")
	}
}

func (m *Matcher) topN() int {
	if m.TopN < 1 {
		return defaultTopN
	}
	return m.TopN
}

func (m *Matcher) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
