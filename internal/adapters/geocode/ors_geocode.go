package geocode

import (
	"context"
	"donation-matching-service/internal/domain"
	"donation-matching-service/internal/platform/obs"
	"donation-matching-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder resolves addresses with OpenRouteService (/geocode/search).
// Each call is a single attempt bounded by the client timeout.
type ORSGeocoder struct {
	client  *http.Client
	apiKey  string
	baseURL string
	country string
	logger  logrus.FieldLogger
}

func NewORSGeocoder(apiKey string, timeout time.Duration, logger logrus.FieldLogger) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSGeocoder{
		client:  &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		logger:  logger,
	}, nil
}

// WithBaseURL points the geocoder at another ORS deployment.
func (o *ORSGeocoder) WithBaseURL(u string) *ORSGeocoder {
	o.baseURL = u
	return o
}

// WithCountry restricts results to an ISO country code.
func (o *ORSGeocoder) WithCountry(code string) *ORSGeocoder {
	o.country = code
	return o
}

func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, o.logger, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("ors geocode: address must be non-empty")
	}

	req, err := newRequest(ctx, http.MethodGet, o.baseURL+"/geocode/search", map[string]string{
		"Authorization": o.apiKey,
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("ors geocode: %w", err)
	}

	q := req.URL.Query()
	q.Set("text", norm)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := do(o.client, req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("ors geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("ors geocode: decode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("ors geocode %q: %w", norm, ports.ErrAddressNotFound)
	}

	// GeoJSON order is [lon, lat].
	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("ors geocode: invalid coordinate format for %q", norm)
	}

	return domain.Coordinates{Lat: coords[1], Lon: coords[0]}, nil
}
