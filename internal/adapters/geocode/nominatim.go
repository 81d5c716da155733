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
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NominatimGeocoder resolves addresses with an OpenStreetMap Nominatim
// server. Nominatim's usage policy requires an identifying User-Agent.
type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    logrus.FieldLogger
}

func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration, logger logrus.FieldLogger) (*NominatimGeocoder, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("nominatim base url is empty")
	}
	if strings.TrimSpace(userAgent) == "" {
		return nil, errors.New("nominatim user agent is empty")
	}

	return &NominatimGeocoder{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, n.logger, "nominatim.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("nominatim geocode: address must be non-empty")
	}

	req, err := newRequest(ctx, http.MethodGet, n.baseURL+"/search", map[string]string{
		"User-Agent": n.userAgent,
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim geocode: %w", err)
	}

	q := req.URL.Query()
	q.Set("q", norm)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := do(n.client, req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim geocode: decode response: %w", err)
	}

	if len(places) == 0 {
		return domain.Coordinates{}, fmt.Errorf("nominatim geocode %q: %w", norm, ports.ErrAddressNotFound)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim geocode: parse lat %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim geocode: parse lon %q: %w", places[0].Lon, err)
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}
