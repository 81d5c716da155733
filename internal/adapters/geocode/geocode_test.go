package geocode

import (
	"context"
	"donation-matching-service/internal/domain"
	"donation-matching-service/internal/ports"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestNominatimGeocode(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"26.2134","lon":"78.1987","display_name":"City Centre"}]`))
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	g, err := NewNominatimGeocoder(srv.URL+"/", "matcher-test", time.Second, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, err := g.Geocode(context.Background(), "  City   Centre, Gwalior ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Lat != 26.2134 || c.Lon != 78.1987 {
		t.Fatalf("coords = %+v", c)
	}
	if gotQuery != "City Centre, Gwalior" {
		t.Fatalf("query = %q, want normalized address", gotQuery)
	}
	if gotAgent != "matcher-test" {
		t.Fatalf("user agent = %q", gotAgent)
	}
}

func TestNominatimNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	g, _ := NewNominatimGeocoder(srv.URL, "matcher-test", time.Second, logger)

	_, err := g.Geocode(context.Background(), "nowhere")
	if !errors.Is(err, ports.ErrAddressNotFound) {
		t.Fatalf("err = %v, want ErrAddressNotFound", err)
	}
}

func TestNominatimTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	logger, _ := test.NewNullLogger()
	g, _ := NewNominatimGeocoder(srv.URL, "matcher-test", 50*time.Millisecond, logger)

	start := time.Now()
	if _, err := g.Geocode(context.Background(), "slow street"); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("geocode took %v, timeout not applied", elapsed)
	}
}

func TestORSGeocode(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "secret" {
			t.Errorf("missing api key header")
		}
		if r.URL.Query().Get("boundary.country") != "IN" {
			t.Errorf("country = %q", r.URL.Query().Get("boundary.country"))
		}
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[78.242,26.228]}}]}`))
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	g, err := NewORSGeocoder("secret", time.Second, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.WithBaseURL(srv.URL).WithCountry("IN")

	c, err := g.Geocode(context.Background(), "Morar, Gwalior")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (domain.Coordinates{Lat: 26.228, Lon: 78.242}) {
		t.Fatalf("coords = %+v, want lat/lon swapped from GeoJSON", c)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestORSServerErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	g, _ := NewORSGeocoder("secret", time.Second, logger)
	g.WithBaseURL(srv.URL)

	_, err := g.Geocode(context.Background(), "anywhere")

	var he *httpStatusError
	if !errors.As(err, &he) || he.Code != http.StatusBadGateway {
		t.Fatalf("err = %v, want status error 502", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want a single attempt", calls)
	}
}

func TestNewGeocoderValidation(t *testing.T) {
	logger, _ := test.NewNullLogger()

	if _, err := NewORSGeocoder("", time.Second, logger); err == nil {
		t.Error("expected error for empty ORS key")
	}
	if _, err := NewNominatimGeocoder("", "ua", time.Second, logger); err == nil {
		t.Error("expected error for empty nominatim url")
	}
	if _, err := NewNominatimGeocoder("http://x", " ", time.Second, logger); err == nil {
		t.Error("expected error for empty user agent")
	}
}

func TestMockGeocoder(t *testing.T) {
	g := NewMockGeocoder(map[string]domain.Coordinates{"A  street": {Lat: 1, Lon: 2}})

	c, err := g.Geocode(context.Background(), "A street")
	if err != nil || c.Lat != 1 {
		t.Fatalf("got %+v, %v", c, err)
	}
	if _, err := g.Geocode(context.Background(), "B street"); !errors.Is(err, ports.ErrAddressNotFound) {
		t.Fatalf("err = %v, want ErrAddressNotFound", err)
	}
	if g.Calls() != 2 {
		t.Fatalf("calls = %d, want 2", g.Calls())
	}
}
