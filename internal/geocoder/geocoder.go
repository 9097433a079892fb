package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Location is one geocoding result with GeoJSON-ordered coordinates
// available via Coordinates.
type Location struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	Street           string
	City             string
	State            string
	Zipcode          string
	Country          string
}

// Coordinates returns [longitude, latitude], the order MongoDB expects
// for a GeoJSON point.
func (l Location) Coordinates() []float64 {
	return []float64{l.Longitude, l.Latitude}
}

var ErrNoResult = errors.New("geocoder: no result for location")

// Geocoder resolves free-form addresses and zipcodes through the
// MapQuest geocoding API. Calls run through a circuit breaker so a
// degraded upstream fails fast instead of stalling every request.
type Geocoder struct {
	baseURL string
	key     string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
}

func New(baseURL, key string) *Geocoder {
	return &Geocoder{
		baseURL: baseURL,
		key:     key,
		client:  &http.Client{Timeout: 10 * time.Second},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "geocoder",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
		}),
	}
}

// Geocode resolves an address or zipcode to its first match. An
// unknown location is ordinary client input, not an upstream failure,
// so it reports ErrNoResult without counting against the breaker.
func (g *Geocoder) Geocode(ctx context.Context, location string) (Location, error) {
	result, err := g.cb.Execute(func() (interface{}, error) {
		return g.lookup(ctx, location)
	})
	if err != nil {
		return Location{}, err
	}
	res := result.(lookupResult)
	if !res.found {
		return Location{}, ErrNoResult
	}
	return res.loc, nil
}

// lookupResult separates "upstream answered with no match" from the
// transport failures the breaker tracks.
type lookupResult struct {
	loc   Location
	found bool
}

type mapquestResponse struct {
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			City       string `json:"adminArea5"`
			State      string `json:"adminArea3"`
			PostalCode string `json:"postalCode"`
			Country    string `json:"adminArea1"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

func (g *Geocoder) lookup(ctx context.Context, location string) (lookupResult, error) {
	q := url.Values{}
	q.Set("key", g.key)
	q.Set("location", location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return lookupResult{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return lookupResult{}, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return lookupResult{}, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var payload mapquestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return lookupResult{}, fmt.Errorf("geocoder response decode failed: %w", err)
	}

	if len(payload.Results) == 0 || len(payload.Results[0].Locations) == 0 {
		return lookupResult{}, nil
	}

	loc := payload.Results[0].Locations[0]
	out := Location{
		Latitude:  loc.LatLng.Lat,
		Longitude: loc.LatLng.Lng,
		Street:    loc.Street,
		City:      loc.City,
		State:     loc.State,
		Zipcode:   loc.PostalCode,
		Country:   loc.Country,
	}
	out.FormattedAddress = formatAddress(out)
	return lookupResult{loc: out, found: true}, nil
}

func formatAddress(l Location) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{l.Street, l.City, l.State, l.Zipcode, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
