package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const mapquestBody = `{
	"results": [{
		"locations": [{
			"street": "233 Bay State Rd",
			"adminArea5": "Boston",
			"adminArea3": "MA",
			"postalCode": "02215",
			"adminArea1": "US",
			"latLng": {"lat": 42.3505, "lng": -71.1054}
		}]
	}]
}`

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q, want test-key", r.URL.Query().Get("key"))
		}
		if r.URL.Query().Get("location") != "02215" {
			t.Errorf("location = %q, want 02215", r.URL.Query().Get("location"))
		}
		w.Write([]byte(mapquestBody))
	}))
	defer srv.Close()

	g := New(srv.URL, "test-key")
	loc, err := g.Geocode(context.Background(), "02215")
	if err != nil {
		t.Fatal(err)
	}

	if loc.Latitude != 42.3505 || loc.Longitude != -71.1054 {
		t.Errorf("lat/lng = %v/%v", loc.Latitude, loc.Longitude)
	}
	coords := loc.Coordinates()
	if coords[0] != -71.1054 || coords[1] != 42.3505 {
		t.Errorf("coordinates = %v, want [lng lat]", coords)
	}
	if loc.City != "Boston" || loc.Zipcode != "02215" {
		t.Errorf("address parts = %+v", loc)
	}
	if loc.FormattedAddress != "233 Bay State Rd, Boston, MA, 02215, US" {
		t.Errorf("formatted = %q", loc.FormattedAddress)
	}
}

func TestGeocodeNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "k")
	if _, err := g.Geocode(context.Background(), "00000"); err != ErrNoResult {
		t.Errorf("err = %v, want ErrNoResult", err)
	}
}

func TestGeocodeNoResultKeepsBreakerClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("location") == "00000" {
			w.Write([]byte(`{"results": []}`))
			return
		}
		w.Write([]byte(mapquestBody))
	}))
	defer srv.Close()

	g := New(srv.URL, "k")
	for i := 0; i < 10; i++ {
		if _, err := g.Geocode(context.Background(), "00000"); err != ErrNoResult {
			t.Fatalf("lookup %d: err = %v, want ErrNoResult", i, err)
		}
	}

	loc, err := g.Geocode(context.Background(), "02215")
	if err != nil {
		t.Fatalf("valid zipcode after unknown ones: %v", err)
	}
	if loc.City != "Boston" {
		t.Errorf("city = %q, want Boston", loc.City)
	}
}

func TestGeocodeBreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := New(srv.URL, "k")
	var lastErr error
	for i := 0; i < 10; i++ {
		_, lastErr = g.Geocode(context.Background(), "02215")
	}
	if lastErr == nil {
		t.Fatal("expected failures against a broken upstream")
	}
}
