package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newFakeOverpass(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"elements":[{"tags":{"name":"Budget Inn","stars":"1"}}]}`)
	}))
}

// newFakeAmadeus serves the auth, hotel list and hotel offers endpoints.
func newFakeAmadeus(t *testing.T, listJSON, offersJSON string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok","expires_in":1799}`)
	})
	mux.HandleFunc(amadeusHotelListPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "5", r.URL.Query().Get("radius"))
		assert.Equal(t, "MILE", r.URL.Query().Get("radiusUnit"))
		fmt.Fprint(w, listJSON)
	})
	mux.HandleFunc(amadeusHotelOffers, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("bestRateOnly"))
		assert.Equal(t, "NONE", r.URL.Query().Get("paymentPolicy"))
		fmt.Fprint(w, offersJSON)
	})
	return httptest.NewServer(mux)
}

func newPricingFixture(t *testing.T, amadeusURL string, key, secret string) *PricingService {
	t.Helper()
	client := newTestClient()
	overpass := newFakeOverpass(t)
	t.Cleanup(overpass.Close)

	hotels := NewHotelService(client, parisGeocoder())
	hotels.baseURL = overpass.URL

	auth := NewAmadeusAuth(client, amadeusURL, key, secret)
	return NewPricingService(client, parisGeocoder(), hotels, auth, amadeusURL, 7, 1)
}

func TestPricingSearchCheapestFirst(t *testing.T) {
	srv := newFakeAmadeus(t,
		`{"data":[{"hotelId":"AAA"},{"hotelId":"BBB"}]}`,
		`{"data":[
			{"hotel":{"name":"Grand Palace","address":{"lines":["1 Rue Royale","75008 Paris"]}},"offers":[{"price":{"total":"310.00","currency":"EUR"}}]},
			{"hotel":{"name":"Budget Stay"},"offers":[{"price":{"total":"95.50","currency":"EUR"}}]}
		]}`)
	defer srv.Close()

	svc := newPricingFixture(t, srv.URL, "key", "secret")

	got := svc.Search(context.Background(), "Paris", 5)
	assert.True(t, strings.HasPrefix(got, "Real-time hotel prices (Amadeus) in Paris (cheapest first):"), got)
	assert.Contains(t, got, "- Budget Stay | (address unavailable) | 95.50 EUR")
	assert.Contains(t, got, "- Grand Palace | 1 Rue Royale, 75008 Paris | 310.00 EUR")
	assert.Less(t, strings.Index(got, "Budget Stay"), strings.Index(got, "Grand Palace"))
	assert.Contains(t, got, "Amadeus test environment")

	checkin := time.Now().AddDate(0, 0, 7)
	assert.Contains(t, got, fmt.Sprintf("prices are for %s to %s",
		checkin.Format("2006-01-02"), checkin.AddDate(0, 0, 1).Format("2006-01-02")))
}

func TestPricingSearchUnconfiguredFallsBack(t *testing.T) {
	svc := newPricingFixture(t, "http://unused.invalid", "", "")

	got := svc.Search(context.Background(), "Paris", 5)
	assert.True(t, strings.HasPrefix(got, "(live pricing unavailable: missing AMADEUS_API_KEY/AMADEUS_API_SECRET)\n"), got)
	assert.Contains(t, got, "Budget Inn", "fallback must include the heuristic listing")
}

func TestPricingSearchNoHotelsFallsBack(t *testing.T) {
	srv := newFakeAmadeus(t, `{"data":[]}`, `{"data":[]}`)
	defer srv.Close()

	svc := newPricingFixture(t, srv.URL, "key", "secret")

	got := svc.Search(context.Background(), "Paris", 5)
	assert.True(t, strings.HasPrefix(got, "(live pricing unavailable: no Amadeus hotels near destination)\n"), got)
	assert.Contains(t, got, "Budget Inn")
}

func TestPricingSearchNoOffersFallsBack(t *testing.T) {
	srv := newFakeAmadeus(t, `{"data":[{"hotelId":"AAA"}]}`, `{"data":[]}`)
	defer srv.Close()

	svc := newPricingFixture(t, srv.URL, "key", "secret")

	got := svc.Search(context.Background(), "Paris", 5)
	assert.True(t, strings.HasPrefix(got, "(live pricing unavailable: no Amadeus offers for requested dates)\n"), got)
}

func TestPricingSearchAuthFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := newPricingFixture(t, srv.URL, "key", "bad-secret")

	got := svc.Search(context.Background(), "Paris", 5)
	assert.True(t, strings.HasPrefix(got, "(live pricing unavailable: Amadeus authentication failed)\n"), got)
	assert.Contains(t, got, "Budget Inn")
}

func TestPricingStayNightsFloor(t *testing.T) {
	client := newTestClient()
	auth := NewAmadeusAuth(client, "", "key", "secret")
	svc := NewPricingService(client, parisGeocoder(), nil, auth, "", 7, 0)
	assert.Equal(t, 1, svc.stayNights)
}

func TestPricingSearchGeocodeFailure(t *testing.T) {
	client := newTestClient()
	hotels := NewHotelService(client, &fakeGeocoder{ok: false})
	auth := NewAmadeusAuth(client, "http://unused.invalid", "key", "secret")
	svc := NewPricingService(client, &fakeGeocoder{ok: false}, hotels, auth, "http://unused.invalid", 7, 1)

	got := svc.Search(context.Background(), "Atlantis", 5)
	assert.Equal(t, "Could not geocode city 'Atlantis' for hotel search.", got)
}
