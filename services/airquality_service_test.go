package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ecovoyage/ecovoyage-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parisGeocoder() *fakeGeocoder {
	return &fakeGeocoder{coord: types.Coordinate{Latitude: 48.8566, Longitude: 2.3522}, ok: true}
}

func TestStrategySelection(t *testing.T) {
	client := newTestClient()

	withKey := NewAirQualityService(client, parisGeocoder(), "key", false)
	assert.Equal(t, "openaq", withKey.strategy.name())

	withoutKey := NewAirQualityService(client, parisGeocoder(), "", false)
	assert.Equal(t, "open-meteo", withoutKey.strategy.name())

	forced := NewAirQualityService(client, parisGeocoder(), "key", true)
	assert.Equal(t, "open-meteo", forced.strategy.name(), "OPENMETEO_FORCE_JSON overrides the key")
}

func TestAirQualityGeocodeFailure(t *testing.T) {
	svc := NewAirQualityService(newTestClient(), &fakeGeocoder{ok: false}, "", false)

	got := svc.Fetch(context.Background(), "Atlantis")
	assert.Equal(t, "Could not geocode city 'Atlantis'.", got)
}

func TestOpenMeteoAirFormatsFirstHourlyValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pm10,pm2_5", r.URL.Query().Get("hourly"))
		fmt.Fprint(w, `{"hourly":{"pm10":[21.4,19.0],"pm2_5":[11.8,10.2]}}`)
	}))
	defer srv.Close()

	svc := NewAirQualityService(newTestClient(), parisGeocoder(), "", false)
	svc.strategy.(*openMeteoAirStrategy).baseURL = srv.URL

	got := svc.Fetch(context.Background(), "Paris")
	assert.Equal(t, "Open-Meteo air quality for Paris: PM10=21.4, PM2.5=11.8", got)
}

func TestOpenMeteoAirMissingSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"hourly":{"pm10":[],"pm2_5":[]}}`)
	}))
	defer srv.Close()

	svc := NewAirQualityService(newTestClient(), parisGeocoder(), "", false)
	svc.strategy.(*openMeteoAirStrategy).baseURL = srv.URL

	got := svc.Fetch(context.Background(), "Paris")
	assert.Equal(t, "Open-Meteo air quality for Paris: PM10=n/a, PM2.5=n/a", got)
}

func TestOpenAQFormatsMeasurements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, `{"data":[{"measurements":[{"parameter":"pm25","value":12.5},{"parameter":"pm10","value":20.1}]}]}`)
	}))
	defer srv.Close()

	svc := NewAirQualityService(newTestClient(), parisGeocoder(), "secret-key", false)
	svc.strategy.(*openAQStrategy).baseURL = srv.URL

	got := svc.Fetch(context.Background(), "Paris")
	assert.Equal(t, "Air quality in Paris (OpenAQ): PM2.5: 12.5, PM10: 20.1", got)
}

func TestOpenAQNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	svc := NewAirQualityService(newTestClient(), parisGeocoder(), "secret-key", false)
	svc.strategy.(*openAQStrategy).baseURL = srv.URL

	got := svc.Fetch(context.Background(), "Reykjavik")
	assert.Equal(t, "No air quality data found for Reykjavik.", got)
}

func TestOpenAQCachesResponsesPerCoordinate(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"data":[{"measurements":[{"parameter":"pm25","value":12.5}]}]}`)
	}))
	defer srv.Close()

	svc := NewAirQualityService(newTestClient(), parisGeocoder(), "secret-key", false)
	svc.strategy.(*openAQStrategy).baseURL = srv.URL

	first := svc.Fetch(context.Background(), "Paris")
	second := svc.Fetch(context.Background(), "Paris")

	require.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second fetch must come from the cache")
}
