package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/internal/httpclient"
	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/ecovoyage/ecovoyage-backend/types"
	"go.uber.org/zap"
)

// Geocoder resolves place names to coordinates. Satisfied by
// *GeocodingService; fetchers depend on the interface so tests can stub it.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (types.Coordinate, bool)
}

const weatherTimeout = 10 * time.Second

// WeatherService fetches current conditions for a place from Open-Meteo.
// Every failure degrades to a human-readable string; Fetch never returns an
// error.
type WeatherService struct {
	client   *httpclient.Client
	geocoder Geocoder
	baseURL  string
	log      *zap.SugaredLogger
}

func NewWeatherService(client *httpclient.Client, geocoder Geocoder) *WeatherService {
	return &WeatherService{
		client:   client,
		geocoder: geocoder,
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		log:      logger.GetLogger(),
	}
}

// Fetch returns a display string describing current weather at the place.
func (s *WeatherService) Fetch(ctx context.Context, place string) string {
	coord, ok := s.geocoder.Resolve(ctx, place)
	if !ok {
		return fmt.Sprintf("Could not geocode city '%s'.", place)
	}

	ctx, cancel := context.WithTimeout(ctx, weatherTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", coord.Latitude))
	params.Set("longitude", fmt.Sprintf("%f", coord.Longitude))
	params.Set("current_weather", "true")

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
		} `json:"current_weather"`
	}
	if err := s.client.GetJSON(ctx, s.baseURL, params, nil, &payload); err != nil {
		s.log.Warnw("Weather request failed", "place", place, "error", err)
		return fmt.Sprintf("Weather API error: %v", err)
	}

	reading := types.WeatherReading{
		TemperatureC: payload.CurrentWeather.Temperature,
		WindSpeedMS:  payload.CurrentWeather.WindSpeed,
		Description:  "Current conditions",
	}
	return fmt.Sprintf("Weather in %s: %.1f°C, wind %.1f m/s.", place, reading.TemperatureC, reading.WindSpeedMS)
}
