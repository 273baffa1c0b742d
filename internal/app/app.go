// Package app wires configuration into the planner's service graph. The HTTP
// server and the CLI share the same wiring.
package app

import (
	"time"

	"github.com/ecovoyage/ecovoyage-backend/config"
	"github.com/ecovoyage/ecovoyage-backend/internal/httpclient"
	"github.com/ecovoyage/ecovoyage-backend/services"
)

const (
	amadeusBaseURL    = "https://test.api.amadeus.com"
	httpClientTimeout = 30 * time.Second
)

// App holds the fully wired planner services.
type App struct {
	Config      *config.Config
	Geocoder    *services.GeocodingService
	Weather     *services.WeatherService
	AirQuality  *services.AirQualityService
	LocalTime   *services.LocalTimeService
	Emissions   *services.EmissionsService
	Routes      *services.RouteService
	Hotels      *services.HotelService
	Pricing     *services.PricingService
	Flights     *services.FlightService
	Restaurants *services.RestaurantService
	Itineraries *services.ItineraryService
}

// New builds the service graph from configuration. A missing OpenAI key
// leaves the generator nil, which downgrades itineraries to the canned draft.
func New(cfg *config.Config) *App {
	client := httpclient.New(httpClientTimeout, httpclient.TLSPolicy{
		AllowInsecure:        cfg.AirQuality.AllowInsecure,
		AutoAcceptUnverified: cfg.AirQuality.AutoAcceptUnverified,
		CaptureChain:         cfg.AirQuality.CaptureChain,
		ChainFile:            cfg.AirQuality.ChainFile,
	})

	geocoder := services.NewGeocodingService(client, cfg.ExternalServices.NominatimAgent)
	weather := services.NewWeatherService(client, geocoder)
	airQuality := services.NewAirQualityService(client, geocoder, cfg.ExternalServices.OpenAQKey, cfg.AirQuality.ForceJSON)
	localTime := services.NewLocalTimeService(geocoder)
	emissions := services.NewEmissionsService(cfg.Emissions.FactorsPath)
	routes := services.NewRouteService(client, cfg.ExternalServices.GoogleMapsKey)
	hotels := services.NewHotelService(client, geocoder)
	restaurants := services.NewRestaurantService(client, geocoder)

	auth := services.NewAmadeusAuth(client, amadeusBaseURL, cfg.ExternalServices.AmadeusKey, cfg.ExternalServices.AmadeusSecret)
	pricing := services.NewPricingService(client, geocoder, hotels, auth, amadeusBaseURL,
		cfg.Pricing.CheckinOffsetDays, cfg.Pricing.StayNights)
	flights := services.NewFlightService(client, auth, amadeusBaseURL, cfg.Pricing.CheckinOffsetDays)

	var generator services.TextGenerator
	if cfg.ExternalServices.OpenAIKey != "" {
		generator = services.NewOpenAIGenerator(cfg.ExternalServices.OpenAIKey, cfg.ExternalServices.GenerationModel)
	}
	itineraries := services.NewItineraryService(routes, weather, airQuality, localTime, emissions, generator)

	return &App{
		Config:      cfg,
		Geocoder:    geocoder,
		Weather:     weather,
		AirQuality:  airQuality,
		LocalTime:   localTime,
		Emissions:   emissions,
		Routes:      routes,
		Hotels:      hotels,
		Pricing:     pricing,
		Flights:     flights,
		Restaurants: restaurants,
		Itineraries: itineraries,
	}
}
