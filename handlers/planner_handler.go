package handlers

import (
	"net/http"
	"strconv"

	apperrors "github.com/ecovoyage/ecovoyage-backend/errors"
	"github.com/ecovoyage/ecovoyage-backend/services"
	"github.com/ecovoyage/ecovoyage-backend/types"
	"github.com/gin-gonic/gin"
)

// PlannerHandler exposes the trip-planning services over HTTP. Every lookup
// endpoint mirrors the service contract: the result is a display string and
// provider failures surface inside it rather than as error statuses.
type PlannerHandler struct {
	weather     *services.WeatherService
	airQuality  *services.AirQualityService
	localTime   *services.LocalTimeService
	emissions   *services.EmissionsService
	routes      *services.RouteService
	hotels      *services.HotelService
	pricing     *services.PricingService
	flights     *services.FlightService
	restaurants *services.RestaurantService
	itineraries *services.ItineraryService
}

func NewPlannerHandler(
	weather *services.WeatherService,
	airQuality *services.AirQualityService,
	localTime *services.LocalTimeService,
	emissions *services.EmissionsService,
	routes *services.RouteService,
	hotels *services.HotelService,
	pricing *services.PricingService,
	flights *services.FlightService,
	restaurants *services.RestaurantService,
	itineraries *services.ItineraryService,
) *PlannerHandler {
	return &PlannerHandler{
		weather:     weather,
		airQuality:  airQuality,
		localTime:   localTime,
		emissions:   emissions,
		routes:      routes,
		hotels:      hotels,
		pricing:     pricing,
		flights:     flights,
		restaurants: restaurants,
		itineraries: itineraries,
	}
}

// GetWeather handles GET /v1/weather?city=
func (h *PlannerHandler) GetWeather(c *gin.Context) {
	city, ok := requiredQuery(c, "city")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"city":   city,
		"result": h.weather.Fetch(c.Request.Context(), city),
	})
}

// GetAirQuality handles GET /v1/air-quality?city=
func (h *PlannerHandler) GetAirQuality(c *gin.Context) {
	city, ok := requiredQuery(c, "city")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"city":   city,
		"result": h.airQuality.Fetch(c.Request.Context(), city),
	})
}

// GetLocalTime handles GET /v1/time?city=
func (h *PlannerHandler) GetLocalTime(c *gin.Context) {
	city, ok := requiredQuery(c, "city")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"city":   city,
		"result": h.localTime.Fetch(c.Request.Context(), city),
	})
}

// GetEmissions handles GET /v1/emissions?mode=&distance_km=
func (h *PlannerHandler) GetEmissions(c *gin.Context) {
	mode, ok := requiredQuery(c, "mode")
	if !ok {
		return
	}
	distanceRaw, ok := requiredQuery(c, "distance_km")
	if !ok {
		return
	}
	distanceKm, err := strconv.ParseFloat(distanceRaw, 64)
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid distance", "distance_km must be a number"))
		return
	}
	if distanceKm < 0 {
		_ = c.Error(apperrors.ValidationFailed("Invalid distance", "distance_km must be non-negative"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mode":        mode,
		"distance_km": distanceKm,
		"result":      h.emissions.Estimate(mode, distanceKm),
	})
}

// GetRoute handles GET /v1/route?origin=&destination=&mode=
func (h *PlannerHandler) GetRoute(c *gin.Context) {
	origin, ok := requiredQuery(c, "origin")
	if !ok {
		return
	}
	destination, ok := requiredQuery(c, "destination")
	if !ok {
		return
	}
	route := h.routes.Resolve(c.Request.Context(), origin, destination, c.Query("mode"))
	c.JSON(http.StatusOK, gin.H{
		"origin":      origin,
		"destination": destination,
		"route":       route,
	})
}

// GetHotels handles GET /v1/hotels?city=&limit=&realtime=
func (h *PlannerHandler) GetHotels(c *gin.Context) {
	city, ok := requiredQuery(c, "city")
	if !ok {
		return
	}
	limit := intQuery(c, "limit", 5)

	var result string
	if c.Query("realtime") == "true" {
		result = h.pricing.Search(c.Request.Context(), city, limit)
	} else {
		result = h.hotels.Search(c.Request.Context(), city, limit)
	}
	c.JSON(http.StatusOK, gin.H{
		"city":   city,
		"result": result,
	})
}

// GetFlights handles GET /v1/flights?origin=&destination=&limit=
func (h *PlannerHandler) GetFlights(c *gin.Context) {
	origin, ok := requiredQuery(c, "origin")
	if !ok {
		return
	}
	destination, ok := requiredQuery(c, "destination")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"origin":      origin,
		"destination": destination,
		"result":      h.flights.Search(c.Request.Context(), origin, destination, intQuery(c, "limit", 5)),
	})
}

// GetRestaurants handles GET /v1/restaurants?city=&cuisine=&price_level=&min_rating=&limit=
func (h *PlannerHandler) GetRestaurants(c *gin.Context) {
	city, ok := requiredQuery(c, "city")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"city": city,
		"result": h.restaurants.Search(c.Request.Context(), city, c.Query("cuisine"),
			intQuery(c, "price_level", 0), floatQuery(c, "min_rating", 0), intQuery(c, "limit", 5)),
	})
}

// CreateItinerary handles POST /v1/itineraries
func (h *PlannerHandler) CreateItinerary(c *gin.Context) {
	var req types.ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", "origin and destination are required"))
		return
	}

	itinerary, info := h.itineraries.Create(c.Request.Context(), req.Origin, req.Destination, req.Mode)
	c.JSON(http.StatusOK, gin.H{
		"itinerary": itinerary,
		"context":   info,
	})
}

func requiredQuery(c *gin.Context, key string) (string, bool) {
	value := c.Query(key)
	if value == "" {
		_ = c.Error(apperrors.ValidationFailed("Missing query parameter", key+" is required"))
		return "", false
	}
	return value, true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func floatQuery(c *gin.Context, key string, fallback float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
