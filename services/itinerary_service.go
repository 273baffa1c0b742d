package services

import (
	"context"
	"fmt"

	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/ecovoyage/ecovoyage-backend/types"
	"go.uber.org/zap"
)

const (
	trainDistanceThresholdKm = 800.0

	itineraryPrompt = "Using the provided travel context, craft a 3-5 day sustainable itinerary. " +
		"Prioritize low-carbon transport, local experiences, eco-friendly lodging, and concise daily plans. " +
		"Include an overview, daily breakdown, sustainability tips, and an emissions reduction suggestion.\n\n"

	fallbackItinerary = "(LLM unavailable) Draft itinerary:\n" +
		"Day 1: Arrival and orientation; walking tour to minimize transport emissions.\n" +
		"Day 2: Public transit to key sights; choose plant-based meals.\n" +
		"Day 3: Regional nature excursion via train or shared shuttle.\n" +
		"Day 4: Local cultural experiences; support small sustainable businesses.\n" +
		"Day 5: Departure; offset remaining emissions through a reputable program."
)

// RouteResolver yields route facts between two places.
type RouteResolver interface {
	Resolve(ctx context.Context, origin, destination, mode string) types.RouteInfo
}

// PlaceFetcher produces a display string for a place. Weather, air quality
// and local time all satisfy it.
type PlaceFetcher interface {
	Fetch(ctx context.Context, place string) string
}

// EmissionsEstimator produces a display string for a mode and distance.
type EmissionsEstimator interface {
	Estimate(mode string, distanceKm float64) string
}

// ItineraryService composes route, weather, air quality, local time and
// emissions data into a context block and asks the generator for a
// sustainable itinerary. A nil generator yields the canned draft.
type ItineraryService struct {
	routes    RouteResolver
	weather   PlaceFetcher
	air       PlaceFetcher
	localTime PlaceFetcher
	emissions EmissionsEstimator
	generator TextGenerator
	log       *zap.SugaredLogger
}

func NewItineraryService(routes RouteResolver, weather, air, localTime PlaceFetcher, emissions EmissionsEstimator, generator TextGenerator) *ItineraryService {
	return &ItineraryService{
		routes:    routes,
		weather:   weather,
		air:       air,
		localTime: localTime,
		emissions: emissions,
		generator: generator,
		log:       logger.GetLogger(),
	}
}

// Create builds the itinerary for a trip and returns the rendered text along
// with the context it was generated from. The mode argument forces a
// transport mode; when empty, train is chosen under the distance threshold
// and an electric car otherwise.
func (s *ItineraryService) Create(ctx context.Context, origin, destination, mode string) (string, types.ItineraryContext) {
	route := s.routes.Resolve(ctx, origin, destination, "driving")

	chosenMode := mode
	if chosenMode == "" {
		if route.DistanceKm != nil && *route.DistanceKm < trainDistanceThresholdKm {
			chosenMode = "train"
		} else {
			chosenMode = "car_electric"
		}
	}

	emissions := "(emissions unavailable)"
	if route.DistanceKm != nil {
		emissions = s.emissions.Estimate(chosenMode, *route.DistanceKm)
	}

	info := types.ItineraryContext{
		Origin:      origin,
		Destination: destination,
		Route:       route,
		Weather:     s.weather.Fetch(ctx, destination),
		AirQuality:  s.air.Fetch(ctx, destination),
		LocalTime:   s.localTime.Fetch(ctx, destination),
		Emissions:   emissions,
		ChosenMode:  chosenMode,
	}

	contextBlock := fmt.Sprintf(
		"Origin: %s\nDestination: %s\n"+
			"Distance: %s | Duration: %s\n"+
			"Weather: %s\nAirQuality: %s\nLocalTime: %s\nEmissions: %s\n"+
			"PreferredMode: %s\n",
		info.Origin, info.Destination,
		orUnknown(route.DistanceText), orUnknown(route.DurationText),
		info.Weather, info.AirQuality, info.LocalTime, info.Emissions,
		info.ChosenMode,
	)

	text := s.generate(ctx, itineraryPrompt+contextBlock)

	out := "=== Sustainable Travel Itinerary ===\n" + text +
		"\n\n=== Raw Context ===\n" + contextBlock
	if route.Err != "" {
		out += fmt.Sprintf("RouteStatus: %s\n", route.Err)
	}
	return out, info
}

func (s *ItineraryService) generate(ctx context.Context, prompt string) string {
	if s.generator == nil {
		return fallbackItinerary
	}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.log.Warnw("Itinerary generation fell back", "error", err)
		return fmt.Sprintf("(LLM generation failed: %v)", err)
	}
	return text
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}
