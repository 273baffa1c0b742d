package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/internal/httpclient"
	"github.com/ecovoyage/ecovoyage-backend/logger"
	"go.uber.org/zap"
)

const (
	restaurantSearchTimeout = 30 * time.Second
	restaurantSearchRadiusM = 3000

	// Unstarred places are treated as mid-range when a budget cap is set.
	restaurantDefaultPriceLevel = 2
)

// RestaurantService finds restaurants near a place via the Overpass API.
// Cuisine is matched against the OSM tag; the rating and price-level filters
// run on the OSM stars tag with a heuristic star-to-budget mapping, since
// OSM carries no native price data.
type RestaurantService struct {
	client   *httpclient.Client
	geocoder Geocoder
	baseURL  string
	log      *zap.SugaredLogger
}

func NewRestaurantService(client *httpclient.Client, geocoder Geocoder) *RestaurantService {
	return &RestaurantService{
		client:   client,
		geocoder: geocoder,
		baseURL:  "https://overpass-api.de/api/interpreter",
		log:      logger.GetLogger(),
	}
}

// Search returns a display string listing up to limit restaurants near the
// place. cuisine filters on the OSM cuisine tag; minRating (stars, 0 = off)
// keeps only rated places at or above it; priceLevel (1-4, 0 = off) caps the
// heuristic budget level derived from the stars tag.
func (s *RestaurantService) Search(ctx context.Context, place, cuisine string, priceLevel int, minRating float64, limit int) string {
	if limit <= 0 {
		limit = 5
	}

	coord, ok := s.geocoder.Resolve(ctx, place)
	if !ok {
		return fmt.Sprintf("Could not geocode city '%s' for restaurant search.", place)
	}

	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node["amenity"="restaurant"](around:%d,%f,%f);
);
out body %d;`, restaurantSearchRadiusM, coord.Latitude, coord.Longitude, limit*6)

	ctx, cancel := context.WithTimeout(ctx, restaurantSearchTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("data", query)

	var payload struct {
		Elements []overpassElement `json:"elements"`
	}
	if err := s.client.PostFormJSON(ctx, s.baseURL, form, nil, &payload); err != nil {
		s.log.Warnw("Restaurant search failed", "place", place, "error", err)
		return fmt.Sprintf("Restaurant search error for %s: %v", place, err)
	}

	wantCuisine := strings.ToLower(strings.TrimSpace(cuisine))
	var lines []string
	for _, e := range payload.Elements {
		name := e.Tags["name"]
		if name == "" {
			continue
		}
		tagCuisine := strings.ToLower(e.Tags["cuisine"])
		if wantCuisine != "" && !strings.Contains(tagCuisine, wantCuisine) {
			continue
		}

		stars := restaurantStars(e.Tags)
		if minRating > 0 && (stars == 0 || float64(stars) < minRating) {
			continue
		}
		if priceLevel > 0 && restaurantPriceLevel(stars) > priceLevel {
			continue
		}

		display := tagCuisine
		if display == "" {
			display = "(cuisine unknown)"
		}
		line := fmt.Sprintf("- %s | %s", name, display)
		if stars > 0 {
			line += fmt.Sprintf(" | %d★", stars)
		}
		lines = append(lines, line)
		if len(lines) == limit {
			break
		}
	}

	if len(lines) == 0 {
		if wantCuisine != "" {
			return fmt.Sprintf("No %s restaurants found in %s (within %.1fkm radius).",
				wantCuisine, place, float64(restaurantSearchRadiusM)/1000)
		}
		return fmt.Sprintf("No restaurants found in %s (within %.1fkm radius).",
			place, float64(restaurantSearchRadiusM)/1000)
	}

	return fmt.Sprintf("Restaurants in %s:\n%s", place, strings.Join(lines, "\n"))
}

func restaurantStars(tags map[string]string) int {
	stars, err := strconv.Atoi(strings.TrimSpace(tags["stars"]))
	if err != nil || stars < 0 {
		return 0
	}
	return stars
}

// restaurantPriceLevel maps a star rating onto the 1 (cheap) to 4 (splurge)
// budget scale used by the price-level filter.
func restaurantPriceLevel(stars int) int {
	switch {
	case stars == 0:
		return restaurantDefaultPriceLevel
	case stars >= 5:
		return 4
	case stars == 4:
		return 3
	case stars == 3:
		return 2
	default:
		return 1
	}
}
