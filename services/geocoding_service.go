package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/internal/httpclient"
	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/ecovoyage/ecovoyage-backend/types"
	"go.uber.org/zap"
)

const geocodeTimeout = 15 * time.Second

// GeocodingService resolves a place name to a Coordinate via Nominatim.
// One network call per invocation, no retries, no caching: repeated calls
// for the same place re-issue the request. Any failure, including TLS
// verification errors, is logged and reported as not-found rather than
// propagated.
type GeocodingService struct {
	client    *httpclient.Client
	baseURL   string
	userAgent string
	log       *zap.SugaredLogger
}

func NewGeocodingService(client *httpclient.Client, userAgent string) *GeocodingService {
	return &GeocodingService{
		client:    client,
		baseURL:   "https://nominatim.openstreetmap.org/search",
		userAgent: userAgent,
		log:       logger.GetLogger(),
	}
}

// Resolve returns the first-match coordinate for place, or ok=false when the
// place could not be geocoded.
func (s *GeocodingService) Resolve(ctx context.Context, place string) (types.Coordinate, bool) {
	if place == "" {
		return types.Coordinate{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", place)
	params.Set("format", "json")
	params.Set("limit", "1")

	// Nominatim's usage policy requires an identifying User-Agent.
	headers := map[string]string{"User-Agent": s.userAgent}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := s.client.GetJSONNoRetry(ctx, s.baseURL, params, headers, &results); err != nil {
		s.log.Warnw("Geocoding request failed", "place", place, "error", err)
		return types.Coordinate{}, false
	}

	if len(results) == 0 {
		s.log.Infow("No geocoding results", "place", place)
		return types.Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		s.log.Warnw("Invalid latitude in geocoding response", "place", place, "lat", results[0].Lat)
		return types.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		s.log.Warnw("Invalid longitude in geocoding response", "place", place, "lon", results[0].Lon)
		return types.Coordinate{}, false
	}

	return types.Coordinate{Latitude: lat, Longitude: lon}, true
}
