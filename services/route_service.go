package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/internal/httpclient"
	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/ecovoyage/ecovoyage-backend/types"
	"go.uber.org/zap"
)

const routeTimeout = 20 * time.Second

// distancePattern matches the numeric part of a provider distance text such
// as "552 km" or "1,234 km".
var distancePattern = regexp.MustCompile(`([0-9,.]+)\s*km`)

// RouteService resolves distance and duration between two places via the
// Google Maps Directions API. A missing key is reported as a descriptive
// route error without issuing any call.
type RouteService struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
	log     *zap.SugaredLogger
}

func NewRouteService(client *httpclient.Client, apiKey string) *RouteService {
	return &RouteService{
		client:  client,
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/directions/json",
		log:     logger.GetLogger(),
	}
}

// Resolve returns the first route's distance and duration text for the given
// origin, destination, and mode (default "driving"). Failures populate
// RouteInfo.Err; Resolve never returns an error.
func (s *RouteService) Resolve(ctx context.Context, origin, destination, mode string) types.RouteInfo {
	if s.apiKey == "" {
		return types.RouteInfo{Err: "(route unavailable: missing GOOGLE_MAPS_API_KEY)"}
	}
	if mode == "" {
		mode = "driving"
	}

	ctx, cancel := context.WithTimeout(ctx, routeTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", mode)
	params.Set("key", s.apiKey)

	var payload struct {
		Routes []struct {
			Legs []struct {
				Distance struct {
					Text string `json:"text"`
				} `json:"distance"`
				Duration struct {
					Text string `json:"text"`
				} `json:"duration"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := s.client.GetJSON(ctx, s.baseURL, params, nil, &payload); err != nil {
		s.log.Warnw("Directions request failed", "origin", origin, "destination", destination, "error", err)
		return types.RouteInfo{Err: fmt.Sprintf("(route error: %v)", err)}
	}

	if len(payload.Routes) == 0 || len(payload.Routes[0].Legs) == 0 {
		return types.RouteInfo{Err: "(no routes found)"}
	}

	leg := payload.Routes[0].Legs[0]
	info := types.RouteInfo{
		DistanceText: leg.Distance.Text,
		DurationText: leg.Duration.Text,
	}
	if km, ok := ParseDistanceKm(info.DistanceText); ok {
		info.DistanceKm = &km
	}
	return info
}

// ParseDistanceKm extracts a kilometer value from a provider distance text,
// stripping thousands separators and the unit suffix. ok is false when no
// numeric distance is available.
func ParseDistanceKm(distanceText string) (float64, bool) {
	if distanceText == "" {
		return 0, false
	}
	m := distancePattern.FindStringSubmatch(distanceText)
	if m == nil {
		return 0, false
	}
	km, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return km, true
}
