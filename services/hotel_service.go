package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/internal/httpclient"
	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	hotelSearchTimeout = 30 * time.Second
	hotelSearchRadiusM = 5000
)

// hotelListing is one reshaped Overpass hotel element with its heuristic
// price estimate.
type hotelListing struct {
	Name       string
	Address    string
	Stars      int // 0 = unrated
	MidPrice   float64
	PriceRange string
}

// HotelService finds hotels near a place via the OpenStreetMap Overpass API
// and attaches heuristic nightly price ranges derived from star ratings.
// This is the non-real-time path; PricingService layers live offers on top.
type HotelService struct {
	client   *httpclient.Client
	geocoder Geocoder
	baseURL  string
	log      *zap.SugaredLogger
}

func NewHotelService(client *httpclient.Client, geocoder Geocoder) *HotelService {
	return &HotelService{
		client:   client,
		geocoder: geocoder,
		baseURL:  "https://overpass-api.de/api/interpreter",
		log:      logger.GetLogger(),
	}
}

// Search returns a display string listing up to limit hotels near the place,
// cheapest heuristic estimate first.
func (s *HotelService) Search(ctx context.Context, place string, limit int) string {
	if limit <= 0 {
		limit = 5
	}

	coord, ok := s.geocoder.Resolve(ctx, place)
	if !ok {
		return fmt.Sprintf("Could not geocode city '%s' for hotel search.", place)
	}

	elements, err := s.queryOverpass(ctx, overpassHotelQuery(coord.Latitude, coord.Longitude, limit))
	if err != nil {
		s.log.Warnw("Hotel search failed", "place", place, "error", err)
		return fmt.Sprintf("Hotel search error for %s: %v", place, err)
	}

	if len(elements) == 0 {
		return fmt.Sprintf("No hotels found in %s (within %.1fkm radius).", place, float64(hotelSearchRadiusM)/1000)
	}

	listings := lo.Map(elements, func(e overpassElement, _ int) hotelListing {
		return reshapeHotel(e)
	})
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].MidPrice < listings[j].MidPrice
	})
	if len(listings) > limit {
		listings = listings[:limit]
	}

	lines := lo.Map(listings, func(h hotelListing, _ int) string {
		stars := "(unrated)"
		if h.Stars > 0 {
			stars = fmt.Sprintf("%d★", h.Stars)
		}
		return fmt.Sprintf("- %s | %s | %s | Est. price: %s", h.Name, stars, h.Address, h.PriceRange)
	})

	disclaimer := "Price ranges are heuristic estimates derived from OSM star ratings; " +
		"they are not real-time prices. For actual rates, consult a booking provider."
	return fmt.Sprintf("Top %d hotels (cheapest first) in %s:\n%s\n%s",
		len(listings), place, strings.Join(lines, "\n"), disclaimer)
}

type overpassElement struct {
	Tags map[string]string `json:"tags"`
}

func (s *HotelService) queryOverpass(ctx context.Context, query string) ([]overpassElement, error) {
	ctx, cancel := context.WithTimeout(ctx, hotelSearchTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("data", query)

	var payload struct {
		Elements []overpassElement `json:"elements"`
	}
	if err := s.client.PostFormJSON(ctx, s.baseURL, form, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Elements, nil
}

func overpassHotelQuery(lat, lon float64, limit int) string {
	return fmt.Sprintf(`[out:json][timeout:25];
(
  node["tourism"="hotel"](around:%d,%f,%f);
  way["tourism"="hotel"](around:%d,%f,%f);
);
out body %d;`, hotelSearchRadiusM, lat, lon, hotelSearchRadiusM, lat, lon, limit*4)
}

func reshapeHotel(e overpassElement) hotelListing {
	name := e.Tags["name"]
	if name == "" {
		name = "(unnamed hotel)"
	}

	var addrParts []string
	if street := e.Tags["addr:street"]; street != "" {
		addrParts = append(addrParts, strings.TrimSpace(e.Tags["addr:housenumber"]+" "+street))
	}
	if city := e.Tags["addr:city"]; city != "" {
		addrParts = append(addrParts, city)
	}
	address := "(address unavailable)"
	if len(addrParts) > 0 {
		address = strings.Join(addrParts, ", ")
	}

	stars := 0
	if raw := e.Tags["stars"]; raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			stars = v
		}
	}

	mid, priceRange := estimateNightlyPrice(stars)
	return hotelListing{
		Name:       name,
		Address:    address,
		Stars:      stars,
		MidPrice:   mid,
		PriceRange: priceRange,
	}
}

// estimateNightlyPrice maps an OSM star rating to a heuristic USD price
// range; unrated hotels get a generic mid-range estimate.
func estimateNightlyPrice(stars int) (float64, string) {
	switch stars {
	case 5:
		return 325, "$250-$400"
	case 4:
		return 240, "$180-$300"
	case 3:
		return 160, "$120-$200"
	case 2:
		return 100, "$80-$120"
	case 1:
		return 65, "$50-$80"
	default:
		return 140, "$100-$180"
	}
}
