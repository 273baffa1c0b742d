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
	"go.uber.org/zap"
)

const (
	amadeusHotelListPath = "/v1/reference-data/locations/hotels/by-geocode"
	amadeusHotelOffers   = "/v3/shopping/hotel-offers"
	amadeusTimeout       = 30 * time.Second
	amadeusHotelIDBatch  = 20
)

// PricingService fetches real-time hotel offers from the Amadeus self-service
// API. Any failure along the chain falls back to the heuristic hotel search
// so callers always receive a usable listing.
type PricingService struct {
	client        *httpclient.Client
	geocoder      Geocoder
	hotels        *HotelService
	auth          *AmadeusAuth
	baseURL       string
	checkinOffset int
	stayNights    int
	log           *zap.SugaredLogger
}

func NewPricingService(client *httpclient.Client, geocoder Geocoder, hotels *HotelService, auth *AmadeusAuth, baseURL string, checkinOffsetDays, stayNights int) *PricingService {
	if stayNights < 1 {
		stayNights = 1
	}
	return &PricingService{
		client:        client,
		geocoder:      geocoder,
		hotels:        hotels,
		auth:          auth,
		baseURL:       baseURL,
		checkinOffset: checkinOffsetDays,
		stayNights:    stayNights,
		log:           logger.GetLogger(),
	}
}

// Search returns live hotel prices for the place, cheapest first. When the
// Amadeus credentials are absent or any API step fails, it degrades to the
// heuristic listing with a parenthesized note explaining why.
func (s *PricingService) Search(ctx context.Context, place string, limit int) string {
	if limit <= 0 {
		limit = 5
	}

	if !s.auth.Configured() {
		return "(live pricing unavailable: missing AMADEUS_API_KEY/AMADEUS_API_SECRET)\n" +
			s.hotels.Search(ctx, place, limit)
	}

	coord, ok := s.geocoder.Resolve(ctx, place)
	if !ok {
		return fmt.Sprintf("Could not geocode city '%s' for hotel search.", place)
	}

	ctx, cancel := context.WithTimeout(ctx, amadeusTimeout)
	defer cancel()

	token, err := s.auth.Token(ctx)
	if err != nil {
		s.log.Warnw("Amadeus authentication failed", "error", err)
		return "(live pricing unavailable: Amadeus authentication failed)\n" +
			s.hotels.Search(ctx, place, limit)
	}

	ids, err := s.hotelIDs(ctx, token, coord.Latitude, coord.Longitude)
	if err != nil {
		s.log.Warnw("Amadeus hotel list failed", "place", place, "error", err)
		return "(live pricing unavailable: Amadeus hotel lookup failed)\n" +
			s.hotels.Search(ctx, place, limit)
	}
	if len(ids) == 0 {
		return "(live pricing unavailable: no Amadeus hotels near destination)\n" +
			s.hotels.Search(ctx, place, limit)
	}

	checkin := time.Now().AddDate(0, 0, s.checkinOffset)
	checkout := checkin.AddDate(0, 0, s.stayNights)

	offers, err := s.hotelOffers(ctx, token, ids, checkin, checkout)
	if err != nil {
		s.log.Warnw("Amadeus hotel offers failed", "place", place, "error", err)
		return "(live pricing unavailable: Amadeus offer search failed)\n" +
			s.hotels.Search(ctx, place, limit)
	}
	if len(offers) == 0 {
		return "(live pricing unavailable: no Amadeus offers for requested dates)\n" +
			s.hotels.Search(ctx, place, limit)
	}

	sort.Slice(offers, func(i, j int) bool { return offers[i].total < offers[j].total })
	if len(offers) > limit {
		offers = offers[:limit]
	}

	lines := make([]string, 0, len(offers))
	for _, o := range offers {
		lines = append(lines, fmt.Sprintf("- %s | %s | %.2f %s", o.name, o.address, o.total, o.currency))
	}

	warning := fmt.Sprintf("Note: prices are for %s to %s from the Amadeus test environment and may differ from production rates.",
		checkin.Format("2006-01-02"), checkout.Format("2006-01-02"))
	return fmt.Sprintf("Real-time hotel prices (Amadeus) in %s (cheapest first):\n%s\n%s",
		place, strings.Join(lines, "\n"), warning)
}

func (s *PricingService) hotelIDs(ctx context.Context, token string, lat, lon float64) ([]string, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%f", lat))
	query.Set("longitude", fmt.Sprintf("%f", lon))
	query.Set("radius", "5")
	query.Set("radiusUnit", "MILE")

	var payload struct {
		Data []struct {
			HotelID string `json:"hotelId"`
		} `json:"data"`
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	if err := s.client.GetJSON(ctx, s.baseURL+amadeusHotelListPath, query, headers, &payload); err != nil {
		return nil, err
	}

	ids := make([]string, 0, amadeusHotelIDBatch)
	for _, d := range payload.Data {
		if d.HotelID == "" {
			continue
		}
		ids = append(ids, d.HotelID)
		if len(ids) == amadeusHotelIDBatch {
			break
		}
	}
	return ids, nil
}

type hotelOffer struct {
	name     string
	address  string
	total    float64
	currency string
}

func (s *PricingService) hotelOffers(ctx context.Context, token string, ids []string, checkin, checkout time.Time) ([]hotelOffer, error) {
	query := url.Values{}
	query.Set("hotelIds", strings.Join(ids, ","))
	query.Set("checkInDate", checkin.Format("2006-01-02"))
	query.Set("checkOutDate", checkout.Format("2006-01-02"))
	query.Set("adults", "1")
	query.Set("roomQuantity", "1")
	query.Set("paymentPolicy", "NONE")
	query.Set("bestRateOnly", "true")

	var payload struct {
		Data []struct {
			Hotel struct {
				Name    string `json:"name"`
				Address struct {
					Lines []string `json:"lines"`
				} `json:"address"`
			} `json:"hotel"`
			Offers []struct {
				Price struct {
					Total    string `json:"total"`
					Currency string `json:"currency"`
				} `json:"price"`
			} `json:"offers"`
		} `json:"data"`
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	if err := s.client.GetJSON(ctx, s.baseURL+amadeusHotelOffers, query, headers, &payload); err != nil {
		return nil, err
	}

	offers := make([]hotelOffer, 0, len(payload.Data))
	for _, d := range payload.Data {
		if len(d.Offers) == 0 {
			continue
		}
		total, err := strconv.ParseFloat(d.Offers[0].Price.Total, 64)
		if err != nil {
			continue
		}
		name := d.Hotel.Name
		if name == "" {
			name = "(unnamed hotel)"
		}
		address := "(address unavailable)"
		if len(d.Hotel.Address.Lines) > 0 {
			address = strings.Join(d.Hotel.Address.Lines, ", ")
		}
		offers = append(offers, hotelOffer{name: name, address: address, total: total, currency: d.Offers[0].Price.Currency})
	}
	return offers, nil
}
