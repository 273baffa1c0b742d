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
	amadeusLocationsPath = "/v1/reference-data/locations"
	amadeusFlightOffers  = "/v2/shopping/flight-offers"
	flightSearchTimeout  = 30 * time.Second
)

// FlightService searches Amadeus flight offers between two cities, resolving
// each city name to an IATA code first. Like pricing, it never raises: when
// credentials are absent or a step fails it returns a descriptive message.
type FlightService struct {
	client       *httpclient.Client
	auth         *AmadeusAuth
	baseURL      string
	departOffset int
	log          *zap.SugaredLogger
}

func NewFlightService(client *httpclient.Client, auth *AmadeusAuth, baseURL string, departOffsetDays int) *FlightService {
	return &FlightService{
		client:       client,
		auth:         auth,
		baseURL:      baseURL,
		departOffset: departOffsetDays,
		log:          logger.GetLogger(),
	}
}

// Search returns a display string with up to limit one-way offers between the
// two cities, cheapest first.
func (s *FlightService) Search(ctx context.Context, origin, destination string, limit int) string {
	if limit <= 0 {
		limit = 5
	}

	if !s.auth.Configured() {
		return "Flight search unavailable: missing AMADEUS_API_KEY/AMADEUS_API_SECRET."
	}

	ctx, cancel := context.WithTimeout(ctx, flightSearchTimeout)
	defer cancel()

	token, err := s.auth.Token(ctx)
	if err != nil {
		s.log.Warnw("Amadeus authentication failed", "error", err)
		return "Flight search unavailable: Amadeus authentication failed."
	}

	originCode, err := s.iataCode(ctx, token, origin)
	if err != nil {
		return fmt.Sprintf("Could not resolve an airport for '%s'.", origin)
	}
	destCode, err := s.iataCode(ctx, token, destination)
	if err != nil {
		return fmt.Sprintf("Could not resolve an airport for '%s'.", destination)
	}

	offers, err := s.flightOffers(ctx, token, originCode, destCode, limit)
	if err != nil {
		s.log.Warnw("Amadeus flight offers failed", "origin", originCode, "destination", destCode, "error", err)
		return fmt.Sprintf("Flight search error for %s -> %s: %v", origin, destination, err)
	}
	if len(offers) == 0 {
		return fmt.Sprintf("No flights found from %s (%s) to %s (%s).", origin, originCode, destination, destCode)
	}

	sort.Slice(offers, func(i, j int) bool { return offers[i].total < offers[j].total })
	if len(offers) > limit {
		offers = offers[:limit]
	}

	lines := make([]string, 0, len(offers))
	for _, o := range offers {
		lines = append(lines, fmt.Sprintf("- %s | %s | %.2f %s", o.carrier, o.duration, o.total, o.currency))
	}

	return fmt.Sprintf("Flights %s (%s) -> %s (%s) on %s (cheapest first):\n%s",
		origin, originCode, destination, destCode, s.departureDate(), strings.Join(lines, "\n"))
}

func (s *FlightService) departureDate() string {
	return time.Now().AddDate(0, 0, s.departOffset).Format("2006-01-02")
}

// iataCode resolves a free-form city name to the first matching city or
// airport code.
func (s *FlightService) iataCode(ctx context.Context, token, city string) (string, error) {
	query := url.Values{}
	query.Set("keyword", city)
	query.Set("subType", "CITY,AIRPORT")
	query.Set("page[limit]", "1")

	var payload struct {
		Data []struct {
			IataCode string `json:"iataCode"`
		} `json:"data"`
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	if err := s.client.GetJSON(ctx, s.baseURL+amadeusLocationsPath, query, headers, &payload); err != nil {
		return "", err
	}
	if len(payload.Data) == 0 || payload.Data[0].IataCode == "" {
		return "", fmt.Errorf("no IATA code for %q", city)
	}
	return payload.Data[0].IataCode, nil
}

type flightOffer struct {
	carrier  string
	duration string
	total    float64
	currency string
}

func (s *FlightService) flightOffers(ctx context.Context, token, originCode, destCode string, limit int) ([]flightOffer, error) {
	query := url.Values{}
	query.Set("originLocationCode", originCode)
	query.Set("destinationLocationCode", destCode)
	query.Set("departureDate", s.departureDate())
	query.Set("adults", "1")
	query.Set("max", strconv.Itoa(limit * 2))
	query.Set("currencyCode", "USD")

	var payload struct {
		Data []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
			ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
			Itineraries            []struct {
				Duration string `json:"duration"`
			} `json:"itineraries"`
		} `json:"data"`
		Dictionaries struct {
			Carriers map[string]string `json:"carriers"`
		} `json:"dictionaries"`
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	if err := s.client.GetJSON(ctx, s.baseURL+amadeusFlightOffers, query, headers, &payload); err != nil {
		return nil, err
	}

	offers := make([]flightOffer, 0, len(payload.Data))
	for _, d := range payload.Data {
		total, err := strconv.ParseFloat(d.Price.Total, 64)
		if err != nil {
			continue
		}
		carrier := "(unknown carrier)"
		if len(d.ValidatingAirlineCodes) > 0 {
			code := d.ValidatingAirlineCodes[0]
			if name, ok := payload.Dictionaries.Carriers[code]; ok && name != "" {
				carrier = fmt.Sprintf("%s (%s)", name, code)
			} else {
				carrier = code
			}
		}
		duration := "n/a"
		if len(d.Itineraries) > 0 && d.Itineraries[0].Duration != "" {
			duration = strings.TrimPrefix(d.Itineraries[0].Duration, "PT")
		}
		offers = append(offers, flightOffer{carrier: carrier, duration: duration, total: total, currency: d.Price.Currency})
	}
	return offers, nil
}
