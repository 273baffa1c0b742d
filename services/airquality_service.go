package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/internal/httpclient"
	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/ecovoyage/ecovoyage-backend/types"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const airQualityTimeout = 20 * time.Second

// airQualityStrategy is one provider path for particulate readings. The
// strategy is chosen once at construction time, not per call.
type airQualityStrategy interface {
	fetch(ctx context.Context, place string, coord types.Coordinate) string
	name() string
}

// AirQualityService fetches PM2.5/PM10 readings for a place. Two provider
// strategies exist: OpenAQ (richer, keyed, response-cached) and the keyless
// Open-Meteo JSON path. OPENMETEO_FORCE_JSON forces the latter.
type AirQualityService struct {
	geocoder Geocoder
	strategy airQualityStrategy
	log      *zap.SugaredLogger
}

func NewAirQualityService(client *httpclient.Client, geocoder Geocoder, openAQKey string, forceJSON bool) *AirQualityService {
	var strategy airQualityStrategy
	if openAQKey != "" && !forceJSON {
		strategy = &openAQStrategy{
			client:  client,
			apiKey:  openAQKey,
			baseURL: "https://api.openaq.org/v3/latest",
			cache:   gocache.New(time.Hour, 10*time.Minute),
			log:     logger.GetLogger(),
		}
	} else {
		strategy = &openMeteoAirStrategy{
			client:  client,
			baseURL: "https://air-quality-api.open-meteo.com/v1/air-quality",
			log:     logger.GetLogger(),
		}
	}

	return &AirQualityService{
		geocoder: geocoder,
		strategy: strategy,
		log:      logger.GetLogger(),
	}
}

// Fetch returns a display string with the latest particulate readings for the
// place. Failures degrade to descriptive strings.
func (s *AirQualityService) Fetch(ctx context.Context, place string) string {
	coord, ok := s.geocoder.Resolve(ctx, place)
	if !ok {
		return fmt.Sprintf("Could not geocode city '%s'.", place)
	}
	return s.strategy.fetch(ctx, place, coord)
}

// openMeteoAirStrategy is the JSON-only path: keyless, first hourly pm10 and
// pm2_5 values. TLS failures run the policy ladder in the shared client.
type openMeteoAirStrategy struct {
	client  *httpclient.Client
	baseURL string
	log     *zap.SugaredLogger
}

func (o *openMeteoAirStrategy) name() string { return "open-meteo" }

func (o *openMeteoAirStrategy) fetch(ctx context.Context, place string, coord types.Coordinate) string {
	ctx, cancel := context.WithTimeout(ctx, airQualityTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", coord.Latitude))
	params.Set("longitude", fmt.Sprintf("%f", coord.Longitude))
	params.Set("hourly", "pm10,pm2_5")
	params.Set("format", "json")

	var payload struct {
		Hourly struct {
			PM10 []float64 `json:"pm10"`
			PM25 []float64 `json:"pm2_5"`
		} `json:"hourly"`
	}
	note, err := o.client.GetJSONWithPolicy(ctx, o.baseURL, params, nil, &payload)
	if err != nil {
		o.log.Warnw("Open-Meteo air quality request failed", "place", place, "error", err)
		return fmt.Sprintf("Air quality API error (Open-Meteo): %v", err)
	}

	sample := types.AirQualitySample{Source: "Open-Meteo"}
	if len(payload.Hourly.PM25) > 0 {
		sample.PM25 = &payload.Hourly.PM25[0]
	}
	if len(payload.Hourly.PM10) > 0 {
		sample.PM10 = &payload.Hourly.PM10[0]
	}

	result := fmt.Sprintf("Open-Meteo air quality for %s: PM10=%s, PM2.5=%s",
		place, formatReading(sample.PM10), formatReading(sample.PM25))
	if note != "" {
		return note + " " + result
	}
	return result
}

// openAQStrategy is the richer path: keyed OpenAQ lookup with a one-hour
// response cache keyed by coordinate.
type openAQStrategy struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
	cache   *gocache.Cache
	log     *zap.SugaredLogger
}

func (o *openAQStrategy) name() string { return "openaq" }

func (o *openAQStrategy) fetch(ctx context.Context, place string, coord types.Coordinate) string {
	cacheKey := fmt.Sprintf("%.4f,%.4f", coord.Latitude, coord.Longitude)
	if cached, found := o.cache.Get(cacheKey); found {
		return formatOpenAQ(place, cached.(types.AirQualitySample))
	}

	ctx, cancel := context.WithTimeout(ctx, airQualityTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("coordinates", fmt.Sprintf("%f,%f", coord.Latitude, coord.Longitude))
	params.Set("radius", "12000")
	params.Set("limit", "1")

	headers := map[string]string{"X-API-Key": o.apiKey}

	var payload struct {
		Data []struct {
			Measurements []struct {
				Parameter string  `json:"parameter"`
				Value     float64 `json:"value"`
			} `json:"measurements"`
		} `json:"data"`
	}
	if err := o.client.GetJSON(ctx, o.baseURL, params, headers, &payload); err != nil {
		o.log.Warnw("OpenAQ request failed", "place", place, "error", err)
		return fmt.Sprintf("Air quality API error (OpenAQ): %v", err)
	}

	if len(payload.Data) == 0 {
		return fmt.Sprintf("No air quality data found for %s.", place)
	}

	sample := types.AirQualitySample{Source: "OpenAQ"}
	for _, m := range payload.Data[0].Measurements {
		v := m.Value
		switch m.Parameter {
		case "pm25":
			if sample.PM25 == nil {
				sample.PM25 = &v
			}
		case "pm10":
			if sample.PM10 == nil {
				sample.PM10 = &v
			}
		}
	}

	o.cache.Set(cacheKey, sample, gocache.DefaultExpiration)
	return formatOpenAQ(place, sample)
}

func formatOpenAQ(place string, sample types.AirQualitySample) string {
	return fmt.Sprintf("Air quality in %s (OpenAQ): PM2.5: %s, PM10: %s",
		place, formatReading(sample.PM25), formatReading(sample.PM10))
}

func formatReading(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}
