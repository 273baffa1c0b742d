package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/logger"
	"go.uber.org/zap"
)

// LocalTimeService approximates the current local time of a place by rounding
// its longitude to a whole-hour UTC offset (15 degrees per hour). Real time
// zones can differ from longitude slices; the daily itinerary only needs a
// rough local clock.
type LocalTimeService struct {
	geocoder Geocoder
	now      func() time.Time
	log      *zap.SugaredLogger
}

func NewLocalTimeService(geocoder Geocoder) *LocalTimeService {
	return &LocalTimeService{
		geocoder: geocoder,
		now:      time.Now,
		log:      logger.GetLogger(),
	}
}

// Fetch returns a display string with the approximate local time at the place.
func (s *LocalTimeService) Fetch(ctx context.Context, place string) string {
	coord, ok := s.geocoder.Resolve(ctx, place)
	if !ok {
		return fmt.Sprintf("Could not determine time for '%s'.", place)
	}

	offsetHours := int(math.Round(coord.Longitude / 15.0))
	local := s.now().UTC().Truncate(time.Second).Add(time.Duration(offsetHours) * time.Hour)

	label := "UTC"
	if offsetHours != 0 {
		label = fmt.Sprintf("UTC%+d", offsetHours)
	}
	return fmt.Sprintf("Approximate local time in %s: %s (%s)", place, local.Format("2006-01-02T15:04:05"), label)
}
