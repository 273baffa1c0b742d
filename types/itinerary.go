package types

// ItineraryContext aggregates everything gathered for one itinerary request.
// Weather, air quality and local time are carried as display strings: the
// fetchers degrade to human-readable placeholders on failure, and the
// assembler never needs the structured forms. The context is assembled once
// per request and discarded after rendering.
type ItineraryContext struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Route       RouteInfo `json:"route"`
	Weather     string    `json:"weather"`
	AirQuality  string    `json:"air_quality"`
	LocalTime   string    `json:"local_time"`
	Emissions   string    `json:"emissions"`
	ChosenMode  string    `json:"chosen_mode"`
}

// ItineraryRequest is the payload for generating an itinerary.
type ItineraryRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Mode        string `json:"mode,omitempty"`
}
