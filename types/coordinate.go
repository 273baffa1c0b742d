package types

// Coordinate is a resolved latitude/longitude pair for a place name.
// It is produced only by the geocoding service and never mutated after
// creation.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
