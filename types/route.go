package types

// RouteInfo describes a resolved route between two places. DistanceText and
// DurationText carry the provider's human-readable values; DistanceKm is the
// parsed numeric distance when the text was parsable. At most one of
// (DistanceKm, Err) is meaningfully populated per resolution.
type RouteInfo struct {
	DistanceText string   `json:"distance_text,omitempty"`
	DurationText string   `json:"duration_text,omitempty"`
	DistanceKm   *float64 `json:"distance_km,omitempty"`
	Err          string   `json:"error,omitempty"`
}
