package types

// WeatherReading is a request-scoped snapshot of current conditions at a
// coordinate.
type WeatherReading struct {
	TemperatureC float64  `json:"temperature_c"`
	WindSpeedMS  float64  `json:"wind_speed_ms"`
	Humidity     *float64 `json:"humidity,omitempty"`
	Description  string   `json:"description"`
}
