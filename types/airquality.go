package types

// AirQualitySample holds the first relevant particulate readings returned by
// an air-quality provider. Source labels which provider produced the sample.
type AirQualitySample struct {
	PM25   *float64 `json:"pm25,omitempty"`
	PM10   *float64 `json:"pm10,omitempty"`
	Source string   `json:"source"`
}
