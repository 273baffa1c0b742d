package app

import (
	"os"
	"testing"

	"github.com/ecovoyage/ecovoyage-backend/config"
	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	logger.InitLogger()
	os.Exit(m.Run())
}

func TestNewWiresAllServices(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	a := New(cfg)

	assert.NotNil(t, a.Geocoder)
	assert.NotNil(t, a.Weather)
	assert.NotNil(t, a.AirQuality)
	assert.NotNil(t, a.LocalTime)
	assert.NotNil(t, a.Emissions)
	assert.NotNil(t, a.Routes)
	assert.NotNil(t, a.Hotels)
	assert.NotNil(t, a.Pricing)
	assert.NotNil(t, a.Flights)
	assert.NotNil(t, a.Restaurants)
	assert.NotNil(t, a.Itineraries)
	assert.Same(t, cfg, a.Config)
}
