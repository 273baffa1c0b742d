package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFactorFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factors.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const testFactors = `mode,grams_co2_per_km
train,41
car_electric,53
car_gas,192
bus,105
plane,255
bike,0
walk,0
`

func TestEstimateComputesKilograms(t *testing.T) {
	svc := NewEmissionsService(writeFactorFile(t, testFactors))

	got := svc.Estimate("train", 250)
	assert.Equal(t, "Estimated emissions for 250.0 km by train: 10.25 kg CO2", got)
}

func TestEstimateZeroFactorMode(t *testing.T) {
	svc := NewEmissionsService(writeFactorFile(t, testFactors))

	got := svc.Estimate("bike", 42.5)
	assert.Equal(t, "Estimated emissions for 42.5 km by bike: 0.00 kg CO2", got)
}

func TestEstimateUnknownModeListsAllModes(t *testing.T) {
	svc := NewEmissionsService(writeFactorFile(t, testFactors))

	got := svc.Estimate("teleport", 100)
	assert.Equal(t, "Mode 'teleport' not supported. Choose from: bike, bus, car_electric, car_gas, plane, train, walk", got)
}

func TestValidModesSorted(t *testing.T) {
	svc := NewEmissionsService(writeFactorFile(t, testFactors))

	assert.Equal(t, []string{"bike", "bus", "car_electric", "car_gas", "plane", "train", "walk"}, svc.ValidModes())
}

func TestEstimateMissingTable(t *testing.T) {
	svc := NewEmissionsService(filepath.Join(t.TempDir(), "nonexistent.csv"))

	got := svc.Estimate("train", 100)
	assert.Contains(t, got, "Emission factors unavailable")
	assert.Nil(t, svc.ValidModes())
}

func TestFactorTableLoadedOncePerProcess(t *testing.T) {
	path := writeFactorFile(t, testFactors)
	svc := NewEmissionsService(path)

	first := svc.Estimate("train", 100)

	// Rewriting the file must not change results: the table is cached after
	// the first load.
	require.NoError(t, os.WriteFile(path, []byte("mode,grams_co2_per_km\ntrain,9999\n"), 0o600))

	second := svc.Estimate("train", 100)
	assert.Equal(t, first, second)
}

func TestLoadFactorTableRejectsNegativeFactor(t *testing.T) {
	_, err := loadFactorTable(writeFactorFile(t, "mode,grams_co2_per_km\ntrain,-5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative factor")
}

func TestLoadFactorTableRejectsEmptyMode(t *testing.T) {
	_, err := loadFactorTable(writeFactorFile(t, "mode,grams_co2_per_km\n ,41\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty mode")
}

func TestLoadFactorTableRejectsMissingColumns(t *testing.T) {
	_, err := loadFactorTable(writeFactorFile(t, "transport,grams\ntrain,41\n"))
	require.Error(t, err)
}

func TestLoadFactorTableRejectsEmptyFile(t *testing.T) {
	_, err := loadFactorTable(writeFactorFile(t, "mode,grams_co2_per_km\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}
