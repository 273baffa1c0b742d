package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/ecovoyage/ecovoyage-backend/types"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// EmissionsService estimates transport CO2 emissions from a static per-mode
// factor table. The table is loaded once per process: it is static for the
// process lifetime, so the original per-call reload is not reproduced.
type EmissionsService struct {
	factorsPath string
	once        sync.Once
	factors     types.EmissionFactorTable
	loadErr     error
	log         *zap.SugaredLogger
}

func NewEmissionsService(factorsPath string) *EmissionsService {
	return &EmissionsService{
		factorsPath: factorsPath,
		log:         logger.GetLogger(),
	}
}

// Estimate returns a display string reporting kilograms of CO2 for the trip,
// computed as factor[mode] * distanceKm / 1000 and formatted to two decimal
// places. An unknown mode is reported, never fatal: the message names the
// invalid mode and enumerates every supported one.
func (s *EmissionsService) Estimate(mode string, distanceKm float64) string {
	factors, err := s.table()
	if err != nil {
		s.log.Errorw("Emission factor table unavailable", "path", s.factorsPath, "error", err)
		return fmt.Sprintf("Emission factors unavailable: %v", err)
	}

	factor, ok := factors[mode]
	if !ok {
		return fmt.Sprintf("Mode '%s' not supported. Choose from: %s", mode, strings.Join(s.ValidModes(), ", "))
	}

	kg := factor * distanceKm / 1000.0
	return fmt.Sprintf("Estimated emissions for %.1f km by %s: %.2f kg CO2", distanceKm, mode, kg)
}

// ValidModes returns the sorted mode names of the factor table.
func (s *EmissionsService) ValidModes() []string {
	factors, err := s.table()
	if err != nil {
		return nil
	}
	modes := lo.Keys(factors)
	sort.Strings(modes)
	return modes
}

func (s *EmissionsService) table() (types.EmissionFactorTable, error) {
	s.once.Do(func() {
		s.factors, s.loadErr = loadFactorTable(s.factorsPath)
	})
	return s.factors, s.loadErr
}

// loadFactorTable reads the CSV factor table and enforces its invariants:
// non-empty mode names and non-negative factors.
func loadFactorTable(path string) (types.EmissionFactorTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open factor table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read factor table: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("factor table %q has no data rows", path)
	}

	header := records[0]
	modeIdx, gramsIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "mode":
			modeIdx = i
		case "grams_co2_per_km":
			gramsIdx = i
		}
	}
	if modeIdx < 0 || gramsIdx < 0 {
		return nil, fmt.Errorf("factor table %q missing mode/grams_co2_per_km columns", path)
	}

	table := make(types.EmissionFactorTable, len(records)-1)
	for _, row := range records[1:] {
		if len(row) <= modeIdx || len(row) <= gramsIdx {
			return nil, fmt.Errorf("factor table %q has a short row", path)
		}
		mode := strings.TrimSpace(row[modeIdx])
		if mode == "" {
			return nil, fmt.Errorf("factor table %q contains an empty mode name", path)
		}
		grams, err := strconv.ParseFloat(strings.TrimSpace(row[gramsIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("factor table %q has a non-numeric factor for %s: %w", path, mode, err)
		}
		if grams < 0 {
			return nil, fmt.Errorf("factor table %q has a negative factor for %s", path, mode)
		}
		table[mode] = grams
	}

	return table, nil
}
