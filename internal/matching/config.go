package matching

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Weights sets how much each investment factor counts when property types
// are matched to a plot. A zero weight switches the factor off.
type Weights struct {
	RentalROI     float64 `json:"rental_roi" yaml:"rental_roi"`
	GrossMargin   float64 `json:"gross_margin" yaml:"gross_margin"`
	NetAnnualRent float64 `json:"net_annual_rent" yaml:"net_annual_rent"`
	LowInvestment float64 `json:"low_investment" yaml:"low_investment"`
	BuildArea     float64 `json:"build_area" yaml:"build_area"`
}

func DefaultWeights() Weights {
	return Weights{
		RentalROI:     1.0,
		GrossMargin:   0.8,
		NetAnnualRent: 0.6,
		LowInvestment: 0.4,
		BuildArea:     0.3,
	}
}

func (w Weights) validate() error {
	for name, v := range map[string]float64{
		"rental_roi":      w.RentalROI,
		"gross_margin":    w.GrossMargin,
		"net_annual_rent": w.NetAnnualRent,
		"low_investment":  w.LowInvestment,
		"build_area":      w.BuildArea,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("weight %s must be a finite number >= 0, got %v", name, v)
		}
	}
	return nil
}

// LoadWeightsFromFile reads weights from JSON (or YAML for .yaml/.yml).
// Keys missing from the file keep their default. On error the defaults are
// returned with it so callers can log and carry on.
func LoadWeightsFromFile(path string) (Weights, error) {
	w := DefaultWeights()
	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	loaded := w
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &loaded)
	default:
		err = json.Unmarshal(b, &loaded)
	}
	if err != nil {
		return w, fmt.Errorf("unmarshal weights: %w", err)
	}
	if err := loaded.validate(); err != nil {
		return w, err
	}
	return loaded, nil
}
