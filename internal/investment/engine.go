package investment

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

var (
	ErrInvalidLandArea   = errors.New("land_area must be a finite number > 0")
	ErrInvalidFloorCount = errors.New("num_floors must be >= 1")
)

// Engine turns report requests into investment reports. It only reads its
// catalog, so one Engine may serve any number of goroutines.
type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	if c == nil {
		c = catalog.Default()
	}
	return &Engine{catalog: c}
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// ValidateRequest checks the numeric inputs. Property type and district are
// checked against the catalog by GenerateReport.
func ValidateRequest(req domain.ReportRequest) error {
	if math.IsNaN(req.LandArea) || math.IsInf(req.LandArea, 0) || req.LandArea <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidLandArea, req.LandArea)
	}
	if req.NumFloors < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidFloorCount, req.NumFloors)
	}
	return nil
}

// Normalize returns req with the property type in catalog key form and the
// district trimmed.
func Normalize(req domain.ReportRequest) domain.ReportRequest {
	req.PropertyType = string(catalog.ParsePropertyType(req.PropertyType))
	req.District = strings.TrimSpace(req.District)
	return req
}

// GenerateReport validates req, resolves its catalog entry and returns the
// full report. Nothing is returned on error.
func (e *Engine) GenerateReport(req domain.ReportRequest) (domain.InvestmentReport, error) {
	if err := ValidateRequest(req); err != nil {
		return domain.InvestmentReport{}, err
	}
	raw := req
	req = Normalize(req)
	pt := catalog.PropertyType(req.PropertyType)

	s, ok := strategies[pt]
	if !ok {
		return domain.InvestmentReport{}, &catalog.UnknownPropertyTypeError{PropertyType: raw.PropertyType}
	}
	q, err := e.catalog.Lookup(pt, req.District)
	if err != nil {
		return domain.InvestmentReport{}, withRawValues(err, raw)
	}

	ratios, usedAlt := q.RatiosFor(req.NumFloors)
	area := s.area(req.LandArea, req.NumFloors, ratios)
	costs := e.catalog.Costs()
	figures := computeFigures(req.LandArea, area, q, s, costs)

	return assemble(pt, req.District, req.NumFloors, ratios, usedAlt, s, supplementInput{
		quote:    q,
		costs:    costs,
		landArea: req.LandArea,
		figures:  figures,
	}), nil
}

// withRawValues puts the caller's spelling back into catalog errors, which
// were raised against the normalized key.
func withRawValues(err error, raw domain.ReportRequest) error {
	var badType *catalog.UnknownPropertyTypeError
	if errors.As(err, &badType) {
		return &catalog.UnknownPropertyTypeError{PropertyType: raw.PropertyType}
	}
	var badDistrict *catalog.UnknownDistrictError
	if errors.As(err, &badDistrict) {
		return &catalog.UnknownDistrictError{PropertyType: badDistrict.PropertyType, District: raw.District}
	}
	return err
}

// Figures is GenerateReport without the display strings.
func (e *Engine) Figures(req domain.ReportRequest) (domain.Figures, error) {
	rep, err := e.GenerateReport(req)
	if err != nil {
		return domain.Figures{}, err
	}
	return rep.Figures, nil
}
