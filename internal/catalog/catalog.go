package catalog

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

type PropertyType string

const (
	Tower                  PropertyType = "tower"
	Hotel                  PropertyType = "hotel"
	AdministrativeBuilding PropertyType = "administrative_building"
	ResidentialCompound    PropertyType = "residential_compound"
	Villa                  PropertyType = "villa"
	Villas                 PropertyType = "villas"
	CommercialMall         PropertyType = "commercial_mall"
)

func (t PropertyType) String() string {
	return string(t)
}

// ParsePropertyType normalizes user input ("Commercial Mall", "commercial-mall")
// to the catalog key form. It does not check that the type exists.
func ParsePropertyType(s string) PropertyType {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return PropertyType(s)
}

// AlternativeRatioFloorThreshold is the floor count above which a profile's
// alternative ratio set replaces the primary one.
const AlternativeRatioFloorThreshold = 4

var (
	ErrUnknownPropertyType = errors.New("unknown property type")
	ErrUnknownDistrict     = errors.New("unknown district")
)

type UnknownPropertyTypeError struct {
	PropertyType string
}

func (e *UnknownPropertyTypeError) Error() string {
	return fmt.Sprintf("property type %q not found", e.PropertyType)
}

func (e *UnknownPropertyTypeError) Is(target error) bool {
	return target == ErrUnknownPropertyType
}

type UnknownDistrictError struct {
	PropertyType string
	District     string
}

func (e *UnknownDistrictError) Error() string {
	return fmt.Sprintf("district %q not found for property type %q", e.District, e.PropertyType)
}

func (e *UnknownDistrictError) Is(target error) bool {
	return target == ErrUnknownDistrict
}

type DistrictPrice struct {
	BasePrice float64 `json:"base_price" yaml:"base_price"`
	Premium   float64 `json:"premium" yaml:"premium"`
}

// BuildRatios are the usable fractions of a footprint per story category.
// Single-footprint types read RepeatedFloor as the first-floor ratio and
// TopFloor as the top attachment ratio.
type BuildRatios struct {
	GroundFloor   float64 `json:"ground_floor" yaml:"ground_floor"`
	RepeatedFloor float64 `json:"repeated_floor" yaml:"repeated_floor"`
	TopFloor      float64 `json:"top_floor" yaml:"top_floor"`
}

func (r BuildRatios) isZero() bool {
	return r == BuildRatios{}
}

func (r BuildRatios) validate() error {
	for name, v := range map[string]float64{
		"ground_floor":   r.GroundFloor,
		"repeated_floor": r.RepeatedFloor,
		"top_floor":      r.TopFloor,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%s ratio %v outside [0,1]", name, v)
		}
	}
	return nil
}

type UnitSize struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Profile is the catalog entry of one property type. A profile with
// BorrowsFrom set takes its districts and ratios from that profile and must
// not declare its own.
type Profile struct {
	BorrowsFrom       PropertyType             `json:"borrows_from,omitempty" yaml:"borrows_from,omitempty"`
	Districts         map[string]DistrictPrice `json:"districts,omitempty" yaml:"districts,omitempty"`
	BuildRatios       BuildRatios              `json:"build_ratios" yaml:"build_ratios"`
	AlternativeRatios BuildRatios              `json:"alternative_ratios" yaml:"alternative_ratios"`
	UnitSizes         map[string]UnitSize      `json:"unit_sizes,omitempty" yaml:"unit_sizes,omitempty"`
}

func (p Profile) clone() Profile {
	out := p
	if p.Districts != nil {
		out.Districts = make(map[string]DistrictPrice, len(p.Districts))
		for k, v := range p.Districts {
			out.Districts[k] = v
		}
	}
	if p.UnitSizes != nil {
		out.UnitSizes = make(map[string]UnitSize, len(p.UnitSizes))
		for k, v := range p.UnitSizes {
			out.UnitSizes[k] = v
		}
	}
	return out
}

type Costs struct {
	ConstructionPerSqm    float64                `json:"construction_cost_per_sqm" yaml:"construction_cost_per_sqm"`
	Additional            domain.AdditionalCosts `json:"additional_costs" yaml:"additional_costs"`
	OperatingExpenseRatio float64                `json:"operating_expense_ratio" yaml:"operating_expense_ratio"`
}

// nonNegative reports whether v is a finite number >= 0. NaN fails every
// comparison, so a bare v < 0 check would let it through.
func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func (c Costs) validate() error {
	if !nonNegative(c.ConstructionPerSqm) {
		return fmt.Errorf("construction_cost_per_sqm must be a finite number >= 0, got %v", c.ConstructionPerSqm)
	}
	a := c.Additional
	for name, v := range map[string]float64{
		"design":           a.Design,
		"legal_and_admin":  a.LegalAndAdmin,
		"site_development": a.SiteDevelopment,
	} {
		if !nonNegative(v) {
			return fmt.Errorf("additional cost %s must be a finite number >= 0, got %v", name, v)
		}
	}
	if !nonNegative(c.OperatingExpenseRatio) || c.OperatingExpenseRatio > 1 {
		return fmt.Errorf("operating_expense_ratio must be in [0,1], got %v", c.OperatingExpenseRatio)
	}
	return nil
}

// Document is the serializable form of a catalog.
type Document struct {
	Costs    *Costs                   `json:"costs,omitempty" yaml:"costs,omitempty"`
	Profiles map[PropertyType]Profile `json:"profiles" yaml:"profiles"`
}

// Catalog is an immutable pricing catalog. It is safe for concurrent use.
type Catalog struct {
	costs    Costs
	profiles map[PropertyType]Profile
}

// New validates doc and returns a catalog holding its own copy of the data.
// A nil doc.Costs means DefaultCosts.
func New(doc Document) (*Catalog, error) {
	costs := DefaultCosts()
	if doc.Costs != nil {
		costs = *doc.Costs
	}
	if err := costs.validate(); err != nil {
		return nil, fmt.Errorf("costs: %w", err)
	}

	c := &Catalog{
		costs:    costs,
		profiles: make(map[PropertyType]Profile, len(doc.Profiles)),
	}
	for pt, p := range doc.Profiles {
		c.profiles[pt] = p.clone()
	}
	for pt, p := range c.profiles {
		if err := c.validateProfile(pt, p); err != nil {
			return nil, fmt.Errorf("profile %s: %w", pt, err)
		}
	}
	return c, nil
}

func (c *Catalog) validateProfile(pt PropertyType, p Profile) error {
	if p.BorrowsFrom != "" {
		src, ok := c.profiles[p.BorrowsFrom]
		if !ok {
			return fmt.Errorf("borrows from unknown profile %q", p.BorrowsFrom)
		}
		if src.BorrowsFrom != "" {
			return fmt.Errorf("borrows from %q which borrows itself", p.BorrowsFrom)
		}
		if len(p.Districts) > 0 || !p.BuildRatios.isZero() || !p.AlternativeRatios.isZero() {
			return fmt.Errorf("borrowing profile must not declare districts or ratios")
		}
		return nil
	}
	if err := p.BuildRatios.validate(); err != nil {
		return fmt.Errorf("build_ratios: %w", err)
	}
	if err := p.AlternativeRatios.validate(); err != nil {
		return fmt.Errorf("alternative_ratios: %w", err)
	}
	for name, d := range p.Districts {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("empty district name")
		}
		if !nonNegative(d.BasePrice) || !nonNegative(d.Premium) {
			return fmt.Errorf("district %q: price and premium must be finite numbers >= 0, got %v and %v", name, d.BasePrice, d.Premium)
		}
	}
	return nil
}

// Quote is the resolved pricing and ratio data of a (property type, district) pair.
type Quote struct {
	PropertyType      PropertyType
	Source            PropertyType
	District          string
	BasePrice         float64
	Premium           float64
	BuildRatios       BuildRatios
	AlternativeRatios BuildRatios
}

// RatiosFor applies the floor-count rule and reports whether the alternative
// set was chosen.
func (q Quote) RatiosFor(numFloors int) (BuildRatios, bool) {
	return SelectRatios(q.BuildRatios, q.AlternativeRatios, numFloors)
}

func SelectRatios(primary, alternative BuildRatios, numFloors int) (BuildRatios, bool) {
	if numFloors > AlternativeRatioFloorThreshold {
		return alternative, true
	}
	return primary, false
}

// Lookup resolves the base price, premium and ratio sets for a request.
func (c *Catalog) Lookup(pt PropertyType, district string) (Quote, error) {
	p, ok := c.profiles[pt]
	if !ok {
		return Quote{}, &UnknownPropertyTypeError{PropertyType: string(pt)}
	}
	src := pt
	if p.BorrowsFrom != "" {
		src = p.BorrowsFrom
		p = c.profiles[src]
	}
	price, ok := p.Districts[district]
	if !ok {
		return Quote{}, &UnknownDistrictError{PropertyType: string(pt), District: district}
	}
	return Quote{
		PropertyType:      pt,
		Source:            src,
		District:          district,
		BasePrice:         price.BasePrice,
		Premium:           price.Premium,
		BuildRatios:       p.BuildRatios,
		AlternativeRatios: p.AlternativeRatios,
	}, nil
}

func (c *Catalog) Costs() Costs {
	return c.costs
}

// PropertyTypes lists the catalog keys in lexical order.
func (c *Catalog) PropertyTypes() []PropertyType {
	out := make([]PropertyType, 0, len(c.profiles))
	for pt := range c.profiles {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Districts lists the districts a property type can be priced in, following
// borrowing.
func (c *Catalog) Districts(pt PropertyType) ([]string, error) {
	p, ok := c.profiles[pt]
	if !ok {
		return nil, &UnknownPropertyTypeError{PropertyType: string(pt)}
	}
	if p.BorrowsFrom != "" {
		p = c.profiles[p.BorrowsFrom]
	}
	out := make([]string, 0, len(p.Districts))
	for d := range p.Districts {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}

// Profile returns a copy of the declared (unresolved) profile.
func (c *Catalog) Profile(pt PropertyType) (Profile, bool) {
	p, ok := c.profiles[pt]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// Document returns a copy of the catalog in serializable form.
func (c *Catalog) Document() Document {
	costs := c.costs
	doc := Document{
		Costs:    &costs,
		Profiles: make(map[PropertyType]Profile, len(c.profiles)),
	}
	for pt, p := range c.profiles {
		doc.Profiles[pt] = p.clone()
	}
	return doc
}
