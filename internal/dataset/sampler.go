package dataset

import (
	"fmt"
	"math/rand/v2"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

// Range bounds the sampled inputs of one property type. Both ends are
// inclusive.
type Range struct {
	MinLandArea float64
	MaxLandArea float64
	MinFloors   int
	MaxFloors   int
}

var DefaultRanges = map[catalog.PropertyType]Range{
	catalog.Tower:                  {MinLandArea: 2000, MaxLandArea: 8000, MinFloors: 10, MaxFloors: 20},
	catalog.Hotel:                  {MinLandArea: 3000, MaxLandArea: 10000, MinFloors: 8, MaxFloors: 15},
	catalog.AdministrativeBuilding: {MinLandArea: 1500, MaxLandArea: 7000, MinFloors: 5, MaxFloors: 12},
	catalog.ResidentialCompound:    {MinLandArea: 4000, MaxLandArea: 15000, MinFloors: 4, MaxFloors: 8},
	catalog.Villa:                  {MinLandArea: 500, MaxLandArea: 2000, MinFloors: 2, MaxFloors: 4},
}

// DefaultTypes are the property types sampled when none are requested.
func DefaultTypes() []catalog.PropertyType {
	return []catalog.PropertyType{
		catalog.Tower,
		catalog.Hotel,
		catalog.AdministrativeBuilding,
		catalog.ResidentialCompound,
		catalog.Villa,
	}
}

// Sampler draws report requests: property type uniformly, then land area and
// floors from the type's range and a district from its catalog profile.
// The same seed always yields the same sequence. A Sampler is not safe for
// concurrent use.
type Sampler struct {
	rng       *rand.Rand
	types     []catalog.PropertyType
	ranges    map[catalog.PropertyType]Range
	districts map[catalog.PropertyType][]string
}

func NewSampler(c *catalog.Catalog, seed uint64, types []catalog.PropertyType) (*Sampler, error) {
	if len(types) == 0 {
		types = DefaultTypes()
	}
	s := &Sampler{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		types:     append([]catalog.PropertyType(nil), types...),
		ranges:    DefaultRanges,
		districts: make(map[catalog.PropertyType][]string, len(types)),
	}
	for _, pt := range s.types {
		r, ok := s.ranges[pt]
		if !ok {
			return nil, fmt.Errorf("no sampling range for property type %q", pt)
		}
		if r.MaxLandArea < r.MinLandArea || r.MaxFloors < r.MinFloors {
			return nil, fmt.Errorf("invalid sampling range for %q", pt)
		}
		ds, err := c.Districts(pt)
		if err != nil {
			return nil, err
		}
		if len(ds) == 0 {
			return nil, fmt.Errorf("property type %q has no districts", pt)
		}
		s.districts[pt] = ds
	}
	return s, nil
}

func (s *Sampler) Next() domain.ReportRequest {
	pt := s.types[s.rng.IntN(len(s.types))]
	r := s.ranges[pt]
	ds := s.districts[pt]
	return domain.ReportRequest{
		PropertyType: string(pt),
		LandArea:     r.MinLandArea + s.rng.Float64()*(r.MaxLandArea-r.MinLandArea),
		NumFloors:    r.MinFloors + s.rng.IntN(r.MaxFloors-r.MinFloors+1),
		District:     ds[s.rng.IntN(len(ds))],
	}
}

func (s *Sampler) Samples(n int) []domain.ReportRequest {
	if n <= 0 {
		return nil
	}
	out := make([]domain.ReportRequest, n)
	for i := range out {
		out[i] = s.Next()
	}
	return out
}
