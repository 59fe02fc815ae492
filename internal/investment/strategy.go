package investment

import (
	"math"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

const (
	compoundCoverage      = 0.40
	compoundBuildingCount = 4

	villasCoverage = 0.40
	villaFootprint = 300.0
)

type areaFunc func(landArea float64, numFloors int, r catalog.BuildRatios) float64

// strategy is everything that differs between property types: the area
// formula, sale and rent multipliers on the base price, and the optional
// supplementary report section.
type strategy struct {
	area           areaFunc
	saleMultiplier float64
	rentFraction   float64
	supplement     func(in supplementInput) *domain.Supplementary
}

var strategies = map[catalog.PropertyType]strategy{
	catalog.Tower: {
		area:           singleFootprintArea,
		saleMultiplier: 1.5,
		rentFraction:   0.08,
	},
	catalog.Hotel: {
		area:           singleFootprintArea,
		saleMultiplier: 1.6,
		rentFraction:   0.12,
	},
	catalog.AdministrativeBuilding: {
		area:           singleFootprintArea,
		saleMultiplier: 1.4,
		rentFraction:   0.09,
	},
	catalog.ResidentialCompound: {
		area:           compoundArea,
		saleMultiplier: 1.3,
		rentFraction:   0.07,
	},
	catalog.Villa: {
		area:           singleFootprintArea,
		saleMultiplier: 1.7,
		rentFraction:   0.06,
		supplement:     villaSupplement,
	},
	catalog.Villas: {
		area:           villasArea,
		saleMultiplier: 1.65,
		rentFraction:   0.07,
		supplement:     villasSupplement,
	},
	catalog.CommercialMall: {
		area:           singleFootprintArea,
		saleMultiplier: 1.8,
		rentFraction:   0.15,
		supplement:     mallSupplement,
	},
}

// SupportedTypes lists the property types the engine has formulas for.
func SupportedTypes() []catalog.PropertyType {
	return []catalog.PropertyType{
		catalog.Tower,
		catalog.Hotel,
		catalog.AdministrativeBuilding,
		catalog.ResidentialCompound,
		catalog.Villa,
		catalog.Villas,
		catalog.CommercialMall,
	}
}

// EffectiveBuildArea applies the area formula of pt. The (numFloors - 2)
// repeated-floor term is kept as is for one- and two-floor buildings.
func EffectiveBuildArea(pt catalog.PropertyType, landArea float64, numFloors int, r catalog.BuildRatios) (float64, error) {
	s, ok := strategies[pt]
	if !ok {
		return 0, &catalog.UnknownPropertyTypeError{PropertyType: string(pt)}
	}
	return s.area(landArea, numFloors, r), nil
}

// singleFootprintArea: ground floor, (n-2) repeated floors and a top
// attachment sized off the repeated floor.
func singleFootprintArea(landArea float64, numFloors int, r catalog.BuildRatios) float64 {
	ground := landArea * r.GroundFloor
	first := landArea * r.RepeatedFloor
	top := first * r.TopFloor
	return ground + first*float64(numFloors-2) + top
}

// compoundArea splits 40% of the land across four identical buildings.
func compoundArea(landArea float64, numFloors int, r catalog.BuildRatios) float64 {
	building := landArea * compoundCoverage / compoundBuildingCount
	perBuilding := building*r.GroundFloor +
		building*r.RepeatedFloor*float64(numFloors-2) +
		building*r.TopFloor
	return perBuilding * compoundBuildingCount
}

func villasArea(landArea float64, numFloors int, r catalog.BuildRatios) float64 {
	return singleVillaArea(numFloors, r) * float64(VillaCount(landArea))
}

func singleVillaArea(numFloors int, r catalog.BuildRatios) float64 {
	return villaFootprint*r.GroundFloor +
		villaFootprint*r.RepeatedFloor*float64(numFloors-2) +
		villaFootprint*r.TopFloor
}

// VillaCount is the number of standard 300 m² villas fitting on the
// buildable 40% of the land.
func VillaCount(landArea float64) int {
	return int(math.Floor(landArea * villasCoverage / villaFootprint))
}
