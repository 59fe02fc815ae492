package catalog

import "github.com/denisok6893-rgb/property-investment/internal/domain"

// Riyadh districts priced by the default catalog.
const (
	DistrictNarjis   = "النرجس"
	DistrictMalqa    = "الملقا"
	DistrictQairawan = "القيروان"
	DistrictYasmin   = "الياسمين"
	DistrictArid     = "العارض"
	DistrictHittin   = "حطين"
)

func DefaultCosts() Costs {
	return Costs{
		ConstructionPerSqm: 1400,
		Additional: domain.AdditionalCosts{
			Design:          200000,
			LegalAndAdmin:   150000,
			SiteDevelopment: 100000,
		},
		OperatingExpenseRatio: 0.20,
	}
}

// Default returns the built-in Riyadh catalog.
func Default() *Catalog {
	c, err := New(DefaultDocument())
	if err != nil {
		panic("catalog: invalid default document: " + err.Error())
	}
	return c
}

func DefaultDocument() Document {
	costs := DefaultCosts()
	return Document{
		Costs: &costs,
		Profiles: map[PropertyType]Profile{
			Tower: {
				Districts: districts(
					8000, 1.2,
					8500, 1.3,
					7500, 1.1,
					7800, 1.25,
					7000, 1.0,
					9000, 1.35,
				),
				BuildRatios:       BuildRatios{GroundFloor: 0.70, RepeatedFloor: 0.80, TopFloor: 0.75},
				AlternativeRatios: BuildRatios{GroundFloor: 0.50, RepeatedFloor: 0.65, TopFloor: 0.75},
				UnitSizes: map[string]UnitSize{
					"residential": {Min: 80, Max: 250},
					"commercial":  {Min: 50, Max: 100},
				},
			},
			Hotel: {
				Districts: districts(
					9000, 1.3,
					9500, 1.4,
					8500, 1.15,
					8800, 1.2,
					8000, 1.05,
					10000, 1.45,
				),
				BuildRatios:       BuildRatios{GroundFloor: 0.80, RepeatedFloor: 0.85, TopFloor: 0.80},
				AlternativeRatios: BuildRatios{GroundFloor: 0.60, RepeatedFloor: 0.75, TopFloor: 0.80},
				UnitSizes: map[string]UnitSize{
					"hotel_room": {Min: 25, Max: 60},
				},
			},
			AdministrativeBuilding: {
				Districts: districts(
					7500, 1.2,
					8000, 1.3,
					7000, 1.1,
					7800, 1.25,
					6500, 1.0,
					8500, 1.35,
				),
				BuildRatios:       BuildRatios{GroundFloor: 0.65, RepeatedFloor: 0.75, TopFloor: 0.70},
				AlternativeRatios: BuildRatios{GroundFloor: 0.35, RepeatedFloor: 0.45, TopFloor: 0.70},
				UnitSizes: map[string]UnitSize{
					"office": {Min: 100, Max: 300},
				},
			},
			ResidentialCompound: {
				Districts: districts(
					5700, 1.2,
					6000, 1.3,
					5500, 1.1,
					5800, 1.25,
					5200, 1.0,
					6400, 1.35,
				),
				BuildRatios:       BuildRatios{GroundFloor: 0.65, RepeatedFloor: 0.75, TopFloor: 0.70},
				AlternativeRatios: BuildRatios{GroundFloor: 0.50, RepeatedFloor: 0.70, TopFloor: 0.75},
				UnitSizes: map[string]UnitSize{
					"residential_unit": {Min: 100, Max: 180},
				},
			},
			Villa: {
				Districts: districts(
					11000, 1.4,
					11500, 1.45,
					10500, 1.3,
					11200, 1.35,
					9500, 1.2,
					12000, 1.5,
				),
				BuildRatios:       BuildRatios{GroundFloor: 0.80, RepeatedFloor: 0.85, TopFloor: 0.90},
				AlternativeRatios: BuildRatios{GroundFloor: 0.65, RepeatedFloor: 0.75, TopFloor: 0.85},
				UnitSizes: map[string]UnitSize{
					"villa": {Min: 200, Max: 500},
				},
			},
			Villas: {
				BorrowsFrom: Villa,
			},
			CommercialMall: {
				BorrowsFrom: Hotel,
			},
		},
	}
}

// districts maps (price, premium) pairs onto the six default districts in
// declaration order.
func districts(pairs ...float64) map[string]DistrictPrice {
	names := []string{DistrictNarjis, DistrictMalqa, DistrictQairawan, DistrictYasmin, DistrictArid, DistrictHittin}
	out := make(map[string]DistrictPrice, len(names))
	for i, name := range names {
		out[name] = DistrictPrice{BasePrice: pairs[2*i], Premium: pairs[2*i+1]}
	}
	return out
}
