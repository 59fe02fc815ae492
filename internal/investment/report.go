package investment

import (
	"fmt"
	"strings"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

const (
	RatiosPrimary     = "primary"
	RatiosAlternative = "alternative"
)

type supplementInput struct {
	quote    catalog.Quote
	costs    catalog.Costs
	landArea float64
	figures  domain.Figures
}

// assemble shapes already computed figures into the report. It does no
// arithmetic beyond formatting.
func assemble(pt catalog.PropertyType, district string, numFloors int, ratios catalog.BuildRatios, usedAlt bool, s strategy, in supplementInput) domain.InvestmentReport {
	f := in.figures
	label := displayName(pt)

	rep := domain.InvestmentReport{
		Title:        fmt.Sprintf("Development of %s project in %s", label, district),
		Introduction: fmt.Sprintf("Investment feasibility of a %d-floor %s development on %s of land in %s.", numFloors, label, FormatArea(f.LandArea), district),
		PropertyType: string(pt),
		District:     district,
		NumFloors:    numFloors,
		RatiosUsed:   RatiosPrimary,
		Ratios: domain.RatioSet{
			GroundFloor:   ratios.GroundFloor,
			RepeatedFloor: ratios.RepeatedFloor,
			TopFloor:      ratios.TopFloor,
		},
		ProjectDetails: domain.ProjectDetails{
			Location:           district,
			LandArea:           FormatArea(f.LandArea),
			EffectiveBuildArea: FormatArea(f.EffectiveBuildArea),
		},
		Costs: domain.CostSection{
			LandCost:         FormatMoney(f.LandCost),
			ConstructionCost: FormatMoney(f.ConstructionCost),
			TotalInvestment:  FormatMoney(f.TotalInvestment),
		},
		Revenue: domain.RevenueSection{
			SaleRevenue:   FormatMoney(f.TotalRevenue),
			GrossProfit:   FormatMoney(f.GrossProfit),
			GrossMargin:   FormatPercent(f.GrossMargin),
			AnnualRent:    FormatMoney(f.TotalAnnualRent),
			NetAnnualRent: FormatMoney(f.NetAnnualRent),
			RentalROI:     FormatPercent(f.RentalROI),
		},
		Figures: f,
	}
	if usedAlt {
		rep.RatiosUsed = RatiosAlternative
	}
	if numFloors < 3 {
		rep.Notes = append(rep.Notes, fmt.Sprintf(
			"num_floors=%d: the repeated-floor term is multiplied by (num_floors - 2) = %d, which lowers the effective build area",
			numFloors, numFloors-2))
	}
	if s.supplement != nil {
		rep.Supplementary = s.supplement(in)
	}
	return rep
}

func displayName(pt catalog.PropertyType) string {
	return strings.ReplaceAll(string(pt), "_", " ")
}

// villaSupplement carries the fixed descriptive ratios of a single villa.
func villaSupplement(supplementInput) *domain.Supplementary {
	return &domain.Supplementary{
		ProjectKind:        "individual residential villa",
		GroundFloorRatio:   "65%",
		RepeatedFloorRatio: "75%",
		TopFloorRatio:      "70%",
	}
}

// mallSupplement describes the ratios the mall resolves to through its
// catalog profile, so the text cannot drift from the area computation.
func mallSupplement(in supplementInput) *domain.Supplementary {
	r := in.quote.BuildRatios
	return &domain.Supplementary{
		ProjectKind:        "commercial mall",
		GroundFloorRatio:   formatRatio(r.GroundFloor),
		RepeatedFloorRatio: formatRatio(r.RepeatedFloor),
		TopFloorRatio:      formatRatio(r.TopFloor),
	}
}

func villasSupplement(in supplementInput) *domain.Supplementary {
	r := in.quote.BuildRatios
	f := in.figures
	buildable := in.landArea * villasCoverage
	purchase := in.quote.BasePrice * in.quote.Premium
	return &domain.Supplementary{
		ProjectKind:        "residential villas subdivision",
		GroundFloorRatio:   formatRatio(r.GroundFloor),
		RepeatedFloorRatio: formatRatio(r.RepeatedFloor),
		TopFloorRatio:      formatRatio(r.TopFloor),
		Villas: &domain.VillasDetails{
			BuildableLandRatio:      formatRatio(villasCoverage),
			BuildableLandArea:       FormatArea(buildable),
			VillaFootprint:          FormatArea(villaFootprint),
			EffectiveBuildArea:      FormatArea(f.EffectiveBuildArea),
			VillaCount:              VillaCount(in.landArea),
			LandPurchasePricePerSqm: FormatMoney(purchase),
			LandCost:                FormatMoney(f.LandCost),
			ConstructionCostPerSqm:  FormatMoney(in.costs.ConstructionPerSqm),
			ConstructionCost:        FormatMoney(f.ConstructionCost),
			AdditionalCosts:         in.costs.Additional,
			ConstructionTotal:       FormatMoney(f.ConstructionCost + f.AdditionalCosts),
		},
	}
}
