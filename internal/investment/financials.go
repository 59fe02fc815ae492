package investment

import (
	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

// computeFigures derives every cost and revenue quantity from the effective
// area and the resolved quote. Only GrossProfit may be negative for
// well-formed inputs.
func computeFigures(landArea, area float64, q catalog.Quote, s strategy, costs catalog.Costs) domain.Figures {
	f := domain.Figures{
		LandArea:           landArea,
		EffectiveBuildArea: area,
		BasePricePerSqm:    q.BasePrice,
		Premium:            q.Premium,
	}

	f.LandCost = landArea * q.BasePrice * q.Premium
	f.ConstructionCost = area * costs.ConstructionPerSqm
	f.AdditionalCosts = costs.Additional.Total()
	f.TotalInvestment = f.LandCost + f.ConstructionCost + f.AdditionalCosts

	f.SalePricePerSqm = q.BasePrice * s.saleMultiplier
	f.TotalRevenue = area * f.SalePricePerSqm
	f.GrossProfit = f.TotalRevenue - f.TotalInvestment
	f.GrossMargin = percentOf(f.GrossProfit, f.TotalInvestment)

	f.AnnualRentPerSqm = q.BasePrice * s.rentFraction
	f.TotalAnnualRent = area * f.AnnualRentPerSqm
	f.OperatingExpenses = f.TotalAnnualRent * costs.OperatingExpenseRatio
	f.NetAnnualRent = f.TotalAnnualRent - f.OperatingExpenses
	f.RentalROI = percentOf(f.NetAnnualRent, f.TotalInvestment)

	return f
}

// percentOf returns 0 instead of dividing by a non-positive total.
func percentOf(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}
