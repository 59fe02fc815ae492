package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
	"github.com/denisok6893-rgb/property-investment/internal/model"
	"github.com/denisok6893-rgb/property-investment/internal/service"
)

func printReport(r domain.InvestmentReport) {
	fmt.Println(r.Title)
	fmt.Println(strings.Repeat("=", len([]rune(r.Title))))
	fmt.Println(r.Introduction)
	fmt.Println()

	fmt.Printf("Ratios: %s (ground %.2f, repeated %.2f, top %.2f)\n\n",
		r.RatiosUsed, r.Ratios.GroundFloor, r.Ratios.RepeatedFloor, r.Ratios.TopFloor)

	fmt.Println("Project")
	fmt.Printf("  %-24s %s\n", "Location", r.ProjectDetails.Location)
	fmt.Printf("  %-24s %s\n", "Land area", r.ProjectDetails.LandArea)
	fmt.Printf("  %-24s %s\n", "Effective build area", r.ProjectDetails.EffectiveBuildArea)
	fmt.Println()

	fmt.Println("Costs")
	fmt.Printf("  %-24s %24s\n", "Land", r.Costs.LandCost)
	fmt.Printf("  %-24s %24s\n", "Construction", r.Costs.ConstructionCost)
	fmt.Printf("  %-24s %24s\n", "Total investment", r.Costs.TotalInvestment)
	fmt.Println()

	fmt.Println("Revenue")
	fmt.Printf("  %-24s %24s\n", "Sale revenue", r.Revenue.SaleRevenue)
	fmt.Printf("  %-24s %24s\n", "Gross profit", r.Revenue.GrossProfit)
	fmt.Printf("  %-24s %24s\n", "Gross margin", r.Revenue.GrossMargin)
	fmt.Printf("  %-24s %24s\n", "Annual rent", r.Revenue.AnnualRent)
	fmt.Printf("  %-24s %24s\n", "Net annual rent", r.Revenue.NetAnnualRent)
	fmt.Printf("  %-24s %24s\n", "Rental ROI", r.Revenue.RentalROI)

	if s := r.Supplementary; s != nil {
		fmt.Println()
		fmt.Printf("%s\n", s.ProjectKind)
		fmt.Printf("  %-24s %s\n", "Ground floor ratio", s.GroundFloorRatio)
		fmt.Printf("  %-24s %s\n", "Repeated floor ratio", s.RepeatedFloorRatio)
		fmt.Printf("  %-24s %s\n", "Top floor ratio", s.TopFloorRatio)
		if v := s.Villas; v != nil {
			fmt.Printf("  %-24s %d\n", "Villas", v.VillaCount)
			fmt.Printf("  %-24s %s (%s)\n", "Buildable land", v.BuildableLandArea, v.BuildableLandRatio)
			fmt.Printf("  %-24s %s\n", "Villa footprint", v.VillaFootprint)
			fmt.Printf("  %-24s %s\n", "Construction total", v.ConstructionTotal)
		}
	}

	if len(r.Notes) > 0 {
		fmt.Println()
		for _, n := range r.Notes {
			fmt.Printf("  * %s\n", n)
		}
	}
}

func printBatch(items []service.BatchItem) {
	fmt.Printf("%-4s %-24s %-10s %10s %6s %22s %8s\n",
		"#", "Type", "District", "Land m²", "Floors", "Total investment", "ROI")
	failed := 0
	for i, it := range items {
		req := it.Request
		if it.Result == nil {
			failed++
			fmt.Printf("%-4d %-24s %-10s %10s %6d  error: %s\n",
				i+1, req.PropertyType, req.District, humanize.Commaf(req.LandArea), req.NumFloors, it.Error)
			continue
		}
		f := it.Result.Report.Figures
		fmt.Printf("%-4d %-24s %-10s %10s %6d %22s %8s\n",
			i+1, it.Result.Report.PropertyType, it.Result.Report.District,
			humanize.Commaf(req.LandArea), req.NumFloors,
			investment.FormatMoney(f.TotalInvestment), investment.FormatPercent(f.RentalROI))
	}
	fmt.Printf("\n%d reports, %d failed\n", len(items), failed)
}

func printDatasetSummary(rows []domain.DatasetRow, out, batchID string, elapsed time.Duration) {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.PropertyType]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Printf("Generated %s rows in %s\n", humanize.Comma(int64(len(rows))), elapsed.Round(time.Millisecond))
	fmt.Printf("  %-24s %8s\n", "Property type", "Rows")
	for _, t := range types {
		fmt.Printf("  %-24s %8s\n", t, humanize.Comma(int64(counts[t])))
	}
	fmt.Printf("\nCSV:   %s\n", out)
	if batchID != "" {
		fmt.Printf("Batch: %s\n", batchID)
	}
}

func printMetrics(set *model.Set) {
	fmt.Printf("%-18s %8s %8s %16s %16s %8s %7s %6s\n",
		"Target", "Train R²", "Test R²", "MAE", "RMSE", "MAPE", "Train", "Test")
	for _, t := range model.Targets() {
		m, ok := set.Model(t)
		if !ok {
			continue
		}
		mt := m.Metrics
		fmt.Printf("%-18s %8.4f %8.4f %16s %16s %7.2f%% %7d %6d\n",
			t, mt.TrainR2, mt.TestR2,
			humanize.FormatFloat("#,###.##", mt.MAE), humanize.FormatFloat("#,###.##", mt.RMSE),
			mt.MAPE, mt.Train, mt.Test)
	}
}

func printComparison(c domain.Comparison) {
	req := c.Request
	fmt.Printf("%s in %s, %s m², %d floors\n\n",
		req.PropertyType, req.District, humanize.Commaf(req.LandArea), req.NumFloors)
	fmt.Printf("%-18s %24s %24s %10s\n", "Target", "Formula", "Model", "Diff %")
	row := func(name string, formula, predicted, pct float64, money bool) {
		f, p := investment.FormatPercent(formula), investment.FormatPercent(predicted)
		if money {
			f, p = investment.FormatMoney(formula), investment.FormatMoney(predicted)
		}
		fmt.Printf("%-18s %24s %24s %9.2f%%\n", name, f, p, pct)
	}
	row("Total investment", c.Formula.TotalInvestment, c.Model.TotalInvestment, c.DifferencePct.TotalInvestment, true)
	row("Total revenue", c.Formula.TotalRevenue, c.Model.TotalRevenue, c.DifferencePct.TotalRevenue, true)
	row("Gross profit", c.Formula.GrossProfit, c.Model.GrossProfit, c.DifferencePct.GrossProfit, true)
	row("Annual rent", c.Formula.AnnualRent, c.Model.AnnualRent, c.DifferencePct.AnnualRent, true)
	row("ROI", c.Formula.ROI, c.Model.ROI, c.DifferencePct.ROI, false)

	fmt.Printf("\nMean absolute difference: %s\n", investment.FormatPercent(c.MeanAbsDifferencePct))
	for _, a := range c.Assessments {
		fmt.Printf("  [%s] %s\n", a.Level, a.Message)
	}
}

func printMatch(res domain.MatchResult) {
	req := res.Request
	fmt.Printf("%s, %s m², %d floors\n\n", req.District, humanize.Commaf(req.LandArea), req.NumFloors)
	fmt.Printf("%-4s %-24s %6s %24s %8s  %s\n", "#", "Type", "Score", "Total investment", "ROI", "Top reason")
	for i, c := range res.Candidates {
		top := ""
		if len(c.Reasons) > 0 {
			top = c.Reasons[0].Message
		}
		fmt.Printf("%-4d %-24s %6.1f %24s %8s  %s\n", i+1, c.PropertyType, c.Score,
			investment.FormatMoney(c.Figures.TotalInvestment), investment.FormatPercent(c.Figures.RentalROI), top)
	}
	if len(res.Excluded) > 0 {
		fmt.Println("\nExcluded")
		for _, x := range res.Excluded {
			fmt.Printf("  %-24s %s\n", x.PropertyType, x.Reason)
		}
	}
}

func printCatalog(c *catalog.Catalog) {
	costs := c.Costs()
	fmt.Println("Costs")
	fmt.Printf("  %-26s %s\n", "Construction per m²", investment.FormatMoney(costs.ConstructionPerSqm))
	fmt.Printf("  %-26s %s\n", "Additional costs", investment.FormatMoney(costs.Additional.Total()))
	fmt.Printf("  %-26s %s\n", "Operating expense ratio", investment.FormatPercent(costs.OperatingExpenseRatio*100))
	fmt.Println()

	for _, pt := range c.PropertyTypes() {
		p, _ := c.Profile(pt)
		if p.BorrowsFrom != "" {
			fmt.Printf("%s (uses %s data)\n", pt, p.BorrowsFrom)
			continue
		}
		fmt.Printf("%s\n", pt)
		fmt.Printf("  ratios      ground %.2f  repeated %.2f  top %.2f\n",
			p.BuildRatios.GroundFloor, p.BuildRatios.RepeatedFloor, p.BuildRatios.TopFloor)
		fmt.Printf("  alt (>%d fl) ground %.2f  repeated %.2f  top %.2f\n", catalog.AlternativeRatioFloorThreshold,
			p.AlternativeRatios.GroundFloor, p.AlternativeRatios.RepeatedFloor, p.AlternativeRatios.TopFloor)
		districts, _ := c.Districts(pt)
		for _, d := range districts {
			q, err := c.Lookup(pt, d)
			if err != nil {
				continue
			}
			fmt.Printf("  %-12s %20s  x%.2f\n", d, investment.FormatMoney(q.BasePrice), q.Premium)
		}
	}
}
