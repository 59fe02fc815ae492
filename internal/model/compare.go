package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
)

// Compare runs the engine and the models on the same request.
func Compare(e *investment.Engine, s *Set, req domain.ReportRequest) (domain.Comparison, error) {
	req = investment.Normalize(req)
	f, err := e.Figures(req)
	if err != nil {
		return domain.Comparison{}, err
	}
	pred, err := s.Predict(req)
	if err != nil {
		return domain.Comparison{}, err
	}

	formula := f.Targets()
	out := domain.Comparison{Request: req, Formula: formula, Model: pred}
	for _, t := range Targets() {
		a := t.of(predictionRow(formula))
		b := t.of(predictionRow(pred))
		t.set(&out.Difference, b-a)
		var pct float64
		if a != 0 {
			pct = (b - a) / a * 100
			t.set(&out.DifferencePct, pct)
		}
		out.Assessments = append(out.Assessments, assess(t, pct))
		out.MeanAbsDifferencePct += math.Abs(pct)
	}
	out.MeanAbsDifferencePct /= float64(len(Targets()))
	return out, nil
}

// Accuracy levels of a model target against the formula.
const (
	AccuracyHigh     = "accurate"
	AccuracyModerate = "moderate"
	AccuracyLow      = "large"
)

func assess(t Target, pct float64) domain.Assessment {
	abs := math.Abs(pct)
	name := strings.ReplaceAll(string(t), "_", " ")
	a := domain.Assessment{Target: string(t), AbsDifference: abs}
	switch {
	case abs < 10:
		a.Level = AccuracyHigh
		a.Message = fmt.Sprintf("%s: predictions are very accurate (%.2f%% difference)", name, abs)
	case abs < 20:
		a.Level = AccuracyModerate
		a.Message = fmt.Sprintf("%s: moderate difference (%.2f%% difference)", name, abs)
	default:
		a.Level = AccuracyLow
		a.Message = fmt.Sprintf("%s: large difference (%.2f%% difference)", name, abs)
	}
	return a
}

func predictionRow(p domain.Prediction) domain.DatasetRow {
	return domain.DatasetRow{
		TotalInvestment: p.TotalInvestment,
		TotalRevenue:    p.TotalRevenue,
		GrossProfit:     p.GrossProfit,
		AnnualRent:      p.AnnualRent,
		ROI:             p.ROI,
	}
}
