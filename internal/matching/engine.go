package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
)

const (
	defaultLimit = 5

	reasonUnpricedDistrict = "district not priced for this type"
)

// Engine ranks property types for a plot by running the investment engine
// once per type and scoring the resulting figures.
type Engine struct {
	investment *investment.Engine
	weights    Weights
}

func NewEngine(e *investment.Engine, w Weights) *Engine {
	if e == nil {
		e = investment.NewEngine(nil)
	}
	return &Engine{investment: e, weights: w}
}

func (e *Engine) Weights() Weights {
	return e.weights
}

// Match applies hard filters (budget, minimum rental ROI), computes a score
// (0..100) for every remaining type, and returns the top results.
func (e *Engine) Match(req domain.MatchRequest) (domain.MatchResult, error) {
	if err := investment.ValidateRequest(domain.ReportRequest{LandArea: req.LandArea, NumFloors: req.NumFloors}); err != nil {
		return domain.MatchResult{}, err
	}
	req.District = strings.TrimSpace(req.District)

	types, err := candidateTypes(req.PropertyTypes)
	if err != nil {
		return domain.MatchResult{}, err
	}
	req.PropertyTypes = types

	out := domain.MatchResult{Request: req}
	var figures []domain.Figures
	var districtErr error
	for _, pt := range types {
		f, err := e.investment.Figures(domain.ReportRequest{
			PropertyType: pt,
			District:     req.District,
			LandArea:     req.LandArea,
			NumFloors:    req.NumFloors,
		})
		if errors.Is(err, catalog.ErrUnknownDistrict) {
			districtErr = err
			out.Excluded = append(out.Excluded, domain.MatchExclusion{PropertyType: pt, Reason: reasonUnpricedDistrict})
			continue
		}
		if err != nil {
			return domain.MatchResult{}, err
		}
		if reason, ok := passesHardFilters(req, f); !ok {
			out.Excluded = append(out.Excluded, domain.MatchExclusion{PropertyType: pt, Reason: reason})
			continue
		}
		out.Candidates = append(out.Candidates, domain.MatchCandidate{PropertyType: pt, Figures: f})
		figures = append(figures, f)
	}
	if len(out.Candidates) == 0 && districtErr != nil && allDistrictMisses(out.Excluded) {
		return domain.MatchResult{}, districtErr
	}

	norm := normalizeFactors(figures)
	for i := range out.Candidates {
		out.Candidates[i].Score, out.Candidates[i].Reasons = e.scoreOne(norm[i])
	}

	sort.SliceStable(out.Candidates, func(i, j int) bool {
		a, b := out.Candidates[i], out.Candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.PropertyType < b.PropertyType
	})
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(out.Candidates) > limit {
		out.Candidates = out.Candidates[:limit]
	}
	return out, nil
}

func allDistrictMisses(ex []domain.MatchExclusion) bool {
	for _, x := range ex {
		if x.Reason != reasonUnpricedDistrict {
			return false
		}
	}
	return true
}

// candidateTypes normalizes the requested types and rejects unknown ones.
// Duplicates are dropped.
func candidateTypes(requested []string) ([]string, error) {
	supported := make(map[catalog.PropertyType]struct{})
	for _, pt := range investment.SupportedTypes() {
		supported[pt] = struct{}{}
	}
	if len(requested) == 0 {
		out := make([]string, 0, len(supported))
		for _, pt := range investment.SupportedTypes() {
			out = append(out, string(pt))
		}
		return out, nil
	}

	seen := make(map[catalog.PropertyType]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, raw := range requested {
		pt := catalog.ParsePropertyType(raw)
		if _, ok := supported[pt]; !ok {
			return nil, &catalog.UnknownPropertyTypeError{PropertyType: raw}
		}
		if _, dup := seen[pt]; dup {
			continue
		}
		seen[pt] = struct{}{}
		out = append(out, string(pt))
	}
	return out, nil
}

func passesHardFilters(req domain.MatchRequest, f domain.Figures) (string, bool) {
	if req.BudgetMax > 0 && f.TotalInvestment > req.BudgetMax {
		return fmt.Sprintf("total investment %s above budget %s",
			investment.FormatMoney(f.TotalInvestment), investment.FormatMoney(req.BudgetMax)), false
	}
	if req.MinRentalROI > 0 && f.RentalROI < req.MinRentalROI {
		return fmt.Sprintf("rental ROI %s below minimum %s",
			investment.FormatPercent(f.RentalROI), investment.FormatPercent(req.MinRentalROI)), false
	}
	return "", true
}

// factorValues are the candidate's factors rescaled to 0..1 against the
// other candidates of the same request.
type factorValues struct {
	rentalROI     float64
	grossMargin   float64
	netAnnualRent float64
	investment    float64
	buildArea     float64
}

func normalizeFactors(fs []domain.Figures) []factorValues {
	pick := func(get func(domain.Figures) float64) []float64 {
		vs := make([]float64, len(fs))
		for i, f := range fs {
			vs[i] = get(f)
		}
		return minMax(vs)
	}
	roi := pick(func(f domain.Figures) float64 { return f.RentalROI })
	margin := pick(func(f domain.Figures) float64 { return f.GrossMargin })
	rent := pick(func(f domain.Figures) float64 { return f.NetAnnualRent })
	inv := pick(func(f domain.Figures) float64 { return f.TotalInvestment })
	area := pick(func(f domain.Figures) float64 { return f.EffectiveBuildArea })

	out := make([]factorValues, len(fs))
	for i := range fs {
		out[i] = factorValues{
			rentalROI:     roi[i],
			grossMargin:   margin[i],
			netAnnualRent: rent[i],
			investment:    inv[i],
			buildArea:     area[i],
		}
	}
	return out
}

// minMax maps vs onto 0..1. Equal values all map to 1.
func minMax(vs []float64) []float64 {
	out := make([]float64, len(vs))
	if len(vs) == 0 {
		return out
	}
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for i, v := range vs {
		if hi == lo {
			out[i] = 1
			continue
		}
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

func (e *Engine) scoreOne(v factorValues) (float64, []domain.ScoreReason) {
	type factor struct {
		key      string
		label    string
		wantHigh bool
		weight   float64
		value    float64
	}

	factors := []factor{
		{"rental_roi", "rental ROI", true, e.weights.RentalROI, v.rentalROI},
		{"gross_margin", "gross margin", true, e.weights.GrossMargin, v.grossMargin},
		{"net_annual_rent", "net annual rent", true, e.weights.NetAnnualRent, v.netAnnualRent},
		{"low_investment", "capital required", false, e.weights.LowInvestment, v.investment},
		{"build_area", "build area", true, e.weights.BuildArea, v.buildArea},
	}

	var sumW, sum float64
	var contributions []domain.ScoreReason
	for _, f := range factors {
		if f.weight <= 0 {
			continue
		}
		x := f.value
		if !f.wantHigh {
			x = 1 - x
		}
		sumW += f.weight
		contrib := f.weight * x
		sum += contrib
		contributions = append(contributions, domain.ScoreReason{
			Type:    f.key,
			Message: reasonMessage(f.label, x),
			Impact:  contrib,
		})
	}

	// No active weights: neutral score.
	if sumW <= 0 {
		return 50.0, topReasons(contributions, len(factors))
	}

	score := math.Round(sum/sumW*1000) / 10
	return clamp(score, 0, 100), topReasons(contributions, len(factors))
}

// topReasons sorts by impact and rescales impact to a share of the best one.
func topReasons(reasons []domain.ScoreReason, max int) []domain.ScoreReason {
	sort.SliceStable(reasons, func(i, j int) bool { return reasons[i].Impact > reasons[j].Impact })
	if len(reasons) > max {
		reasons = reasons[:max]
	}
	if len(reasons) == 0 {
		return reasons
	}
	best := reasons[0].Impact
	if best <= 0 {
		return reasons
	}
	for i := range reasons {
		reasons[i].Impact = math.Round((reasons[i].Impact/best)*100) / 100
	}
	return reasons
}

func reasonMessage(label string, v float64) string {
	switch {
	case v >= 0.8:
		return label + ": strong"
	case v >= 0.6:
		return label + ": good"
	case v >= 0.4:
		return label + ": mixed"
	default:
		return label + ": weak"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
