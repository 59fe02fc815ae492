package matching

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
)

func plot() domain.MatchRequest {
	return domain.MatchRequest{District: catalog.DistrictHittin, LandArea: 5000, NumFloors: 6, Limit: 10}
}

func TestMatch_RanksAllTypes(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil, DefaultWeights())
	res, err := e.Match(plot())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got, want := len(res.Candidates), len(investment.SupportedTypes()); got != want {
		t.Fatalf("candidates=%d want=%d", got, want)
	}
	for i, c := range res.Candidates {
		if c.Score < 0 || c.Score > 100 {
			t.Fatalf("%s score=%v outside 0..100", c.PropertyType, c.Score)
		}
		if i > 0 && res.Candidates[i-1].Score < c.Score {
			t.Fatalf("not sorted: %v before %v", res.Candidates[i-1].Score, c.Score)
		}
		if len(c.Reasons) == 0 {
			t.Fatalf("%s has no reasons", c.PropertyType)
		}
	}
}

func TestMatch_FiguresMatchEngine(t *testing.T) {
	t.Parallel()

	inv := investment.NewEngine(nil)
	res, err := NewEngine(inv, DefaultWeights()).Match(plot())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	for _, c := range res.Candidates {
		f, err := inv.Figures(domain.ReportRequest{
			PropertyType: c.PropertyType, District: catalog.DistrictHittin, LandArea: 5000, NumFloors: 6,
		})
		if err != nil {
			t.Fatalf("figures %s: %v", c.PropertyType, err)
		}
		if f != c.Figures {
			t.Fatalf("%s figures differ from engine", c.PropertyType)
		}
	}
}

func TestMatch_HardFilters(t *testing.T) {
	t.Parallel()

	inv := investment.NewEngine(nil)
	base := plot()
	tower, err := inv.Figures(domain.ReportRequest{PropertyType: "tower", District: base.District, LandArea: base.LandArea, NumFloors: base.NumFloors})
	if err != nil {
		t.Fatalf("figures: %v", err)
	}

	req := base
	req.BudgetMax = tower.TotalInvestment
	res, err := NewEngine(inv, DefaultWeights()).Match(req)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	for _, c := range res.Candidates {
		if c.Figures.TotalInvestment > req.BudgetMax {
			t.Fatalf("%s over budget: %v > %v", c.PropertyType, c.Figures.TotalInvestment, req.BudgetMax)
		}
	}
	if len(res.Candidates)+len(res.Excluded) != len(investment.SupportedTypes()) {
		t.Fatalf("candidates=%d excluded=%d", len(res.Candidates), len(res.Excluded))
	}

	req = base
	req.MinRentalROI = 1000
	res, err = NewEngine(inv, DefaultWeights()).Match(req)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Candidates) != 0 || len(res.Excluded) != len(investment.SupportedTypes()) {
		t.Fatalf("expected every type excluded, got %+v", res)
	}
}

func TestMatch_SingleWeightOrdersByFactor(t *testing.T) {
	t.Parallel()

	req := plot()
	req.PropertyTypes = []string{"Tower", "hotel", "Commercial Mall", "tower"}
	res, err := NewEngine(nil, Weights{RentalROI: 1}).Match(req)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Candidates) != 3 {
		t.Fatalf("candidates=%d want=3 (duplicates dropped)", len(res.Candidates))
	}
	for i := 1; i < len(res.Candidates); i++ {
		if res.Candidates[i-1].Figures.RentalROI < res.Candidates[i].Figures.RentalROI {
			t.Fatalf("ROI order broken at %d", i)
		}
	}
	if res.Candidates[0].Score != 100 {
		t.Fatalf("best score=%v want=100", res.Candidates[0].Score)
	}
}

func TestMatch_NoWeightsIsNeutral(t *testing.T) {
	t.Parallel()

	res, err := NewEngine(nil, Weights{}).Match(plot())
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	for _, c := range res.Candidates {
		if c.Score != 50 {
			t.Fatalf("%s score=%v want=50", c.PropertyType, c.Score)
		}
	}
}

func TestMatch_LimitAndErrors(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil, DefaultWeights())
	req := plot()
	req.Limit = 0
	res, err := e.Match(req)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Candidates) != defaultLimit {
		t.Fatalf("candidates=%d want=%d", len(res.Candidates), defaultLimit)
	}

	req = plot()
	req.District = "Mars"
	if _, err := e.Match(req); !errors.Is(err, catalog.ErrUnknownDistrict) {
		t.Fatalf("err=%v want ErrUnknownDistrict", err)
	}

	req = plot()
	req.PropertyTypes = []string{"castle"}
	var typed *catalog.UnknownPropertyTypeError
	if _, err := e.Match(req); !errors.As(err, &typed) || typed.PropertyType != "castle" {
		t.Fatalf("err=%v want unknown type castle", err)
	}

	req = plot()
	req.LandArea = 0
	if _, err := e.Match(req); !errors.Is(err, investment.ErrInvalidLandArea) {
		t.Fatalf("err=%v want ErrInvalidLandArea", err)
	}
}

func TestMinMax(t *testing.T) {
	t.Parallel()

	got := minMax([]float64{10, 20, 15})
	want := []float64{0, 1, 0.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("minMax=%v want=%v", got, want)
		}
	}
	for _, v := range minMax([]float64{3, 3}) {
		if v != 1 {
			t.Fatalf("equal values should map to 1, got %v", v)
		}
	}
}

func TestLoadWeightsFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")
	if err := os.WriteFile(path, []byte("rental_roi: 2\nbuild_area: 0\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	w, err := LoadWeightsFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.RentalROI != 2 || w.BuildArea != 0 || w.GrossMargin != DefaultWeights().GrossMargin {
		t.Fatalf("weights=%+v", w)
	}

	bad := filepath.Join(dir, "weights.json")
	if err := os.WriteFile(bad, []byte(`{"rental_roi": -1}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	w, err = LoadWeightsFromFile(bad)
	if err == nil {
		t.Fatalf("expected negative weight error")
	}
	if w != DefaultWeights() {
		t.Fatalf("weights on error=%+v want defaults", w)
	}

	if _, err := LoadWeightsFromFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected read error")
	}
}
