package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.EnsureSchema(); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return st
}

func report(pt string, investment, roi float64) (domain.ReportRequest, domain.InvestmentReport) {
	req := domain.ReportRequest{PropertyType: pt, District: "حطين", LandArea: 1000, NumFloors: 3}
	rep := domain.InvestmentReport{
		Title:        "Development of " + pt,
		PropertyType: pt,
		District:     "حطين",
		Figures:      domain.Figures{TotalInvestment: investment, RentalROI: roi},
	}
	return req, rep
}

func TestReports_SaveGetDelete(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	req, rep := report("villa", 100, 5)

	saved, err := st.SaveReport(ctx, req, rep)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("saved=%+v", saved)
	}

	got, ok, err := st.GetReport(ctx, saved.ID)
	if err != nil || !ok {
		t.Fatalf("get ok=%v err=%v", ok, err)
	}
	if got.Report.Title != rep.Title || got.Request != req {
		t.Fatalf("got=%+v", got)
	}

	if _, ok, err := st.GetReport(ctx, "missing"); ok || err != nil {
		t.Fatalf("missing ok=%v err=%v", ok, err)
	}

	deleted, err := st.DeleteReport(ctx, saved.ID)
	if err != nil || !deleted {
		t.Fatalf("delete=%v err=%v", deleted, err)
	}
	if deleted, _ := st.DeleteReport(ctx, saved.ID); deleted {
		t.Fatalf("second delete should report false")
	}
}

func TestReports_ListFilterSortPaging(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	seed := []struct {
		pt       string
		inv, roi float64
	}{
		{"tower", 300, 1},
		{"villa", 100, 9},
		{"tower", 200, 4},
		{"hotel", 400, 2},
	}
	for _, s := range seed {
		req, rep := report(s.pt, s.inv, s.roi)
		if _, err := st.SaveReport(ctx, req, rep); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	all, total, err := st.ListReports(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Fatalf("total=%d len=%d", total, len(all))
	}
	if all[0].Report.PropertyType != "hotel" {
		t.Fatalf("default order should be newest first, got %s", all[0].Report.PropertyType)
	}

	byROI, _, err := st.ListReports(ctx, ListFilter{Sort: SortROIDesc})
	if err != nil {
		t.Fatalf("list roi: %v", err)
	}
	if byROI[0].Report.Figures.RentalROI != 9 {
		t.Fatalf("roi order first=%v", byROI[0].Report.Figures.RentalROI)
	}

	towers, total, err := st.ListReports(ctx, ListFilter{PropertyType: "tower", Sort: SortInvestmentDesc, Limit: 1})
	if err != nil {
		t.Fatalf("list towers: %v", err)
	}
	if total != 2 || len(towers) != 1 || towers[0].Report.Figures.TotalInvestment != 300 {
		t.Fatalf("total=%d towers=%+v", total, towers)
	}

	page2, _, err := st.ListReports(ctx, ListFilter{PropertyType: "tower", Sort: SortInvestmentDesc, Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page2: %v", err)
	}
	if len(page2) != 1 || page2[0].Report.Figures.TotalInvestment != 200 {
		t.Fatalf("page2=%+v", page2)
	}
}

func TestDatasetRows_SaveLoad(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	rows := []domain.DatasetRow{
		{PropertyType: "tower", District: "الملقا", LandArea: 2500, NumFloors: 12, TotalInvestment: 1, ROI: 2},
		{PropertyType: "villa", District: "حطين", LandArea: 800, NumFloors: 3, GrossProfit: -5},
	}

	id, err := st.SaveDatasetRows(ctx, "", rows)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatalf("batch id not generated")
	}
	if _, err := st.SaveDatasetRows(ctx, "other", rows[:1]); err != nil {
		t.Fatalf("save other: %v", err)
	}

	got, err := st.LoadDatasetRows(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0] != rows[0] || got[1] != rows[1] {
		t.Fatalf("got=%+v", got)
	}

	all, err := st.LoadDatasetRows(ctx, "")
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all=%d want=3", len(all))
	}
}

func TestLoadRequestsFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "batch.json")
	yamlPath := filepath.Join(dir, "batch.yaml")
	if err := os.WriteFile(jsonPath, []byte(`[{"property_type":"villa","district":"حطين","land_area":900,"num_floors":3}]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(yamlPath, []byte("- property_type: tower\n  district: الملقا\n  land_area: 3000\n  num_floors: 14\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	a, err := LoadRequestsFromFile(jsonPath)
	if err != nil || len(a) != 1 || a[0].LandArea != 900 {
		t.Fatalf("json reqs=%+v err=%v", a, err)
	}
	b, err := LoadRequestsFromFile(yamlPath)
	if err != nil || len(b) != 1 || b[0].NumFloors != 14 || b[0].District != "الملقا" {
		t.Fatalf("yaml reqs=%+v err=%v", b, err)
	}
	if _, err := LoadRequestsFromFile(filepath.Join(dir, "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
