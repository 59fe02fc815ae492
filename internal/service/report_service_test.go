package service

import (
	"context"
	"errors"
	"testing"

	"github.com/denisok6893-rgb/property-investment/internal/cache"
	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
)

type mockRepo struct {
	saved      int
	forceError bool
}

func (m *mockRepo) SaveReport(_ context.Context, req domain.ReportRequest, rep domain.InvestmentReport) (domain.StoredReport, error) {
	m.saved++
	if m.forceError {
		return domain.StoredReport{}, errors.New("save error")
	}
	return domain.StoredReport{ID: "r-1", Request: req, Report: rep}, nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []byte) error {
	return errors.New("cache down")
}

var villaReq = domain.ReportRequest{PropertyType: "Villa", District: catalog.DistrictNarjis, LandArea: 5000, NumFloors: 5}

func TestGenerate_CachesAndPersists(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{}
	mem := cache.NewMemoryCache(0)
	svc := NewReportService(investment.NewEngine(nil), repo, mem)
	ctx := context.Background()

	first, err := svc.Generate(ctx, villaReq)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first.Cached || first.ID != "r-1" {
		t.Fatalf("first=%+v", first)
	}
	if mem.Len() != 1 {
		t.Fatalf("cache len=%d want=1", mem.Len())
	}

	second, err := svc.Generate(ctx, villaReq)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second call should hit cache")
	}
	if second.Report.Figures != first.Report.Figures {
		t.Fatalf("cached figures differ")
	}
	if repo.saved != 2 {
		t.Fatalf("saved=%d want=2", repo.saved)
	}
}

func TestGenerate_NonCriticalFailures(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{forceError: true}
	svc := NewReportService(investment.NewEngine(nil), repo, failingCache{})

	res, err := svc.Generate(context.Background(), villaReq)
	if err != nil {
		t.Fatalf("cache and repository failures must not fail the request: %v", err)
	}
	if res.ID != "" || res.Cached {
		t.Fatalf("res=%+v", res)
	}
	if res.Report.Figures.TotalInvestment <= 0 {
		t.Fatalf("report not computed")
	}
}

func TestGenerate_ValidationFirst(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{}
	svc := NewReportService(investment.NewEngine(nil), repo, nil)
	ctx := context.Background()

	tests := []struct {
		req  domain.ReportRequest
		want error
	}{
		{domain.ReportRequest{PropertyType: "villa", District: catalog.DistrictNarjis, LandArea: -1, NumFloors: 3}, investment.ErrInvalidLandArea},
		{domain.ReportRequest{PropertyType: "villa", District: catalog.DistrictNarjis, LandArea: 10, NumFloors: 0}, investment.ErrInvalidFloorCount},
		{domain.ReportRequest{PropertyType: "castle", District: catalog.DistrictNarjis, LandArea: 10, NumFloors: 3}, catalog.ErrUnknownPropertyType},
		{domain.ReportRequest{PropertyType: "villa", District: "Mars", LandArea: 10, NumFloors: 3}, catalog.ErrUnknownDistrict},
	}
	for _, tt := range tests {
		if _, err := svc.Generate(ctx, tt.req); !errors.Is(err, tt.want) {
			t.Fatalf("req=%+v err=%v want=%v", tt.req, err, tt.want)
		}
	}
	if repo.saved != 0 {
		t.Fatalf("failed requests must not be saved")
	}

	_, err := svc.Generate(ctx, domain.ReportRequest{PropertyType: "Grand Castle", District: catalog.DistrictNarjis, LandArea: 10, NumFloors: 3})
	var typed *catalog.UnknownPropertyTypeError
	if !errors.As(err, &typed) || typed.PropertyType != "Grand Castle" {
		t.Fatalf("err=%#v want the value as sent", err)
	}
}

func TestGenerateBatch(t *testing.T) {
	t.Parallel()

	svc := NewReportService(investment.NewEngine(nil), nil, nil)
	items, err := svc.GenerateBatch(context.Background(), []domain.ReportRequest{
		villaReq,
		{PropertyType: "castle", District: "x", LandArea: 1, NumFloors: 1},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(items) != 2 || items[0].Result == nil || items[1].Error == "" {
		t.Fatalf("items=%+v", items)
	}
}
