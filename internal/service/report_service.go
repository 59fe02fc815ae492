package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/denisok6893-rgb/property-investment/internal/cache"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
)

type ReportRepository interface {
	SaveReport(ctx context.Context, req domain.ReportRequest, rep domain.InvestmentReport) (domain.StoredReport, error)
}

type ReportService struct {
	engine *investment.Engine
	repo   ReportRepository
	cache  cache.Cache
}

// NewReportService wires the engine with optional history and cache; nil
// repo or c disables that step.
func NewReportService(engine *investment.Engine, repo ReportRepository, c cache.Cache) *ReportService {
	return &ReportService{engine: engine, repo: repo, cache: c}
}

func (s *ReportService) Engine() *investment.Engine {
	return s.engine
}

type Result struct {
	ID     string                  `json:"id,omitempty"`
	Cached bool                    `json:"cached"`
	Report domain.InvestmentReport `json:"report"`
}

// Generate validates req, serves it from cache when possible, otherwise runs
// the engine, and records the report in history. Cache and history
// failures are logged and do not fail the request.
func (s *ReportService) Generate(ctx context.Context, req domain.ReportRequest) (Result, error) {
	if err := investment.ValidateRequest(req); err != nil {
		return Result{}, err
	}
	raw := req
	req = investment.Normalize(req)
	key := cache.ReportKey(req)

	var res Result
	if rep, ok := s.fromCache(ctx, key); ok {
		res.Report = rep
		res.Cached = true
	} else {
		rep, err := s.engine.GenerateReport(raw)
		if err != nil {
			return Result{}, err
		}
		res.Report = rep
		s.toCache(ctx, key, rep)
	}

	if s.repo != nil {
		stored, err := s.repo.SaveReport(ctx, req, res.Report)
		if err != nil {
			log.Printf("warning: failed to save report %s: %v", key, err)
		} else {
			res.ID = stored.ID
		}
	}
	return res, nil
}

func (s *ReportService) fromCache(ctx context.Context, key string) (domain.InvestmentReport, bool) {
	if s.cache == nil {
		return domain.InvestmentReport{}, false
	}
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("warning: cache get %s: %v", key, err)
		return domain.InvestmentReport{}, false
	}
	if !ok {
		return domain.InvestmentReport{}, false
	}
	var rep domain.InvestmentReport
	if err := json.Unmarshal(b, &rep); err != nil {
		log.Printf("warning: discarding cached report %s: %v", key, err)
		return domain.InvestmentReport{}, false
	}
	return rep, true
}

func (s *ReportService) toCache(ctx context.Context, key string, rep domain.InvestmentReport) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(rep)
	if err != nil {
		log.Printf("warning: encode report for cache: %v", err)
		return
	}
	if err := s.cache.Set(ctx, key, b); err != nil {
		log.Printf("warning: cache set %s: %v", key, err)
	}
}

type BatchItem struct {
	Request domain.ReportRequest `json:"request"`
	Result  *Result              `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// GenerateBatch runs Generate for each request in order. A failed request
// is reported in its item and does not stop the batch.
func (s *ReportService) GenerateBatch(ctx context.Context, reqs []domain.ReportRequest) ([]BatchItem, error) {
	out := make([]BatchItem, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		item := BatchItem{Request: req}
		res, err := s.Generate(ctx, req)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Result = &res
		}
		out = append(out, item)
	}
	return out, nil
}
