package dataset

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
)

// Generator turns sampled requests into dataset rows using the engine.
type Generator struct {
	engine  *investment.Engine
	workers int
}

// NewGenerator returns a generator using up to workers goroutines;
// workers <= 0 means GOMAXPROCS.
func NewGenerator(e *investment.Engine, workers int) *Generator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{engine: e, workers: workers}
}

func RowFromFigures(req domain.ReportRequest, f domain.Figures) domain.DatasetRow {
	t := f.Targets()
	return domain.DatasetRow{
		PropertyType:    req.PropertyType,
		District:        req.District,
		LandArea:        req.LandArea,
		NumFloors:       req.NumFloors,
		TotalInvestment: t.TotalInvestment,
		TotalRevenue:    t.TotalRevenue,
		GrossProfit:     t.GrossProfit,
		AnnualRent:      t.AnnualRent,
		ROI:             t.ROI,
	}
}

func (g *Generator) row(req domain.ReportRequest) (domain.DatasetRow, error) {
	f, err := g.engine.Figures(req)
	if err != nil {
		return domain.DatasetRow{}, fmt.Errorf("%s/%s: %w", req.PropertyType, req.District, err)
	}
	return RowFromFigures(req, f), nil
}

// Generate computes one row per request. Requests are split into contiguous
// chunks, one per worker, and every worker writes only its own indexes, so
// the output order matches reqs. The first error cancels the rest.
func (g *Generator) Generate(ctx context.Context, reqs []domain.ReportRequest) ([]domain.DatasetRow, error) {
	rows := make([]domain.DatasetRow, len(reqs))
	if len(reqs) == 0 {
		return rows, nil
	}

	workers := min(g.workers, len(reqs))
	chunk := (len(reqs) + workers - 1) / workers

	eg, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(reqs); start += chunk {
		end := min(start+chunk, len(reqs))
		eg.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				row, err := g.row(reqs[i])
				if err != nil {
					return err
				}
				rows[i] = row
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Stream computes rows one by one and hands each to emit, stopping at the
// first emit error or when ctx is done.
func (g *Generator) Stream(ctx context.Context, reqs []domain.ReportRequest, emit func(domain.DatasetRow) error) error {
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := g.row(req)
		if err != nil {
			return err
		}
		if err := emit(row); err != nil {
			return err
		}
	}
	return nil
}
