package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

type Target string

const (
	TotalInvestment Target = "total_investment"
	TotalRevenue    Target = "total_revenue"
	GrossProfit     Target = "gross_profit"
	AnnualRent      Target = "annual_rent"
	ROI             Target = "roi"
)

func Targets() []Target {
	return []Target{TotalInvestment, TotalRevenue, GrossProfit, AnnualRent, ROI}
}

func (t Target) of(r domain.DatasetRow) float64 {
	switch t {
	case TotalInvestment:
		return r.TotalInvestment
	case TotalRevenue:
		return r.TotalRevenue
	case GrossProfit:
		return r.GrossProfit
	case AnnualRent:
		return r.AnnualRent
	case ROI:
		return r.ROI
	}
	return 0
}

func (t Target) set(p *domain.Prediction, v float64) {
	switch t {
	case TotalInvestment:
		p.TotalInvestment = v
	case TotalRevenue:
		p.TotalRevenue = v
	case GrossProfit:
		p.GrossProfit = v
	case AnnualRent:
		p.AnnualRent = v
	case ROI:
		p.ROI = v
	}
}

var (
	ErrNotEnoughRows = errors.New("not enough rows to train")
	ErrNoModel       = errors.New("model not trained")
)

// MinRows is the smallest dataset, after outlier removal, that Train accepts.
const MinRows = 20

// Model is a ridge regression of one target over the encoded request.
type Model struct {
	Target    Target    `json:"target"`
	Encoder   Encoder   `json:"encoder"`
	Scaler    Scaler    `json:"scaler"`
	Features  []string  `json:"features"`
	Weights   []float64 `json:"weights"`
	Lambda    float64   `json:"lambda"`
	Metrics   Metrics   `json:"metrics"`
	TrainedAt time.Time `json:"trained_at"`
}

func (m *Model) Predict(req domain.ReportRequest) (float64, error) {
	raw, err := m.Encoder.Encode(req)
	if err != nil {
		return 0, err
	}
	x, err := m.Scaler.Apply(raw)
	if err != nil {
		return 0, err
	}
	if len(m.Weights) != len(x)+1 {
		return 0, fmt.Errorf("model %s: %d weights for %d features", m.Target, len(m.Weights), len(x))
	}
	return dot(m.Weights, x), nil
}

type TrainOptions struct {
	Lambda       float64
	TestFraction float64
	Seed         uint64
	// OutlierK is the IQR fence multiplier; 0 keeps every row.
	OutlierK float64
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{Lambda: 0.1, TestFraction: 0.2, Seed: 42, OutlierK: 1.5}
}

// Set holds one model per target.
type Set struct {
	models map[Target]*Model
}

func NewSet(models ...*Model) *Set {
	s := &Set{models: make(map[Target]*Model, len(models))}
	for _, m := range models {
		s.models[m.Target] = m
	}
	return s
}

func (s *Set) Model(t Target) (*Model, bool) {
	m, ok := s.models[t]
	return m, ok
}

// Predict runs every target model on req.
func (s *Set) Predict(req domain.ReportRequest) (domain.Prediction, error) {
	var p domain.Prediction
	for _, t := range Targets() {
		m, ok := s.models[t]
		if !ok {
			return domain.Prediction{}, fmt.Errorf("%w: %s", ErrNoModel, t)
		}
		v, err := m.Predict(req)
		if err != nil {
			return domain.Prediction{}, fmt.Errorf("predict %s: %w", t, err)
		}
		t.set(&p, v)
	}
	return p, nil
}

// RemoveOutliers drops every row that lies outside the IQR fence of any
// target.
func RemoveOutliers(rows []domain.DatasetRow, k float64) []domain.DatasetRow {
	if k <= 0 || len(rows) == 0 {
		return rows
	}
	type fence struct{ lo, hi float64 }
	fences := make(map[Target]fence, len(Targets()))
	for _, t := range Targets() {
		vals := make([]float64, len(rows))
		for i, r := range rows {
			vals[i] = t.of(r)
		}
		lo, hi := iqrBounds(vals, k)
		fences[t] = fence{lo, hi}
	}

	out := make([]domain.DatasetRow, 0, len(rows))
	for _, r := range rows {
		keep := true
		for t, f := range fences {
			if v := t.of(r); v < f.lo || v > f.hi {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// Train fits one model per target on a shared train/test split.
func Train(rows []domain.DatasetRow, opts TrainOptions) (*Set, error) {
	rows = RemoveOutliers(rows, opts.OutlierK)
	if len(rows) < MinRows {
		return nil, fmt.Errorf("%w: %d after outlier removal, need %d", ErrNotEnoughRows, len(rows), MinRows)
	}

	enc := fitEncoder(rows)
	raw := make([][]float64, len(rows))
	for i, r := range rows {
		x, err := enc.Encode(r.Request())
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		raw[i] = x
	}

	trainIdx, testIdx := splitIndexes(len(rows), opts.TestFraction, opts.Seed)
	trainRaw := pick(raw, trainIdx)
	scaler := fitScaler(trainRaw)
	scaled := make([][]float64, len(raw))
	for i, x := range raw {
		scaled[i], _ = scaler.Apply(x)
	}
	xTrain := pick(scaled, trainIdx)
	xTest := pick(scaled, testIdx)

	now := time.Now().UTC()
	set := NewSet()
	for _, t := range Targets() {
		y := make([]float64, len(rows))
		for i, r := range rows {
			y[i] = t.of(r)
		}
		yTrain := pick(y, trainIdx)
		yTest := pick(y, testIdx)

		w, err := fitRidge(xTrain, yTrain, opts.Lambda)
		if err != nil {
			return nil, fmt.Errorf("fit %s: %w", t, err)
		}
		predTrain := predictAll(w, xTrain)
		predTest := predictAll(w, xTest)
		mae, rmse, mape := errorMetrics(yTest, predTest)

		set.models[t] = &Model{
			Target:   t,
			Encoder:  enc,
			Scaler:   scaler,
			Features: enc.Names(),
			Weights:  w,
			Lambda:   opts.Lambda,
			Metrics: Metrics{
				TrainR2: r2(yTrain, predTrain),
				TestR2:  r2(yTest, predTest),
				MAE:     mae,
				RMSE:    rmse,
				MAPE:    mape,
				Train:   len(yTrain),
				Test:    len(yTest),
			},
			TrainedAt: now,
		}
	}
	return set, nil
}

func pick[T any](src []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}

func predictAll(w []float64, x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = dot(w, row)
	}
	return out
}
