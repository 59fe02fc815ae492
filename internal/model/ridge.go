package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrSingular = errors.New("normal equations are not positive definite")

// fitRidge solves (AᵀA + λI')w = Aᵀy where A is x with a leading column of
// ones and I' leaves the intercept unpenalized. w[0] is the intercept.
func fitRidge(x [][]float64, y []float64, lambda float64) ([]float64, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("fit: %d rows, %d targets", len(x), len(y))
	}
	p := len(x[0]) + 1
	ata := mat.NewSymDense(p, nil)
	atb := mat.NewVecDense(p, nil)
	row := make([]float64, p)
	for i := range x {
		row[0] = 1
		copy(row[1:], x[i])
		for a := 0; a < p; a++ {
			atb.SetVec(a, atb.AtVec(a)+row[a]*y[i])
			for b := a; b < p; b++ {
				ata.SetSym(a, b, ata.At(a, b)+row[a]*row[b])
			}
		}
	}
	for j := 1; j < p; j++ {
		ata.SetSym(j, j, ata.At(j, j)+lambda)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(ata); !ok {
		return nil, ErrSingular
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, atb); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("solve: %w", err)
		}
	}
	return mat.Col(nil, 0, &w), nil
}

func dot(w, row []float64) float64 {
	sum := w[0]
	for j, v := range row {
		sum += w[j+1] * v
	}
	return sum
}

// iqrBounds returns the [q1 - k*iqr, q3 + k*iqr] fence of values.
func iqrBounds(values []float64, k float64) (lo, hi float64) {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}

// splitIndexes shuffles 0..n-1 with a seeded generator and cuts off the test
// share.
func splitIndexes(n int, testFraction float64, seed uint64) (train, test []int) {
	rng := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	perm := rng.Perm(n)
	nTest := int(math.Round(float64(n) * testFraction))
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}

type Metrics struct {
	TrainR2 float64 `json:"train_r2"`
	TestR2  float64 `json:"test_r2"`
	MAE     float64 `json:"mae"`
	RMSE    float64 `json:"rmse"`
	MAPE    float64 `json:"mape"`
	Train   int     `json:"train_rows"`
	Test    int     `json:"test_rows"`
}

func r2(y, pred []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	mean := stat.Mean(y, nil)
	var ssRes, ssTot float64
	for i := range y {
		ssRes += (y[i] - pred[i]) * (y[i] - pred[i])
		ssTot += (y[i] - mean) * (y[i] - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// errorMetrics returns MAE, RMSE and MAPE (percent). MAPE skips rows whose
// actual value is zero.
func errorMetrics(y, pred []float64) (mae, rmse, mape float64) {
	if len(y) == 0 {
		return 0, 0, 0
	}
	var absSum, sqSum, pctSum float64
	var pctN int
	for i := range y {
		d := pred[i] - y[i]
		absSum += math.Abs(d)
		sqSum += d * d
		if y[i] != 0 {
			pctSum += math.Abs(d / y[i])
			pctN++
		}
	}
	n := float64(len(y))
	mae = absSum / n
	rmse = math.Sqrt(sqSum / n)
	if pctN > 0 {
		mape = pctSum / float64(pctN) * 100
	}
	return mae, rmse, mape
}
