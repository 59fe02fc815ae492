package model

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

// Encoder maps a request to the numeric design row. Categories are one-hot
// encoded with the first (lexically smallest) level dropped; land area is
// also crossed with each category so that per-type and per-district prices
// can be learned as slopes.
type Encoder struct {
	Types     []string `json:"types"`
	Districts []string `json:"districts"`
}

func fitEncoder(rows []domain.DatasetRow) Encoder {
	types := map[string]struct{}{}
	districts := map[string]struct{}{}
	for _, r := range rows {
		types[string(catalog.ParsePropertyType(r.PropertyType))] = struct{}{}
		districts[r.District] = struct{}{}
	}
	return Encoder{Types: sortedKeys(types), Districts: sortedKeys(districts)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (e Encoder) Names() []string {
	names := []string{"land_area", "num_floors", "area_per_floor", "land_x_floors"}
	for _, t := range dropFirst(e.Types) {
		names = append(names, "type="+t)
	}
	for _, d := range dropFirst(e.Districts) {
		names = append(names, "district="+d)
	}
	for _, t := range dropFirst(e.Types) {
		names = append(names, "land_x_type="+t)
	}
	for _, d := range dropFirst(e.Districts) {
		names = append(names, "land_x_district="+d)
	}
	for _, t := range dropFirst(e.Types) {
		names = append(names, "land_x_floors_x_type="+t)
	}
	return names
}

func dropFirst(levels []string) []string {
	if len(levels) == 0 {
		return nil
	}
	return levels[1:]
}

// Encode returns the unscaled feature row of req. Categories not seen at
// training time are rejected.
func (e Encoder) Encode(req domain.ReportRequest) ([]float64, error) {
	pt := string(catalog.ParsePropertyType(req.PropertyType))
	ti, ok := slices.BinarySearch(e.Types, pt)
	if !ok {
		return nil, &catalog.UnknownPropertyTypeError{PropertyType: pt}
	}
	di, ok := slices.BinarySearch(e.Districts, req.District)
	if !ok {
		return nil, &catalog.UnknownDistrictError{PropertyType: pt, District: req.District}
	}
	if req.NumFloors < 1 {
		return nil, fmt.Errorf("num_floors must be >= 1")
	}

	land := req.LandArea
	floors := float64(req.NumFloors)
	nt := len(dropFirst(e.Types))
	nd := len(dropFirst(e.Districts))

	row := make([]float64, 0, 4+3*nt+2*nd)
	row = append(row, land, floors, land/floors, land*floors)
	typeHot := oneHot(ti, nt)
	districtHot := oneHot(di, nd)
	row = append(row, typeHot...)
	row = append(row, districtHot...)
	for _, v := range typeHot {
		row = append(row, land*v)
	}
	for _, v := range districtHot {
		row = append(row, land*v)
	}
	for _, v := range typeHot {
		row = append(row, land*floors*v)
	}
	return row, nil
}

// oneHot encodes level idx of a category whose level 0 is dropped.
func oneHot(idx, width int) []float64 {
	out := make([]float64, width)
	if idx > 0 {
		out[idx-1] = 1
	}
	return out
}

// Scaler centers every column on its median and divides by its
// interquartile range. Columns with zero spread are only centered.
type Scaler struct {
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

func fitScaler(x [][]float64) Scaler {
	if len(x) == 0 {
		return Scaler{}
	}
	p := len(x[0])
	s := Scaler{Center: make([]float64, p), Scale: make([]float64, p)}
	col := make([]float64, len(x))
	for j := 0; j < p; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		slices.Sort(col)
		q1 := stat.Quantile(0.25, stat.Empirical, col, nil)
		q3 := stat.Quantile(0.75, stat.Empirical, col, nil)
		s.Center[j] = stat.Quantile(0.5, stat.Empirical, col, nil)
		s.Scale[j] = q3 - q1
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return s
}

func (s Scaler) Apply(row []float64) ([]float64, error) {
	if len(row) != len(s.Center) {
		return nil, fmt.Errorf("feature width %d, scaler expects %d", len(row), len(s.Center))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Center[j]) / s.Scale[j]
	}
	return out, nil
}
