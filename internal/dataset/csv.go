package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

var Header = []string{
	"property_type", "district", "land_area", "num_floors",
	"total_investment", "total_revenue", "gross_profit", "annual_rent", "roi",
}

func amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// WriteCSV writes the header and one line per row, amounts fixed at two
// decimals.
func WriteCSV(w io.Writer, rows []domain.DatasetRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.PropertyType,
			r.District,
			amount(r.LandArea),
			strconv.Itoa(r.NumFloors),
			amount(r.TotalInvestment),
			amount(r.TotalRevenue),
			amount(r.GrossProfit),
			amount(r.AnnualRent),
			amount(r.ROI),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV. Columns are matched by header
// name, so extra columns are ignored.
func ReadCSV(r io.Reader) ([]domain.DatasetRow, error) {
	cr := csv.NewReader(r)
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(head))
	for i, name := range head {
		col[name] = i
	}
	for _, name := range Header {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []domain.DatasetRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parseRecord(rec, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(rec []string, col map[string]int) (domain.DatasetRow, error) {
	num := func(name string) (float64, error) {
		d, err := decimal.NewFromString(rec[col[name]])
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		f, _ := d.Float64()
		return f, nil
	}

	row := domain.DatasetRow{
		PropertyType: rec[col["property_type"]],
		District:     rec[col["district"]],
	}
	floors, err := strconv.Atoi(rec[col["num_floors"]])
	if err != nil {
		return row, fmt.Errorf("num_floors: %w", err)
	}
	row.NumFloors = floors

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"land_area", &row.LandArea},
		{"total_investment", &row.TotalInvestment},
		{"total_revenue", &row.TotalRevenue},
		{"gross_profit", &row.GrossProfit},
		{"annual_rent", &row.AnnualRent},
		{"roi", &row.ROI},
	} {
		v, err := num(f.name)
		if err != nil {
			return row, err
		}
		*f.dst = v
	}
	return row, nil
}
