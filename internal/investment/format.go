package investment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	CurrencyUnit = "SAR"
	AreaUnit     = "m²"

	amountFormat = "#,###.##"
)

// FormatMoney renders v as "1,234,567.89 SAR".
func FormatMoney(v float64) string {
	return humanize.FormatFloat(amountFormat, v) + " " + CurrencyUnit
}

// FormatArea renders v as "1,234.50 m²".
func FormatArea(v float64) string {
	return humanize.FormatFloat(amountFormat, v) + " " + AreaUnit
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// formatRatio renders a [0,1] ratio as a whole-ish percentage ("85%", "62.5%").
func formatRatio(r float64) string {
	pct := math.Round(r*10000) / 100
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// ParseAmount reads back a value produced by FormatMoney, FormatArea or
// FormatPercent. Bare numbers with or without thousands separators are
// accepted too.
func ParseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	for _, unit := range []string{CurrencyUnit, AreaUnit, "%"} {
		clean = strings.TrimSpace(strings.TrimSuffix(clean, unit))
	}
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return 0, fmt.Errorf("parse amount %q: empty", s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}
