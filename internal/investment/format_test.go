package investment

import "testing"

func TestFormatting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got, want string
	}{
		{FormatMoney(77_000_000), "77,000,000.00 SAR"},
		{FormatMoney(-1234.5), "-1,234.50 SAR"},
		{FormatArea(17687.5), "17,687.50 m²"},
		{FormatPercent(12.5), "12.50%"},
		{formatRatio(0.85), "85%"},
		{formatRatio(0.625), "62.5%"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("got=%q want=%q", tt.got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := map[string]float64{
		"77,000,000.00 SAR": 77_000_000,
		"-1,234.50 SAR":     -1234.5,
		"17,687.50 m²":      17687.5,
		"12.50%":            12.5,
		" 42 ":              42,
	}
	for in, want := range tests {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseAmount(%q)=%v want=%v", in, got, want)
		}
	}

	for _, bad := range []string{"", "SAR", "twelve"} {
		if _, err := ParseAmount(bad); err == nil {
			t.Fatalf("ParseAmount(%q): expected error", bad)
		}
	}
}
