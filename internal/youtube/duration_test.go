package youtube

import "testing"

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"hours minutes seconds", "PT1H2M10S", "1:02:10"},
		{"minutes seconds", "PT3M5S", "0:03:05"},
		{"seconds only", "PT45S", "0:00:45"},
		{"hours only", "PT2H", "2:00:00"},
		{"days folded into hours", "P1DT2H", "26:00:00"},
		{"fractional seconds truncated", "PT1M30.5S", "0:01:30"},
		{"empty", "", "Unknown"},
		{"garbage", "1h02m", "Unknown"},
		{"bare period", "P", "Unknown"},
		{"bare time designator", "PT", "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDuration(tc.in); got != tc.want {
				t.Errorf("FormatDuration(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
