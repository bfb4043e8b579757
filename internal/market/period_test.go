package market

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	valid := []string{"1mo", "3mo", "6mo", "1y", "2y", "3y", "5y", "10y", "max"}
	for _, raw := range valid {
		p, err := ParsePeriod(raw)
		if err != nil {
			t.Errorf("ParsePeriod(%q): %v", raw, err)
		}
		if p.String() != raw {
			t.Errorf("ParsePeriod(%q) = %q", raw, p)
		}
	}

	invalid := []string{"", "1d", "1Y", "12mo", "forever", "3 y"}
	for _, raw := range invalid {
		if _, err := ParsePeriod(raw); err == nil {
			t.Errorf("ParsePeriod(%q): expected error", raw)
		}
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		period Period
		want   time.Time
	}{
		{Period1Mo, time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)},
		{Period3Mo, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)},
		{Period6Mo, time.Date(2024, 12, 15, 12, 0, 0, 0, time.UTC)},
		{Period1Y, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)},
		{Period2Y, time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)},
		{Period3Y, time.Date(2022, 6, 15, 12, 0, 0, 0, time.UTC)},
		{Period5Y, time.Date(2020, 6, 15, 12, 0, 0, 0, time.UTC)},
		{Period10Y, time.Date(2015, 6, 15, 12, 0, 0, 0, time.UTC)},
		{PeriodMax, time.Unix(0, 0).UTC()},
	}

	for _, tc := range cases {
		if got := tc.period.Start(now); !got.Equal(tc.want) {
			t.Errorf("%s.Start = %v, want %v", tc.period, got, tc.want)
		}
	}
}

func TestPeriodsOrder(t *testing.T) {
	periods := Periods()
	if len(periods) != 9 {
		t.Fatalf("expected 9 periods, got %d", len(periods))
	}
	if periods[0] != Period1Mo || periods[len(periods)-1] != PeriodMax {
		t.Errorf("unexpected menu order: %v", periods)
	}

	now := time.Now()
	for i := 1; i < len(periods); i++ {
		if periods[i].Start(now).After(periods[i-1].Start(now)) {
			t.Errorf("period %s starts after %s", periods[i], periods[i-1])
		}
	}
}
