package market

import (
	"fmt"
	"time"
)

// Period is a price-history lookback window.
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period3Y  Period = "3y"
	Period5Y  Period = "5y"
	Period10Y Period = "10y"
	PeriodMax Period = "max"
)

// Periods lists the accepted windows in menu order.
func Periods() []Period {
	return []Period{
		Period1Mo, Period3Mo, Period6Mo,
		Period1Y, Period2Y, Period3Y, Period5Y, Period10Y,
		PeriodMax,
	}
}

// ParsePeriod validates a raw period string.
func ParsePeriod(raw string) (Period, error) {
	p := Period(raw)
	for _, known := range Periods() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid period %q (valid: 1mo, 3mo, 6mo, 1y, 2y, 3y, 5y, 10y, max)", raw)
}

func (p Period) String() string { return string(p) }

// Start returns the window's start instant relative to now. The max window
// starts at the Unix epoch, which predates any listing the provider serves.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case Period1Mo:
		return now.AddDate(0, -1, 0)
	case Period3Mo:
		return now.AddDate(0, -3, 0)
	case Period6Mo:
		return now.AddDate(0, -6, 0)
	case Period1Y:
		return now.AddDate(-1, 0, 0)
	case Period2Y:
		return now.AddDate(-2, 0, 0)
	case Period3Y:
		return now.AddDate(-3, 0, 0)
	case Period5Y:
		return now.AddDate(-5, 0, 0)
	case Period10Y:
		return now.AddDate(-10, 0, 0)
	case PeriodMax:
		return time.Unix(0, 0).UTC()
	default:
		return now.AddDate(-1, 0, 0)
	}
}
