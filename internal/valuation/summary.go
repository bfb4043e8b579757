package valuation

import (
	"time"

	"github.com/jpoffo/valuador/internal/market"
)

// Recommendation buckets the discount between intrinsic value and price.
type Recommendation string

const (
	RecommendationBuy        Recommendation = "BUY"
	RecommendationAccumulate Recommendation = "ACCUMULATE"
	RecommendationNeutral    Recommendation = "NEUTRAL"
	RecommendationReduce     Recommendation = "REDUCE"
	RecommendationSell       Recommendation = "SELL"
)

// Recommend maps a discount percentage to its action bucket. The discount is
// (intrinsic - price) / price x 100, so positive means undervalued.
func Recommend(discountPct float64) Recommendation {
	switch {
	case discountPct > 20:
		return RecommendationBuy
	case discountPct > 10:
		return RecommendationAccumulate
	case discountPct < -20:
		return RecommendationSell
	case discountPct < -10:
		return RecommendationReduce
	default:
		return RecommendationNeutral
	}
}

// Summary is the complete result of one analysis. DCF may be absent when the
// pipeline faulted; DCFFault then carries the reason and everything else is
// still filled in.
type Summary struct {
	Ticker      string
	CompanyName string
	Sector      string
	Industry    string
	Currency    string
	Exchange    string
	Period      market.Period
	GeneratedAt time.Time

	CurrentPrice Metric
	Ratios       RatioSet
	Risk         RiskProfile
	Capital      CapitalStructure

	DCF      *DCFResult
	DCFFault error

	Discount       Metric
	Recommendation Recommendation
}
