package valuation

import (
	"time"

	"github.com/jpoffo/valuador/internal/market"
)

// Engine runs one analysis over fetched data: risk, cost of capital, ratios,
// DCF and the recommendation, in that order. An Engine is immutable and safe
// to reuse across tickers.
type Engine struct {
	params Params
}

func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

func (e *Engine) Params() Params {
	return e.params
}

// Analyze produces the summary for one company. A DCF fault is recorded on
// the summary instead of failing it; risk and capital degrade to their
// documented defaults on their own.
func (e *Engine) Analyze(data *market.CompanyData, benchmark market.PriceSeries) *Summary {
	snap := data.Fundamentals

	summary := &Summary{
		Ticker:      data.Symbol,
		Period:      data.Period,
		GeneratedAt: time.Now(),
	}
	if snap != nil {
		summary.CompanyName = snap.LongName
		summary.Sector = snap.Sector
		summary.Industry = snap.Industry
		summary.Currency = snap.Currency
		summary.Exchange = snap.Exchange
		summary.CurrentPrice = metricFrom(snap, market.KeyCurrentPrice)
	}

	summary.Risk = EstimateRisk(data.Prices, benchmark)
	summary.Capital = ComputeWACC(snap, summary.Risk.Beta, e.params)
	summary.Ratios = ComputeRatios(snap)

	dcf, err := RunDCF(data, summary.Capital, e.params)
	if err != nil {
		summary.DCFFault = err
		return summary
	}
	summary.DCF = dcf

	if price, ok := snap.Get(market.KeyCurrentPrice); ok && price > 0 {
		discount := (dcf.IntrinsicValuePerShare - price) / price * 100
		summary.Discount = NewMetric(discount)
		summary.Recommendation = Recommend(discount)
	}

	return summary
}
