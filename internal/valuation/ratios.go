package valuation

import (
	"github.com/jpoffo/valuador/internal/market"
)

// RatioSet is the fundamental ratio panel of one company. Percentage-valued
// ratios are stored as percents (fraction x 100), matching how they are read
// and displayed.
type RatioSet struct {
	CurrentPrice      Metric
	MarketCap         Metric
	SharesOutstanding Metric
	ROE               Metric
	ROA               Metric
	GrossMargin       Metric
	OperatingMargin   Metric
	ProfitMargin      Metric
	PERatio           Metric
	ForwardPE         Metric
	PBRatio           Metric
	PSRatio           Metric
	EVEbitda          Metric
	EVRevenue         Metric
	CurrentRatio      Metric
	QuickRatio        Metric
	DebtEquity        Metric
	DebtEbitda        Metric
	DividendYield     Metric
	PayoutRatio       Metric
}

// ComputeRatios maps the snapshot into the ratio panel. Absent source keys
// yield absent Metrics, with one deliberate exception: a company without a
// reported dividend yield gets an explicit zero, not an absent value.
func ComputeRatios(snap *market.FundamentalsSnapshot) RatioSet {
	return RatioSet{
		CurrentPrice:      metricFrom(snap, market.KeyCurrentPrice),
		MarketCap:         metricFrom(snap, market.KeyMarketCap),
		SharesOutstanding: metricFrom(snap, market.KeySharesOutstanding),
		ROE:               percentFrom(snap, market.KeyReturnOnEquity),
		ROA:               percentFrom(snap, market.KeyReturnOnAssets),
		GrossMargin:       percentFrom(snap, market.KeyGrossMargins),
		OperatingMargin:   percentFrom(snap, market.KeyOperatingMargins),
		ProfitMargin:      percentFrom(snap, market.KeyProfitMargins),
		PERatio:           metricFrom(snap, market.KeyTrailingPE),
		ForwardPE:         metricFrom(snap, market.KeyForwardPE),
		PBRatio:           metricFrom(snap, market.KeyPriceToBook),
		PSRatio:           metricFrom(snap, market.KeyPriceToSales),
		EVEbitda:          metricFrom(snap, market.KeyEnterpriseToEbitda),
		EVRevenue:         metricFrom(snap, market.KeyEnterpriseToRev),
		CurrentRatio:      metricFrom(snap, market.KeyCurrentRatio),
		QuickRatio:        metricFrom(snap, market.KeyQuickRatio),
		DebtEquity:        metricFrom(snap, market.KeyDebtToEquity),
		DebtEbitda:        debtToEbitda(snap),
		DividendYield:     dividendYield(snap),
		PayoutRatio:       percentFrom(snap, market.KeyPayoutRatio),
	}
}

func metricFrom(snap *market.FundamentalsSnapshot, key string) Metric {
	if v, ok := snap.Get(key); ok {
		return NewMetric(v)
	}
	return Metric{}
}

func percentFrom(snap *market.FundamentalsSnapshot, key string) Metric {
	if v, ok := snap.Get(key); ok {
		return NewMetric(v * 100)
	}
	return Metric{}
}

func debtToEbitda(snap *market.FundamentalsSnapshot) Metric {
	debt, okDebt := snap.Get(market.KeyTotalDebt)
	ebitda, okEbitda := snap.Get(market.KeyEbitda)
	if !okDebt || !okEbitda || ebitda == 0 {
		return Metric{}
	}
	return NewMetric(debt / ebitda)
}

func dividendYield(snap *market.FundamentalsSnapshot) Metric {
	if v, ok := snap.Get(market.KeyDividendYield); ok && v != 0 {
		return NewMetric(v * 100)
	}
	return NewMetric(0)
}
