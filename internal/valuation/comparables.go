package valuation

import (
	"github.com/jpoffo/valuador/internal/market"
)

// PeerRow is one company's trading multiples in a comparables table.
type PeerRow struct {
	Ticker    string
	MarketCap Metric
	PERatio   Metric
	EVEbitda  Metric
	PBRatio   Metric
	PSRatio   Metric
}

// PeerComparison is the comparables table, target company first.
type PeerComparison struct {
	Rows []PeerRow
}

// PeerRowFrom extracts the multiples a comparison row shows.
func PeerRowFrom(snap *market.FundamentalsSnapshot) PeerRow {
	return PeerRow{
		Ticker:    snap.Symbol,
		MarketCap: metricFrom(snap, market.KeyMarketCap),
		PERatio:   metricFrom(snap, market.KeyTrailingPE),
		EVEbitda:  metricFrom(snap, market.KeyEnterpriseToEbitda),
		PBRatio:   metricFrom(snap, market.KeyPriceToBook),
		PSRatio:   metricFrom(snap, market.KeyPriceToSales),
	}
}
