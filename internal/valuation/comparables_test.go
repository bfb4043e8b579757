package valuation

import (
	"testing"

	"github.com/jpoffo/valuador/internal/market"
)

func TestPeerRowFrom(t *testing.T) {
	snap := market.NewFundamentalsSnapshot("VALE3.SA")
	snap.Set(market.KeyMarketCap, 280e9)
	snap.Set(market.KeyTrailingPE, 5.8)
	snap.Set(market.KeyEnterpriseToEbitda, 3.4)
	snap.Set(market.KeyPriceToBook, 1.2)

	row := PeerRowFrom(snap)

	if row.Ticker != "VALE3.SA" {
		t.Errorf("ticker = %q", row.Ticker)
	}
	if !row.MarketCap.Valid || row.MarketCap.Value != 280e9 {
		t.Errorf("market cap = %+v", row.MarketCap)
	}
	if !row.PERatio.Valid || row.PERatio.Value != 5.8 {
		t.Errorf("p/e = %+v", row.PERatio)
	}
	if !row.EVEbitda.Valid || row.EVEbitda.Value != 3.4 {
		t.Errorf("ev/ebitda = %+v", row.EVEbitda)
	}
	if !row.PBRatio.Valid || row.PBRatio.Value != 1.2 {
		t.Errorf("p/b = %+v", row.PBRatio)
	}

	// Price-to-sales was never reported.
	if row.PSRatio.Valid {
		t.Errorf("p/s should be invalid, got %+v", row.PSRatio)
	}
}
