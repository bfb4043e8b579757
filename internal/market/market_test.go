package market

import (
	"testing"
)

func TestMergeMissing(t *testing.T) {
	dst := NewFundamentalsSnapshot("PETR4.SA")
	dst.LongName = "Petrobras"
	dst.Set(KeyCurrentPrice, 38.45)

	src := NewFundamentalsSnapshot("PETR4.SA")
	src.LongName = "Petroleo Brasileiro"
	src.Sector = "Energy"
	src.Currency = "BRL"
	src.Set(KeyCurrentPrice, 38.10)
	src.Set(KeyMarketCap, 5.01e11)

	mergeMissing(dst, src)

	if dst.LongName != "Petrobras" {
		t.Errorf("merge replaced existing long name: %q", dst.LongName)
	}
	if dst.Sector != "Energy" || dst.Currency != "BRL" {
		t.Errorf("merge skipped missing identity fields: %q / %q", dst.Sector, dst.Currency)
	}
	if v, _ := dst.Get(KeyCurrentPrice); v != 38.45 {
		t.Errorf("merge replaced existing metric: %v", v)
	}
	if v, ok := dst.Get(KeyMarketCap); !ok || v != 5.01e11 {
		t.Errorf("merge skipped missing metric: %v (ok=%v)", v, ok)
	}
}

func TestPromoteStatementMetrics(t *testing.T) {
	snap := NewFundamentalsSnapshot("PETR4.SA")
	snap.Set(KeyTotalDebt, 2.70e11) // snapshot value wins

	stmts := &Statements{
		Income: Statement{
			Periods: []string{"2023-12-31", "2022-12-31"},
			Items: map[string][]float64{
				LineInterestExpense: {1.8e10, 2.1e10},
				LineEBITDA:          {2.4e11, 2.6e11},
			},
		},
		Balance: Statement{
			Periods: []string{"2023-12-31"},
			Items: map[string][]float64{
				LineTotalDebt:          {2.9e11},
				LineCashAndEquivalents: {6.0e10},
			},
		},
	}

	promoteStatementMetrics(snap, stmts)

	if v, ok := snap.Get(KeyInterestExpense); !ok || v != 1.8e10 {
		t.Errorf("interest expense not promoted: %v (ok=%v)", v, ok)
	}
	if v, ok := snap.Get(KeyEbitda); !ok || v != 2.4e11 {
		t.Errorf("ebitda not promoted: %v (ok=%v)", v, ok)
	}
	if v, ok := snap.Get(KeyTotalCash); !ok || v != 6.0e10 {
		t.Errorf("cash not promoted: %v (ok=%v)", v, ok)
	}
	if v, _ := snap.Get(KeyTotalDebt); v != 2.70e11 {
		t.Errorf("promotion overwrote snapshot total debt: %v", v)
	}
}

func TestNeedsScrape(t *testing.T) {
	snap := NewFundamentalsSnapshot("PETR4.SA")
	if !needsScrape(snap) {
		t.Error("empty snapshot should need the scrape")
	}

	for _, target := range scrapeTargets {
		snap.Set(target.key, 1)
	}
	if needsScrape(snap) {
		t.Error("fully populated snapshot should skip the scrape")
	}
}

func TestSnapshotGetSet(t *testing.T) {
	snap := NewFundamentalsSnapshot("X")

	if _, ok := snap.Get(KeyEbitda); ok {
		t.Error("fresh snapshot should not report values")
	}

	snap.Set(KeyEbitda, 0)
	if v, ok := snap.Get(KeyEbitda); !ok || v != 0 {
		t.Error("an explicitly stored zero is a present value")
	}

	snap.SetIfAbsent(KeyEbitda, 42)
	if v, _ := snap.Get(KeyEbitda); v != 0 {
		t.Errorf("SetIfAbsent replaced present value: %v", v)
	}

	var nilSnap *FundamentalsSnapshot
	if _, ok := nilSnap.Get(KeyEbitda); ok {
		t.Error("nil snapshot must report absent")
	}
}
