package valuation

import (
	"github.com/jpoffo/valuador/internal/market"
)

// CapitalStructure is the weighted cost of capital and its inputs.
type CapitalStructure struct {
	EquityWeight float64
	DebtWeight   float64
	CostOfEquity float64
	CostOfDebt   float64
	TaxRate      float64
	WACC         float64
	Basis        Basis
}

// defaultCapitalStructure substitutes conservative market-typical rates when
// the capital base cannot be established.
func defaultCapitalStructure(taxRate float64) CapitalStructure {
	return CapitalStructure{
		WACC:         0.09,
		CostOfEquity: 0.10,
		CostOfDebt:   0.06,
		TaxRate:      taxRate,
		Basis:        BasisDegradedDefault,
	}
}

// ComputeWACC weighs the CAPM cost of equity against the after-tax cost of
// debt by market values. A missing market cap or an empty capital base
// degrades to the default structure, never to an error.
func ComputeWACC(snap *market.FundamentalsSnapshot, beta float64, params Params) CapitalStructure {
	costOfEquity := params.RiskFreeRate + beta*(params.MarketReturn-params.RiskFreeRate)

	marketCap, okCap := snap.Get(market.KeyMarketCap)
	totalDebt, _ := snap.Get(market.KeyTotalDebt) // absent means none reported

	if !okCap || marketCap+totalDebt <= 0 {
		return defaultCapitalStructure(params.TaxRate)
	}

	costOfDebt := params.CostOfDebt
	if costOfDebt == 0 {
		if interest, ok := snap.Get(market.KeyInterestExpense); ok && totalDebt > 0 {
			costOfDebt = interest / totalDebt
		} else {
			costOfDebt = 0.06
		}
	}

	equityWeight := marketCap / (marketCap + totalDebt)
	debtWeight := 1 - equityWeight

	wacc := equityWeight*costOfEquity + debtWeight*costOfDebt*(1-params.TaxRate)

	return CapitalStructure{
		EquityWeight: equityWeight,
		DebtWeight:   debtWeight,
		CostOfEquity: costOfEquity,
		CostOfDebt:   costOfDebt,
		TaxRate:      params.TaxRate,
		WACC:         wacc,
		Basis:        BasisComputed,
	}
}
