package valuation

import (
	"fmt"
	"math"

	"github.com/jpoffo/valuador/internal/market"
)

// DCFResult is the discounted-cash-flow outcome for one company.
type DCFResult struct {
	IntrinsicValuePerShare float64
	EnterpriseValue        float64
	EquityValue            float64
	CurrentFCFF            float64
	ProjectedFCFF          []float64
	TerminalValue          float64
	NetDebt                float64
	WACC                   float64
	MarginOfSafety         Metric
}

// CurrentFCFF derives free cash flow to the firm from the latest fiscal
// year: operating cash flow plus capital expenditure. Capex is reported
// negative, so the addition subtracts it.
func CurrentFCFF(stmts *market.Statements) (float64, error) {
	if stmts == nil {
		return 0, fmt.Errorf("%w: financial statements unavailable", ErrComputationFault)
	}
	ocf, ok := stmts.CashFlow.Latest(market.LineOperatingCashFlow)
	if !ok {
		return 0, fmt.Errorf("%w: operating cash flow unavailable", ErrComputationFault)
	}
	capex, ok := stmts.CashFlow.Latest(market.LineCapitalExpenditure)
	if !ok {
		return 0, fmt.Errorf("%w: capital expenditure unavailable", ErrComputationFault)
	}
	return ocf + capex, nil
}

// ProjectFCFF compounds the base cash flow over the horizon, one value per
// projection year.
func ProjectFCFF(base, growth float64, years int) []float64 {
	if years < 1 {
		return nil
	}
	out := make([]float64, 0, years)
	f := base
	for t := 0; t < years; t++ {
		f *= 1 + growth
		out = append(out, f)
	}
	return out
}

// DiscountCashFlows sums the present values of the projections and the
// Gordon Growth terminal value. The discount rate must exceed terminal
// growth or the perpetuity is undefined.
func DiscountCashFlows(projected []float64, wacc, terminalGrowth float64) (enterpriseValue, terminalValue float64, err error) {
	if len(projected) == 0 {
		return 0, 0, fmt.Errorf("%w: no projected cash flows", ErrComputationFault)
	}
	if wacc <= terminalGrowth {
		return 0, 0, fmt.Errorf("%w: wacc %.4f does not exceed terminal growth %.4f",
			ErrComputationFault, wacc, terminalGrowth)
	}

	terminalFCFF := projected[len(projected)-1] * (1 + terminalGrowth)
	terminalValue = terminalFCFF / (wacc - terminalGrowth)

	for t, cf := range projected {
		enterpriseValue += cf / math.Pow(1+wacc, float64(t+1))
	}
	enterpriseValue += terminalValue / math.Pow(1+wacc, float64(len(projected)))

	return enterpriseValue, terminalValue, nil
}

// RunDCF walks the full pipeline: base FCFF, projection, discounting, net
// debt bridge and the per-share intrinsic value. Any fault aborts with
// ErrComputationFault and no partial result.
func RunDCF(data *market.CompanyData, capital CapitalStructure, params Params) (*DCFResult, error) {
	if data == nil || data.Fundamentals == nil {
		return nil, fmt.Errorf("%w: no company data", ErrComputationFault)
	}

	fcff, err := CurrentFCFF(data.Statements)
	if err != nil {
		return nil, err
	}

	if params.ProjectionYears < 1 {
		return nil, fmt.Errorf("%w: projection horizon must be at least one year", ErrComputationFault)
	}
	projected := ProjectFCFF(fcff, params.GrowthRate, params.ProjectionYears)

	enterpriseValue, terminalValue, err := DiscountCashFlows(projected, capital.WACC, params.TerminalGrowth)
	if err != nil {
		return nil, err
	}

	snap := data.Fundamentals
	totalDebt, _ := snap.Get(market.KeyTotalDebt) // missing means none reported
	cash, _ := snap.Get(market.KeyTotalCash)
	netDebt := totalDebt - cash
	equityValue := enterpriseValue - netDebt

	shares, ok := snap.Get(market.KeySharesOutstanding)
	if !ok || shares <= 0 {
		return nil, fmt.Errorf("%w: shares outstanding unavailable", ErrComputationFault)
	}
	intrinsicValue := equityValue / shares

	result := &DCFResult{
		IntrinsicValuePerShare: intrinsicValue,
		EnterpriseValue:        enterpriseValue,
		EquityValue:            equityValue,
		CurrentFCFF:            fcff,
		ProjectedFCFF:          projected,
		TerminalValue:          terminalValue,
		NetDebt:                netDebt,
		WACC:                   capital.WACC,
	}

	if price, ok := snap.Get(market.KeyCurrentPrice); ok && intrinsicValue != 0 {
		result.MarginOfSafety = NewMetric((intrinsicValue - price) / intrinsicValue * 100)
	}

	return result, nil
}
