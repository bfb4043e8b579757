package valuation

import (
	"errors"
	"math"
	"testing"

	"github.com/jpoffo/valuador/internal/market"
)

// testCompanyData builds a company whose cash flow statement yields a base
// FCFF of exactly 100: operating cash flow 150 plus capex -50.
func testCompanyData() *market.CompanyData {
	snap := market.NewFundamentalsSnapshot("PETR4.SA")
	snap.LongName = "Petroleo Brasileiro S.A."
	snap.Set(market.KeyCurrentPrice, 20)
	snap.Set(market.KeyMarketCap, 1000)
	snap.Set(market.KeyTotalDebt, 500)
	snap.Set(market.KeyTotalCash, 200)
	snap.Set(market.KeySharesOutstanding, 100)

	return &market.CompanyData{
		Symbol:       "PETR4.SA",
		Period:       market.Period5Y,
		Fundamentals: snap,
		Statements: &market.Statements{
			CashFlow: market.Statement{
				Periods: []string{"2024-12-31"},
				Items: map[string][]float64{
					market.LineOperatingCashFlow:  {150},
					market.LineCapitalExpenditure: {-50},
				},
			},
		},
	}
}

func twoYearParams() Params {
	params := DefaultParams()
	params.GrowthRate = 0.05
	params.TerminalGrowth = 0.03
	params.ProjectionYears = 2
	return params
}

func TestCurrentFCFF(t *testing.T) {
	data := testCompanyData()

	fcff, err := CurrentFCFF(data.Statements)
	if err != nil {
		t.Fatalf("CurrentFCFF: %v", err)
	}
	if fcff != 100 {
		t.Errorf("fcff = %v, want 100", fcff)
	}
}

func TestCurrentFCFFFaults(t *testing.T) {
	cases := []struct {
		name  string
		stmts *market.Statements
	}{
		{"nil statements", nil},
		{"empty cash flow", &market.Statements{}},
		{"missing capex", &market.Statements{CashFlow: market.Statement{
			Periods: []string{"2024-12-31"},
			Items:   map[string][]float64{market.LineOperatingCashFlow: {150}},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CurrentFCFF(tc.stmts); !errors.Is(err, ErrComputationFault) {
				t.Errorf("err = %v, want ErrComputationFault", err)
			}
		})
	}
}

func TestProjectFCFF(t *testing.T) {
	projected := ProjectFCFF(100, 0.05, 2)
	if len(projected) != 2 {
		t.Fatalf("projected %d years, want 2", len(projected))
	}
	if math.Abs(projected[0]-105) > 1e-9 || math.Abs(projected[1]-110.25) > 1e-9 {
		t.Errorf("projected = %v, want [105 110.25]", projected)
	}

	if out := ProjectFCFF(100, 0.05, 0); out != nil {
		t.Errorf("zero-year projection = %v, want nil", out)
	}
}

func TestDiscountCashFlows(t *testing.T) {
	projected := ProjectFCFF(100, 0.05, 2)

	enterpriseValue, terminalValue, err := DiscountCashFlows(projected, 0.09, 0.03)
	if err != nil {
		t.Fatalf("DiscountCashFlows: %v", err)
	}

	// Gordon Growth on the final year: 110.25 * 1.03 / (0.09 - 0.03).
	if math.Abs(terminalValue-1892.625) > 1e-9 {
		t.Errorf("terminal value = %v, want 1892.625", terminalValue)
	}

	want := 105/1.09 + 110.25/math.Pow(1.09, 2) + terminalValue/math.Pow(1.09, 2)
	if math.Abs(enterpriseValue-want) > 1e-9 {
		t.Errorf("enterprise value = %v, want %v", enterpriseValue, want)
	}

	// Sanity on the discounted legs.
	if pv := 105 / 1.09; math.Abs(pv-96.33) > 0.01 {
		t.Fatalf("first-year present value drifted: %v", pv)
	}
}

func TestDiscountCashFlowsGuards(t *testing.T) {
	if _, _, err := DiscountCashFlows(nil, 0.09, 0.03); !errors.Is(err, ErrComputationFault) {
		t.Errorf("empty projection err = %v, want ErrComputationFault", err)
	}
	if _, _, err := DiscountCashFlows([]float64{105}, 0.03, 0.03); !errors.Is(err, ErrComputationFault) {
		t.Errorf("wacc == terminal growth err = %v, want ErrComputationFault", err)
	}
	if _, _, err := DiscountCashFlows([]float64{105}, 0.02, 0.03); !errors.Is(err, ErrComputationFault) {
		t.Errorf("wacc below terminal growth err = %v, want ErrComputationFault", err)
	}
}

func TestRunDCF(t *testing.T) {
	data := testCompanyData()

	result, err := RunDCF(data, CapitalStructure{WACC: 0.09, Basis: BasisComputed}, twoYearParams())
	if err != nil {
		t.Fatalf("RunDCF: %v", err)
	}

	if result.CurrentFCFF != 100 {
		t.Errorf("current fcff = %v, want 100", result.CurrentFCFF)
	}
	if math.Abs(result.TerminalValue-1892.625) > 1e-9 {
		t.Errorf("terminal value = %v, want 1892.625", result.TerminalValue)
	}

	wantEV := 105/1.09 + 110.25/math.Pow(1.09, 2) + result.TerminalValue/math.Pow(1.09, 2)
	if math.Abs(result.EnterpriseValue-wantEV) > 1e-9 {
		t.Errorf("enterprise value = %v, want %v", result.EnterpriseValue, wantEV)
	}

	// Net debt bridge: 500 debt less 200 cash.
	if result.NetDebt != 300 {
		t.Errorf("net debt = %v, want 300", result.NetDebt)
	}
	wantIV := (wantEV - 300) / 100
	if math.Abs(result.IntrinsicValuePerShare-wantIV) > 1e-9 {
		t.Errorf("intrinsic value = %v, want %v", result.IntrinsicValuePerShare, wantIV)
	}

	// Margin of safety is taken against intrinsic value, not price.
	if !result.MarginOfSafety.Valid {
		t.Fatal("margin of safety should be valid when price is known")
	}
	wantMargin := (wantIV - 20) / wantIV * 100
	if math.Abs(result.MarginOfSafety.Value-wantMargin) > 1e-9 {
		t.Errorf("margin of safety = %v, want %v", result.MarginOfSafety.Value, wantMargin)
	}
}

func TestRunDCFNetDebtDefaults(t *testing.T) {
	data := testCompanyData()
	delete(data.Fundamentals.Metrics, market.KeyTotalDebt)
	delete(data.Fundamentals.Metrics, market.KeyTotalCash)

	result, err := RunDCF(data, CapitalStructure{WACC: 0.09}, twoYearParams())
	if err != nil {
		t.Fatalf("RunDCF: %v", err)
	}
	if result.NetDebt != 0 {
		t.Errorf("net debt with no balance data = %v, want 0", result.NetDebt)
	}
	if math.Abs(result.EquityValue-result.EnterpriseValue) > 1e-9 {
		t.Errorf("equity value %v should equal enterprise value %v", result.EquityValue, result.EnterpriseValue)
	}
}

func TestRunDCFFaults(t *testing.T) {
	t.Run("nil data", func(t *testing.T) {
		if _, err := RunDCF(nil, CapitalStructure{WACC: 0.09}, twoYearParams()); !errors.Is(err, ErrComputationFault) {
			t.Errorf("err = %v, want ErrComputationFault", err)
		}
	})

	t.Run("missing shares", func(t *testing.T) {
		data := testCompanyData()
		delete(data.Fundamentals.Metrics, market.KeySharesOutstanding)
		if _, err := RunDCF(data, CapitalStructure{WACC: 0.09}, twoYearParams()); !errors.Is(err, ErrComputationFault) {
			t.Errorf("err = %v, want ErrComputationFault", err)
		}
	})

	t.Run("zero shares", func(t *testing.T) {
		data := testCompanyData()
		data.Fundamentals.Set(market.KeySharesOutstanding, 0)
		if _, err := RunDCF(data, CapitalStructure{WACC: 0.09}, twoYearParams()); !errors.Is(err, ErrComputationFault) {
			t.Errorf("err = %v, want ErrComputationFault", err)
		}
	})

	t.Run("unworkable discount rate", func(t *testing.T) {
		data := testCompanyData()
		if _, err := RunDCF(data, CapitalStructure{WACC: 0.02}, twoYearParams()); !errors.Is(err, ErrComputationFault) {
			t.Errorf("err = %v, want ErrComputationFault", err)
		}
	})

	t.Run("zero projection years", func(t *testing.T) {
		data := testCompanyData()
		params := twoYearParams()
		params.ProjectionYears = 0
		if _, err := RunDCF(data, CapitalStructure{WACC: 0.09}, params); !errors.Is(err, ErrComputationFault) {
			t.Errorf("err = %v, want ErrComputationFault", err)
		}
	})
}

func TestRunDCFNoPriceNoMargin(t *testing.T) {
	data := testCompanyData()
	delete(data.Fundamentals.Metrics, market.KeyCurrentPrice)

	result, err := RunDCF(data, CapitalStructure{WACC: 0.09}, twoYearParams())
	if err != nil {
		t.Fatalf("RunDCF: %v", err)
	}
	if result.MarginOfSafety.Valid {
		t.Errorf("margin of safety without a price should be invalid, got %+v", result.MarginOfSafety)
	}
}
