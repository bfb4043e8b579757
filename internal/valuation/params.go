package valuation

// Params are the rate assumptions of one analysis. Callers override
// individual fields on top of the defaults.
type Params struct {
	RiskFreeRate    float64
	MarketReturn    float64
	GrowthRate      float64
	TerminalGrowth  float64
	ProjectionYears int
	TaxRate         float64

	// CostOfDebt overrides the rate derived from interest expense when
	// non-zero.
	CostOfDebt float64
}

func DefaultParams() Params {
	return Params{
		RiskFreeRate:    0.045,
		MarketReturn:    0.09,
		GrowthRate:      0.05,
		TerminalGrowth:  0.03,
		ProjectionYears: 5,
		TaxRate:         0.34,
	}
}
