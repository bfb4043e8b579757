package cli

import (
	"fmt"

	"github.com/jpoffo/valuador/config"
	"github.com/jpoffo/valuador/internal/market"
	"github.com/jpoffo/valuador/internal/valuation"
)

// UserSelections holds one round of analysis choices.
type UserSelections struct {
	Ticker    string           `json:"ticker"`
	Period    market.Period    `json:"period"`
	Peers     []string         `json:"peers"`
	Params    valuation.Params `json:"params"`
	SaveChart bool             `json:"save_chart"`
}

// paramsFromConfig maps the persisted configuration into valuation
// parameters. The cost-of-debt override stays zero so the reported
// interest expense drives it.
func paramsFromConfig(cfg *config.Config) valuation.Params {
	return valuation.Params{
		RiskFreeRate:    cfg.RiskFreeRate,
		MarketReturn:    cfg.MarketReturn,
		GrowthRate:      cfg.GrowthRate,
		TerminalGrowth:  cfg.TerminalGrowth,
		ProjectionYears: cfg.ProjectionYears,
		TaxRate:         cfg.TaxRate,
	}
}

// validateParams runs the configuration bounds over a parameter set, so a
// session override obeys the same rules as the config file.
func validateParams(cfg config.Config, p valuation.Params) error {
	cfg.RiskFreeRate = p.RiskFreeRate
	cfg.MarketReturn = p.MarketReturn
	cfg.GrowthRate = p.GrowthRate
	cfg.TerminalGrowth = p.TerminalGrowth
	cfg.ProjectionYears = p.ProjectionYears
	cfg.TaxRate = p.TaxRate
	if err := cfg.Validate(); err != nil {
		return err
	}
	if p.CostOfDebt < 0 || p.CostOfDebt >= 1 {
		return fmt.Errorf("cost of debt must be in [0, 1), got %v", p.CostOfDebt)
	}
	return nil
}
