package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jpoffo/valuador/config"
	"github.com/jpoffo/valuador/internal/display"
	"github.com/jpoffo/valuador/internal/market"
	"github.com/jpoffo/valuador/internal/valuation"
)

const maxConcurrentPeers = 4

// Analyzer runs the analysis workflow: fetch, value, render, persist.
type Analyzer struct {
	cfg      *config.Config
	service  *market.Service
	renderer *display.Renderer
}

// NewAnalyzer creates an analyzer bound to one configuration snapshot.
func NewAnalyzer(cfg *config.Config) *Analyzer {
	return &Analyzer{
		cfg:      cfg,
		service:  market.NewService(cfg),
		renderer: display.NewRenderer(nil),
	}
}

// RunValue executes the complete valuation for the selections: company data,
// benchmark regression, DCF, report, optional peers and chart.
func (a *Analyzer) RunValue(ctx context.Context, selections UserSelections) error {
	DisplayInfo(fmt.Sprintf("Fetching market data for %s...", selections.Ticker))

	betaPeriod := a.betaPeriod()

	// The benchmark fetch runs alongside the company fetch.
	var (
		wg        sync.WaitGroup
		benchmark market.PriceSeries
		benchErr  error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		benchmark, benchErr = a.service.PriceHistory(ctx, a.cfg.BenchmarkIndex, betaPeriod)
	}()

	data, err := a.service.FetchAll(ctx, selections.Ticker, selections.Period)
	if err != nil {
		wg.Wait()
		return err
	}

	wg.Wait()
	if benchErr != nil {
		DisplayWarning(fmt.Sprintf("Benchmark %s unavailable, beta falls back to neutral: %v",
			a.cfg.BenchmarkIndex, benchErr))
		benchmark = nil
	}

	// The regression runs over its own window, which may be longer than the
	// window shown in the report.
	regression := *data
	if betaPeriod != selections.Period {
		if series, err := a.service.PriceHistory(ctx, selections.Ticker, betaPeriod); err == nil {
			regression.Prices = series
		} else {
			log.Printf("beta window history for %s unavailable, using the display window: %v",
				selections.Ticker, err)
		}
	}

	engine := valuation.NewEngine(selections.Params)
	summary := engine.Analyze(&regression, benchmark)

	a.renderer.RenderSummary(summary)
	if summary.DCFFault != nil {
		DisplayWarning(fmt.Sprintf("DCF could not complete: %v", summary.DCFFault))
	}

	a.renderer.RenderHistory(data.Symbol, data.Prices, 10)
	a.renderer.RenderDividends(data.Symbol, data.Dividends)

	if len(selections.Peers) > 0 {
		comparison := a.comparePeers(ctx, data.Fundamentals, selections.Peers)
		a.renderer.RenderPeers(comparison)
	}

	if selections.SaveChart {
		path, err := display.SavePriceChart(a.cfg.OutputDir, data.Symbol, selections.Period, data.Prices)
		if err != nil {
			DisplayWarning(fmt.Sprintf("Chart not saved: %v", err))
		} else {
			DisplaySuccess("Chart saved to " + path)
		}
	}

	if path, err := a.saveSummary(summary); err != nil {
		DisplayWarning(fmt.Sprintf("Summary not saved: %v", err))
	} else {
		DisplaySuccess("Summary saved to " + path)
	}

	return nil
}

// RunRatios fetches fundamentals and shows the ratio panel only.
func (a *Analyzer) RunRatios(ctx context.Context, ticker string) error {
	snap, err := a.service.Fundamentals(ctx, ticker)
	if err != nil {
		return err
	}
	ratios := valuation.ComputeRatios(snap)
	a.renderer.RenderRatios(snap.Symbol, ratios)
	return nil
}

// RunHistory shows the current session and the most recent daily bars.
func (a *Analyzer) RunHistory(ctx context.Context, ticker string, period market.Period, last int) error {
	quote, err := a.service.Quote(ctx, ticker)
	if err != nil {
		DisplayWarning(fmt.Sprintf("Session quote unavailable: %v", err))
	} else {
		a.renderer.RenderQuote(quote)
	}

	series, err := a.service.PriceHistory(ctx, ticker, period)
	if err != nil {
		return err
	}
	a.renderer.RenderHistory(ticker, series, last)
	return nil
}

// RunCompare builds the comparables table for a target and its peers.
func (a *Analyzer) RunCompare(ctx context.Context, ticker string, peers []string) error {
	target, err := a.service.Fundamentals(ctx, ticker)
	if err != nil {
		return err
	}
	comparison := a.comparePeers(ctx, target, peers)
	a.renderer.RenderPeers(comparison)
	return nil
}

// comparePeers fetches peer snapshots with bounded concurrency. A peer that
// cannot be fetched is skipped with a warning, never fails the table.
func (a *Analyzer) comparePeers(ctx context.Context, target *market.FundamentalsSnapshot, peers []string) *valuation.PeerComparison {
	rows := make([]*valuation.PeerRow, len(peers))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentPeers)
	for i, peer := range peers {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			snap, err := a.service.PeerSnapshot(ctx, symbol)
			if err != nil {
				log.Printf("skipping peer %s: %v", symbol, err)
				return
			}
			row := valuation.PeerRowFrom(snap)
			rows[i] = &row
		}(i, peer)
	}
	wg.Wait()

	comparison := &valuation.PeerComparison{
		Rows: []valuation.PeerRow{valuation.PeerRowFrom(target)},
	}
	for _, row := range rows {
		if row != nil {
			comparison.Rows = append(comparison.Rows, *row)
		}
	}
	return comparison
}

// betaPeriod resolves the configured regression window, one year when the
// configuration does not parse.
func (a *Analyzer) betaPeriod() market.Period {
	period, err := market.ParsePeriod(a.cfg.BetaPeriod)
	if err != nil {
		log.Printf("invalid beta period %q, using %s: %v", a.cfg.BetaPeriod, market.Period1Y, err)
		return market.Period1Y
	}
	return period
}

// saveSummary exports the analysis as JSON next to the charts. The file is
// named <symbol>_<period>_<yyyymmdd>.json.
func (a *Analyzer) saveSummary(s *valuation.Summary) (string, error) {
	export := map[string]interface{}{
		"metadata": map[string]string{
			"symbol":       s.Ticker,
			"company":      s.CompanyName,
			"period":       string(s.Period),
			"generated_at": s.GeneratedAt.Format(time.RFC3339),
		},
		"recommendation": string(s.Recommendation),
		"risk": map[string]interface{}{
			"beta":      s.Risk.Beta,
			"alpha":     s.Risk.Alpha,
			"r_squared": s.Risk.RSquared,
			"basis":     s.Risk.Basis.String(),
		},
		"capital": map[string]interface{}{
			"wacc":           s.Capital.WACC,
			"cost_of_equity": s.Capital.CostOfEquity,
			"cost_of_debt":   s.Capital.CostOfDebt,
			"equity_weight":  s.Capital.EquityWeight,
			"debt_weight":    s.Capital.DebtWeight,
			"basis":          s.Capital.Basis.String(),
		},
	}
	if s.Discount.Valid {
		export["discount_pct"] = s.Discount.Value
	}
	if s.DCF != nil {
		export["dcf"] = map[string]interface{}{
			"intrinsic_value_per_share": s.DCF.IntrinsicValuePerShare,
			"enterprise_value":          s.DCF.EnterpriseValue,
			"equity_value":              s.DCF.EquityValue,
			"current_fcff":              s.DCF.CurrentFCFF,
			"projected_fcff":            s.DCF.ProjectedFCFF,
			"terminal_value":            s.DCF.TerminalValue,
			"net_debt":                  s.DCF.NetDebt,
			"wacc":                      s.DCF.WACC,
		}
		if s.DCF.MarginOfSafety.Valid {
			export["margin_of_safety_pct"] = s.DCF.MarginOfSafety.Value
		}
	}
	if s.DCFFault != nil {
		export["dcf_fault"] = s.DCFFault.Error()
	}

	payload, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.json", s.Ticker, s.Period, s.GeneratedAt.Format("20060102"))
	path := filepath.Join(a.cfg.OutputDir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}
