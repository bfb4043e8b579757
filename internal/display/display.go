package display

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/jpoffo/valuador/internal/market"
	"github.com/jpoffo/valuador/internal/valuation"
)

const panelWidth = 76

var (
	buyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	accumulateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true)
	neutralStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	reduceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	sellStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	faultStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	degradedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
)

// Renderer writes analysis results to a terminal.
type Renderer struct {
	out io.Writer
}

// NewRenderer builds a renderer on the given writer. A nil writer means
// standard output.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// RenderSummary shows the complete valuation report for one company.
func (r *Renderer) RenderSummary(s *valuation.Summary) {
	r.showHeader(s)
	r.showCompany(s)
	r.showRatios(s.Ratios)
	r.showRisk(s.Risk)
	r.showCapital(s.Capital)
	r.showDCF(s)
	r.showVerdict(s)
	r.showFooter(s)
}

func (r *Renderer) showHeader(s *valuation.Summary) {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "╔%s╗\n", strings.Repeat("═", panelWidth))
	fmt.Fprintf(r.out, "║%s║\n", center("📊 VALUATION REPORT: "+s.Ticker, panelWidth))
	if s.CompanyName != "" {
		fmt.Fprintf(r.out, "║%s║\n", center(s.CompanyName, panelWidth))
	}
	fmt.Fprintf(r.out, "╚%s╝\n", strings.Repeat("═", panelWidth))
	fmt.Fprintln(r.out)
}

func (r *Renderer) showCompany(s *valuation.Summary) {
	r.section("🏢 COMPANY")
	fmt.Fprintf(r.out, "   Sector:    %s\n", orDash(s.Sector))
	fmt.Fprintf(r.out, "   Industry:  %s\n", orDash(s.Industry))
	fmt.Fprintf(r.out, "   Exchange:  %s\n", orDash(s.Exchange))
	fmt.Fprintf(r.out, "   Currency:  %s\n", orDash(s.Currency))
	fmt.Fprintf(r.out, "   Window:    %s\n", s.Period)
	fmt.Fprintln(r.out)
}

// RenderRatios shows only the fundamental ratio panel.
func (r *Renderer) RenderRatios(ticker string, rs valuation.RatioSet) {
	fmt.Fprintln(r.out)
	r.section("📊 FUNDAMENTAL RATIOS: " + ticker)
	r.ratioRows(rs)
	fmt.Fprintln(r.out)
}

func (r *Renderer) showRatios(rs valuation.RatioSet) {
	r.section("📊 FUNDAMENTAL RATIOS")
	r.ratioRows(rs)
	fmt.Fprintln(r.out)
}

func (r *Renderer) ratioRows(rs valuation.RatioSet) {
	rows := []struct {
		label string
		value string
	}{
		{"Price", number(rs.CurrentPrice)},
		{"Market Cap", compactMetric(rs.MarketCap)},
		{"Shares Out", compactMetric(rs.SharesOutstanding)},
		{"P/E", number(rs.PERatio)},
		{"Forward P/E", number(rs.ForwardPE)},
		{"P/B", number(rs.PBRatio)},
		{"P/S", number(rs.PSRatio)},
		{"EV/EBITDA", number(rs.EVEbitda)},
		{"EV/Revenue", number(rs.EVRevenue)},
		{"ROE", percent(rs.ROE)},
		{"ROA", percent(rs.ROA)},
		{"Gross Margin", percent(rs.GrossMargin)},
		{"Oper. Margin", percent(rs.OperatingMargin)},
		{"Profit Margin", percent(rs.ProfitMargin)},
		{"Current Ratio", number(rs.CurrentRatio)},
		{"Quick Ratio", number(rs.QuickRatio)},
		{"Debt/Equity", number(rs.DebtEquity)},
		{"Debt/EBITDA", number(rs.DebtEbitda)},
		{"Dividend Yield", percent(rs.DividendYield)},
		{"Payout Ratio", percent(rs.PayoutRatio)},
	}
	for i := 0; i < len(rows); i += 2 {
		left := fmt.Sprintf("%-15s %10s", rows[i].label+":", rows[i].value)
		if i+1 < len(rows) {
			fmt.Fprintf(r.out, "   %s       %-15s %10s\n", left, rows[i+1].label+":", rows[i+1].value)
		} else {
			fmt.Fprintf(r.out, "   %s\n", left)
		}
	}
}

func (r *Renderer) showRisk(p valuation.RiskProfile) {
	r.section("📈 RISK PROFILE")
	fmt.Fprintf(r.out, "   Beta:       %.4f\n", p.Beta)
	fmt.Fprintf(r.out, "   Alpha:      %.4f\n", p.Alpha)
	fmt.Fprintf(r.out, "   R-squared:  %.4f\n", p.RSquared)
	if p.Basis == valuation.BasisDegradedDefault {
		fmt.Fprintf(r.out, "   %s\n", degradedStyle.Render("(neutral default, regression data unavailable)"))
	}
	fmt.Fprintln(r.out)
}

func (r *Renderer) showCapital(c valuation.CapitalStructure) {
	r.section("⚖️  COST OF CAPITAL")
	fmt.Fprintf(r.out, "   Equity Weight:   %s\n", pct(c.EquityWeight))
	fmt.Fprintf(r.out, "   Debt Weight:     %s\n", pct(c.DebtWeight))
	fmt.Fprintf(r.out, "   Cost of Equity:  %s\n", pct(c.CostOfEquity))
	fmt.Fprintf(r.out, "   Cost of Debt:    %s\n", pct(c.CostOfDebt))
	fmt.Fprintf(r.out, "   Tax Rate:        %s\n", pct(c.TaxRate))
	fmt.Fprintf(r.out, "   WACC:            %s\n", pct(c.WACC))
	if c.Basis == valuation.BasisDegradedDefault {
		fmt.Fprintf(r.out, "   %s\n", degradedStyle.Render("(market-typical defaults, capital base unavailable)"))
	}
	fmt.Fprintln(r.out)
}

func (r *Renderer) showDCF(s *valuation.Summary) {
	r.section("💰 DCF VALUATION")
	if s.DCFFault != nil {
		fmt.Fprintf(r.out, "   %s\n", faultStyle.Render(fmt.Sprintf("✗ %v", s.DCFFault)))
		fmt.Fprintln(r.out)
		return
	}
	d := s.DCF
	fmt.Fprintf(r.out, "   Base FCFF:          %s\n", compact(d.CurrentFCFF))
	fmt.Fprintf(r.out, "   Projected FCFF:     %s\n", joinCompact(d.ProjectedFCFF))
	fmt.Fprintf(r.out, "   Terminal Value:     %s\n", compact(d.TerminalValue))
	fmt.Fprintf(r.out, "   Enterprise Value:   %s\n", compact(d.EnterpriseValue))
	fmt.Fprintf(r.out, "   Net Debt:           %s\n", compact(d.NetDebt))
	fmt.Fprintf(r.out, "   Equity Value:       %s\n", compact(d.EquityValue))
	fmt.Fprintf(r.out, "   Intrinsic Value:    %.2f per share\n", d.IntrinsicValuePerShare)
	fmt.Fprintf(r.out, "   Margin of Safety:   %s\n", percent(d.MarginOfSafety))
	fmt.Fprintf(r.out, "   WACC Applied:       %s\n", pct(d.WACC))
	fmt.Fprintln(r.out)
}

func (r *Renderer) showVerdict(s *valuation.Summary) {
	r.section("🎯 RECOMMENDATION")
	if s.Recommendation == "" {
		fmt.Fprintln(r.out, "   (no recommendation, valuation incomplete)")
		fmt.Fprintln(r.out)
		return
	}
	if s.CurrentPrice.Valid && s.DCF != nil {
		fmt.Fprintf(r.out, "   Market Price:     %.2f\n", s.CurrentPrice.Value)
		fmt.Fprintf(r.out, "   Intrinsic Value:  %.2f\n", s.DCF.IntrinsicValuePerShare)
	}
	if s.Discount.Valid {
		fmt.Fprintf(r.out, "   Discount:         %+.2f%%\n", s.Discount.Value)
	}
	style := recommendationStyle(s.Recommendation)
	fmt.Fprintf(r.out, "   Action:           %s\n", style.Render(string(s.Recommendation)))
	fmt.Fprintln(r.out)
}

func (r *Renderer) showFooter(s *valuation.Summary) {
	fmt.Fprintln(r.out, strings.Repeat("═", panelWidth))
	fmt.Fprintf(r.out, "🕐 Generated at: %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(r.out, "⚠️  This analysis is for informational purposes only and should not be")
	fmt.Fprintln(r.out, "   considered as financial advice. Always do your own research.")
	fmt.Fprintln(r.out, strings.Repeat("═", panelWidth))
	fmt.Fprintln(r.out)
}

// RenderQuote shows the current trading session for one symbol.
func (r *Renderer) RenderQuote(q *market.SessionQuote) {
	fmt.Fprintln(r.out)
	r.section("💹 MARKET SESSION: " + q.Symbol)
	if q.Name != "" {
		fmt.Fprintf(r.out, "   Name:      %s\n", q.Name)
	}
	fmt.Fprintf(r.out, "   Price:     %.2f %s\n", q.Price, q.Currency)
	fmt.Fprintf(r.out, "   Open:      %.2f   High: %.2f   Low: %.2f\n", q.Open, q.High, q.Low)
	fmt.Fprintf(r.out, "   Volume:    %d\n", q.Volume)
	fmt.Fprintf(r.out, "   Exchange:  %s (%s)\n", orDash(q.Exchange), orDash(q.MarketState))
	if !q.AsOf.IsZero() {
		fmt.Fprintf(r.out, "   As of:     %s\n", q.AsOf.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintln(r.out)
}

// RenderHistory shows the most recent daily bars in a table.
func (r *Renderer) RenderHistory(symbol string, series market.PriceSeries, last int) {
	fmt.Fprintln(r.out)
	r.section(fmt.Sprintf("📉 PRICE HISTORY: %s", symbol))
	tail := series.Tail(last)
	if len(tail) == 0 {
		fmt.Fprintln(r.out, "   (no price data)")
		fmt.Fprintln(r.out)
		return
	}
	fmt.Fprintf(r.out, "   %-12s %10s %10s %10s %10s %12s\n",
		"Date", "Open", "High", "Low", "Close", "Volume")
	for _, bar := range tail {
		fmt.Fprintf(r.out, "   %-12s %10s %10s %10s %10s %12d\n",
			bar.Date.Format("2006-01-02"),
			bar.Open.StringFixed(2),
			bar.High.StringFixed(2),
			bar.Low.StringFixed(2),
			bar.Close.StringFixed(2),
			bar.Volume)
	}
	fmt.Fprintf(r.out, "   %d sessions total\n", series.Len())
	fmt.Fprintln(r.out)
}

// RenderDividends shows the cash dividend payments in the window.
func (r *Renderer) RenderDividends(symbol string, dividends market.DividendSeries) {
	fmt.Fprintln(r.out)
	r.section(fmt.Sprintf("💵 DIVIDENDS: %s", symbol))
	if len(dividends) == 0 {
		fmt.Fprintln(r.out, "   (no dividends paid in the window)")
		fmt.Fprintln(r.out)
		return
	}
	total := decimal.Zero
	for _, d := range dividends {
		fmt.Fprintf(r.out, "   %-12s %10s\n", d.Date.Format("2006-01-02"), d.Amount.StringFixed(4))
		total = total.Add(d.Amount)
	}
	fmt.Fprintf(r.out, "   Total: %s over %d payments\n", total.StringFixed(4), len(dividends))
	fmt.Fprintln(r.out)
}

// RenderPeers shows the comparables table, target first.
func (r *Renderer) RenderPeers(cmp *valuation.PeerComparison) {
	fmt.Fprintln(r.out)
	r.section("🏁 PEER COMPARISON")
	if cmp == nil || len(cmp.Rows) == 0 {
		fmt.Fprintln(r.out, "   (no peers to compare)")
		fmt.Fprintln(r.out)
		return
	}
	fmt.Fprintf(r.out, "   %-12s %12s %10s %12s %8s %8s\n",
		"Ticker", "Mkt Cap", "P/E", "EV/EBITDA", "P/B", "P/S")
	for _, row := range cmp.Rows {
		fmt.Fprintf(r.out, "   %-12s %12s %10s %12s %8s %8s\n",
			row.Ticker,
			compactMetric(row.MarketCap),
			number(row.PERatio),
			number(row.EVEbitda),
			number(row.PBRatio),
			number(row.PSRatio))
	}
	fmt.Fprintln(r.out)
}

func (r *Renderer) section(title string) {
	fmt.Fprintln(r.out, title)
	fmt.Fprintln(r.out, strings.Repeat("═", panelWidth))
}

func recommendationStyle(rec valuation.Recommendation) lipgloss.Style {
	switch rec {
	case valuation.RecommendationBuy:
		return buyStyle
	case valuation.RecommendationAccumulate:
		return accumulateStyle
	case valuation.RecommendationReduce:
		return reduceStyle
	case valuation.RecommendationSell:
		return sellStyle
	default:
		return neutralStyle
	}
}

// number renders a plain metric with two decimals, or N/A when absent.
func number(m valuation.Metric) string {
	if !m.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", m.Value)
}

// percent renders a metric already scaled to percent units.
func percent(m valuation.Metric) string {
	if !m.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", m.Value)
}

// pct renders a fraction as a percentage.
func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func compactMetric(m valuation.Metric) string {
	if !m.Valid {
		return "N/A"
	}
	return compact(m.Value)
}

// compact abbreviates large magnitudes with K/M/B/T suffixes.
func compact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func joinCompact(values []float64) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = compact(v)
	}
	return strings.Join(parts, "  ")
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
