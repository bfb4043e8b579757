package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/jpoffo/valuador/config"
	"github.com/jpoffo/valuador/internal/market"
	"github.com/jpoffo/valuador/internal/valuation"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// GatherSelections walks through every prompt for one analysis round.
func GatherSelections(cfg config.Config) (UserSelections, error) {
	var selections UserSelections

	ticker, err := PromptForTicker()
	if err != nil {
		return selections, err
	}
	selections.Ticker = ticker

	defaultPeriod, err := market.ParsePeriod(cfg.DefaultPeriod)
	if err != nil {
		defaultPeriod = market.Period1Y
	}
	period, err := PromptForPeriod(defaultPeriod)
	if err != nil {
		return selections, err
	}
	selections.Period = period

	peers, err := PromptForPeers()
	if err != nil {
		return selections, err
	}
	selections.Peers = peers

	params, err := PromptForParams(cfg)
	if err != nil {
		return selections, err
	}
	selections.Params = params

	saveChart, err := PromptForChart()
	if err != nil {
		return selections, err
	}
	selections.SaveChart = saveChart

	return selections, nil
}

// PromptForTicker prompts the user to enter a stock ticker symbol
func PromptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter the stock ticker symbol (e.g., PETR4.SA, VALE3.SA, AAPL):",
		Help:    "B3 tickers carry the .SA suffix, like WEGE3.SA",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if len(str) == 0 {
			return fmt.Errorf("ticker symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("ticker symbol too long (max 10 characters)")
		}
		if !tickerPattern.MatchString(str) {
			return fmt.Errorf("invalid ticker format (use letters, numbers, dots, and hyphens only)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.ToUpper(ticker)), nil
}

// PromptForPeriod prompts for the price history window
func PromptForPeriod(defaultPeriod market.Period) (market.Period, error) {
	menu := market.Periods()
	options := make([]string, len(menu))
	for i, p := range menu {
		options[i] = string(p)
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select the price history window:",
		Options: options,
		Default: string(defaultPeriod),
		Help:    "Window of daily bars used for history, the chart and the report.",
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return market.ParsePeriod(selected)
}

// PromptForPeers prompts for an optional comma-separated peer list
func PromptForPeers() ([]string, error) {
	var raw string
	prompt := &survey.Input{
		Message: "Peer tickers for comparison (comma separated, empty for none):",
		Help:    "Example: VALE3.SA, GGBR4.SA",
	}

	err := survey.AskOne(prompt, &raw, survey.WithValidator(func(val interface{}) error {
		_, err := splitPeers(val.(string))
		return err
	}))
	if err != nil {
		return nil, err
	}

	return splitPeers(raw)
}

func splitPeers(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	peers := make([]string, 0, len(parts))
	for _, part := range parts {
		symbol := strings.TrimSpace(strings.ToUpper(part))
		if symbol == "" {
			continue
		}
		if !tickerPattern.MatchString(symbol) {
			return nil, fmt.Errorf("invalid peer ticker %q", symbol)
		}
		peers = append(peers, symbol)
	}
	return peers, nil
}

// PromptForParams offers the configured valuation parameters for this run
// and lets the user override them, under the same bounds the config obeys.
func PromptForParams(cfg config.Config) (valuation.Params, error) {
	params := paramsFromConfig(&cfg)

	var customize bool
	confirm := &survey.Confirm{
		Message: "Customize valuation parameters for this run?",
		Default: false,
	}
	if err := survey.AskOne(confirm, &customize); err != nil {
		return params, err
	}
	if !customize {
		return params, nil
	}

	fields := []struct {
		message string
		value   *float64
	}{
		{"Annual FCFF growth rate (fraction, e.g. 0.05):", &params.GrowthRate},
		{"Terminal growth rate (fraction):", &params.TerminalGrowth},
		{"Risk-free rate (fraction):", &params.RiskFreeRate},
		{"Expected market return (fraction):", &params.MarketReturn},
		{"Tax rate (fraction):", &params.TaxRate},
		{"Cost of debt (0 derives it from interest expense):", &params.CostOfDebt},
	}
	for _, field := range fields {
		if err := askFloat(field.message, field.value); err != nil {
			return params, err
		}
	}
	if err := askInt("Projection horizon in years:", &params.ProjectionYears); err != nil {
		return params, err
	}

	if err := validateParams(cfg, params); err != nil {
		return params, fmt.Errorf("invalid parameters: %w", err)
	}
	return params, nil
}

func askFloat(message string, value *float64) error {
	var raw string
	prompt := &survey.Input{
		Message: message,
		Default: strconv.FormatFloat(*value, 'f', -1, 64),
	}
	err := survey.AskOne(prompt, &raw, survey.WithValidator(func(val interface{}) error {
		if _, err := strconv.ParseFloat(strings.TrimSpace(val.(string)), 64); err != nil {
			return fmt.Errorf("enter a decimal number, like 0.05")
		}
		return nil
	}))
	if err != nil {
		return err
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return err
	}
	*value = parsed
	return nil
}

func askInt(message string, value *int) error {
	var raw string
	prompt := &survey.Input{
		Message: message,
		Default: strconv.Itoa(*value),
	}
	err := survey.AskOne(prompt, &raw, survey.WithValidator(func(val interface{}) error {
		if _, err := strconv.Atoi(strings.TrimSpace(val.(string))); err != nil {
			return fmt.Errorf("enter a whole number of years")
		}
		return nil
	}))
	if err != nil {
		return err
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	*value = parsed
	return nil
}

// PromptForChart asks whether to render the price chart PNG
func PromptForChart() (bool, error) {
	var save bool
	prompt := &survey.Confirm{
		Message: "Save a price chart PNG to the output directory?",
		Default: true,
	}
	err := survey.AskOne(prompt, &save)
	return save, err
}

// PromptForConfirmation prompts the user to confirm their selections
func PromptForConfirmation(selections UserSelections) (bool, error) {
	peers := "none"
	if len(selections.Peers) > 0 {
		peers = strings.Join(selections.Peers, ", ")
	}

	summary := fmt.Sprintf(`
Analysis Configuration Summary:
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

📊 Ticker Symbol:     %s
📅 History Window:    %s
🏁 Peers:             %s
📈 Growth Rate:       %.2f%%
🌱 Terminal Growth:   %.2f%%
📆 Projection Years:  %d
💰 Risk-free Rate:    %.2f%%
📉 Market Return:     %.2f%%
🧾 Tax Rate:          %.2f%%
🖼  Save Chart:        %t

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
`,
		selections.Ticker,
		selections.Period,
		peers,
		selections.Params.GrowthRate*100,
		selections.Params.TerminalGrowth*100,
		selections.Params.ProjectionYears,
		selections.Params.RiskFreeRate*100,
		selections.Params.MarketReturn*100,
		selections.Params.TaxRate*100,
		selections.SaveChart,
	)

	fmt.Println(summary)

	var confirmed bool
	prompt := &survey.Confirm{
		Message: "Proceed with this analysis?",
		Default: true,
	}
	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}

// PromptForRestartOrExit prompts the user when an analysis round completes
func PromptForRestartOrExit() (bool, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What would you like to do next?",
		Options: []string{
			"Analyze another ticker",
			"Exit",
		},
		Default: "Analyze another ticker",
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return false, err
	}
	return choice == "Analyze another ticker", nil
}
