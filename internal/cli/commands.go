package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpoffo/valuador/config"
	"github.com/jpoffo/valuador/internal/market"
)

// Version is stamped at build time.
var Version = "1.1.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var (
		cfgPath string
		mgr     *config.Manager
	)

	rootCmd := &cobra.Command{
		Use:   "valuador",
		Short: "Valuador - DCF equity valuation from the terminal",
		Long: `Valuador values listed companies by discounted cash flow: it fetches
prices and fundamentals from Yahoo Finance, regresses beta against a benchmark
index, derives the cost of capital and produces an intrinsic value per share
with a recommendation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env and env-var overrides seed the file on first run only;
			// after that the persisted config governs.
			opts := []config.ManagerOption{config.WithInitialConfig(config.DefaultConfig())}
			if cfgPath != "" {
				opts = append(opts, config.WithConfigPath(cfgPath))
			}
			m, err := config.NewManager(opts...)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			mgr = m
			cfg := mgr.Get()
			return cfg.EnsureDirectories()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start interactive mode
			return runInteractive(cmd.Context(), mgr)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Configuration file path")

	rootCmd.AddCommand(newValueCmd(&mgr))
	rootCmd.AddCommand(newRatiosCmd(&mgr))
	rootCmd.AddCommand(newHistoryCmd(&mgr))
	rootCmd.AddCommand(newCompareCmd(&mgr))
	rootCmd.AddCommand(newConfigCmd(&mgr))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newValueCmd creates the full valuation command
func newValueCmd(mgr **config.Manager) *cobra.Command {
	var (
		periodFlag string
		peersFlag  string
		chartFlag  bool

		growth       float64
		terminal     float64
		riskFree     float64
		marketReturn float64
		tax          float64
		costOfDebt   float64
		years        int
	)

	cmd := &cobra.Command{
		Use:     "value SYMBOL",
		Short:   "Run the full DCF valuation for a ticker",
		Example: "  valuador value PETR4.SA --period 5y --growth 0.06 --peers VALE3.SA,GGBR4.SA --chart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := (*mgr).Get()

			period, err := resolvePeriod(periodFlag, cfg.DefaultPeriod)
			if err != nil {
				return err
			}

			params := paramsFromConfig(&cfg)
			if cmd.Flags().Changed("growth") {
				params.GrowthRate = growth
			}
			if cmd.Flags().Changed("terminal-growth") {
				params.TerminalGrowth = terminal
			}
			if cmd.Flags().Changed("risk-free") {
				params.RiskFreeRate = riskFree
			}
			if cmd.Flags().Changed("market-return") {
				params.MarketReturn = marketReturn
			}
			if cmd.Flags().Changed("tax") {
				params.TaxRate = tax
			}
			if cmd.Flags().Changed("cost-of-debt") {
				params.CostOfDebt = costOfDebt
			}
			if cmd.Flags().Changed("years") {
				params.ProjectionYears = years
			}
			if err := validateParams(cfg, params); err != nil {
				return fmt.Errorf("invalid parameters: %w", err)
			}

			peers, err := splitPeers(peersFlag)
			if err != nil {
				return err
			}

			selections := UserSelections{
				Ticker:    strings.ToUpper(strings.TrimSpace(args[0])),
				Period:    period,
				Peers:     peers,
				Params:    params,
				SaveChart: chartFlag,
			}
			return NewAnalyzer(&cfg).RunValue(cmd.Context(), selections)
		},
	}

	cmd.Flags().StringVar(&periodFlag, "period", "", "Price history window (1mo, 3mo, 6mo, 1y, 2y, 3y, 5y, 10y, max)")
	cmd.Flags().StringVar(&peersFlag, "peers", "", "Comma-separated peer tickers for comparison")
	cmd.Flags().BoolVar(&chartFlag, "chart", false, "Save the price chart PNG")
	cmd.Flags().Float64Var(&growth, "growth", 0, "Annual FCFF growth rate (fraction)")
	cmd.Flags().Float64Var(&terminal, "terminal-growth", 0, "Terminal growth rate (fraction)")
	cmd.Flags().Float64Var(&riskFree, "risk-free", 0, "Risk-free rate (fraction)")
	cmd.Flags().Float64Var(&marketReturn, "market-return", 0, "Expected market return (fraction)")
	cmd.Flags().Float64Var(&tax, "tax", 0, "Tax rate (fraction)")
	cmd.Flags().Float64Var(&costOfDebt, "cost-of-debt", 0, "Cost of debt (fraction, 0 derives it from interest expense)")
	cmd.Flags().IntVar(&years, "years", 0, "Projection horizon in years")

	return cmd
}

// newRatiosCmd creates the ratio panel command
func newRatiosCmd(mgr **config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "ratios SYMBOL",
		Short: "Show the fundamental ratio panel for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := (*mgr).Get()
			return NewAnalyzer(&cfg).RunRatios(cmd.Context(), args[0])
		},
	}
}

// newHistoryCmd creates the price history command
func newHistoryCmd(mgr **config.Manager) *cobra.Command {
	var (
		periodFlag string
		last       int
	)

	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Show the session quote and recent daily bars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := (*mgr).Get()
			period, err := resolvePeriod(periodFlag, cfg.DefaultPeriod)
			if err != nil {
				return err
			}
			return NewAnalyzer(&cfg).RunHistory(cmd.Context(), args[0], period, last)
		},
	}

	cmd.Flags().StringVar(&periodFlag, "period", "", "Price history window")
	cmd.Flags().IntVar(&last, "last", 10, "Number of recent sessions to show")

	return cmd
}

// newCompareCmd creates the peer comparison command
func newCompareCmd(mgr **config.Manager) *cobra.Command {
	var peersFlag string

	cmd := &cobra.Command{
		Use:     "compare SYMBOL",
		Short:   "Compare trading multiples against peer tickers",
		Example: "  valuador compare PETR4.SA --peers VALE3.SA,PRIO3.SA",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peers, err := splitPeers(peersFlag)
			if err != nil {
				return err
			}
			if len(peers) == 0 {
				return fmt.Errorf("at least one peer ticker is required")
			}
			cfg := (*mgr).Get()
			return NewAnalyzer(&cfg).RunCompare(cmd.Context(), args[0], peers)
		},
	}

	cmd.Flags().StringVar(&peersFlag, "peers", "", "Comma-separated peer tickers")
	cmd.MarkFlagRequired("peers")

	return cmd
}

// newConfigCmd creates the config command
func newConfigCmd(mgr **config.Manager) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Show, edit and maintain the persisted Valuador configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(*mgr)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println((*mgr).Path())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Update one configuration value",
		Long: `Update one configuration value and persist it. Keys:
  benchmark_index, beta_period, default_period, risk_free_rate,
  market_return, growth_rate, terminal_growth, projection_years,
  tax_rate, cache_enabled, cache_ttl_minutes, output_dir`,
		Example: "  valuador config set growth_rate 0.06",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(*mgr, args[0], args[1])
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "clear-cache",
		Short: "Remove all cached market data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := (*mgr).Get()
			if err := market.NewService(&cfg).ClearCache(); err != nil {
				return err
			}
			DisplaySuccess("Cache cleared")
			return nil
		},
	})

	return configCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Valuador %s\n", Version)
			fmt.Println("DCF equity valuation from the terminal")
		},
	}
}

func resolvePeriod(flagValue, configured string) (market.Period, error) {
	if flagValue != "" {
		return market.ParsePeriod(flagValue)
	}
	period, err := market.ParsePeriod(configured)
	if err != nil {
		return market.Period1Y, nil
	}
	return period, nil
}

// showConfig displays the current configuration
func showConfig(mgr *config.Manager) {
	cfg := mgr.Get()

	fmt.Println("📋 Current Valuador Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Config File:          %s\n", mgr.Path())
	fmt.Printf("Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Printf("Output Directory:     %s\n", cfg.OutputDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("Benchmark Index:      %s\n", cfg.BenchmarkIndex)
	fmt.Printf("Beta Window:          %s\n", cfg.BetaPeriod)
	fmt.Printf("Default Window:       %s\n", cfg.DefaultPeriod)
	fmt.Println()
	fmt.Printf("Risk-free Rate:       %.2f%%\n", cfg.RiskFreeRate*100)
	fmt.Printf("Market Return:        %.2f%%\n", cfg.MarketReturn*100)
	fmt.Printf("Growth Rate:          %.2f%%\n", cfg.GrowthRate*100)
	fmt.Printf("Terminal Growth:      %.2f%%\n", cfg.TerminalGrowth*100)
	fmt.Printf("Projection Years:     %d\n", cfg.ProjectionYears)
	fmt.Printf("Tax Rate:             %.2f%%\n", cfg.TaxRate*100)
	fmt.Println()
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Cache TTL:            %d minutes\n", cfg.CacheTTLMinutes)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
}

// setConfigValue parses, validates and persists one configuration change.
func setConfigValue(mgr *config.Manager, key, value string) error {
	cfg := mgr.Get()

	var err error
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "benchmark_index":
		cfg.BenchmarkIndex = strings.ToUpper(strings.TrimSpace(value))
	case "beta_period":
		if _, err = market.ParsePeriod(value); err == nil {
			cfg.BetaPeriod = value
		}
	case "default_period":
		if _, err = market.ParsePeriod(value); err == nil {
			cfg.DefaultPeriod = value
		}
	case "risk_free_rate":
		err = parseFloatInto(&cfg.RiskFreeRate, value)
	case "market_return":
		err = parseFloatInto(&cfg.MarketReturn, value)
	case "growth_rate":
		err = parseFloatInto(&cfg.GrowthRate, value)
	case "terminal_growth":
		err = parseFloatInto(&cfg.TerminalGrowth, value)
	case "projection_years":
		err = parseIntInto(&cfg.ProjectionYears, value)
	case "tax_rate":
		err = parseFloatInto(&cfg.TaxRate, value)
	case "cache_enabled":
		err = parseBoolInto(&cfg.CacheEnabled, value)
	case "cache_ttl_minutes":
		err = parseIntInto(&cfg.CacheTTLMinutes, value)
	case "output_dir":
		cfg.OutputDir = value
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}

	if err := mgr.Update(cfg); err != nil {
		return err
	}
	DisplaySuccess(fmt.Sprintf("%s updated in %s", key, mgr.Path()))
	return nil
}

func parseFloatInto(dst *float64, value string) error {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

func parseIntInto(dst *int, value string) error {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

func parseBoolInto(dst *bool, value string) error {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}
