package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	OutputDir    string `json:"output_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// Market data
	BenchmarkIndex string `json:"benchmark_index"`
	BetaPeriod     string `json:"beta_period"`
	DefaultPeriod  string `json:"default_period"`

	// Valuation parameters
	RiskFreeRate    float64 `json:"risk_free_rate"`
	MarketReturn    float64 `json:"market_return"`
	GrowthRate      float64 `json:"growth_rate"`
	TerminalGrowth  float64 `json:"terminal_growth"`
	ProjectionYears int     `json:"projection_years"`
	TaxRate         float64 `json:"tax_rate"`

	CacheEnabled    bool `json:"cache_enabled"`
	CacheTTLMinutes int  `json:"cache_ttl_minutes"`
	Debug           bool `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns the defaults with all directories rooted at dir.
func DefaultConfigWithRoot(dir string) *Config {
	return &Config{
		ProjectDir:   dir,
		OutputDir:    filepath.Join(dir, "output"),
		DataCacheDir: filepath.Join(dir, "data", "cache"),

		BenchmarkIndex: "^BVSP",
		BetaPeriod:     "3y",
		DefaultPeriod:  "1y",

		RiskFreeRate:    0.045,
		MarketReturn:    0.09,
		GrowthRate:      0.05,
		TerminalGrowth:  0.03,
		ProjectionYears: 5,
		TaxRate:         0.34,

		CacheEnabled:    true,
		CacheTTLMinutes: 15,
		Debug:           false,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("OUTPUT_DIR"); val != "" {
		c.OutputDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("BENCHMARK_INDEX"); val != "" {
		c.BenchmarkIndex = val
	}
	if val := os.Getenv("BETA_PERIOD"); val != "" {
		c.BetaPeriod = val
	}
	if val := os.Getenv("DEFAULT_PERIOD"); val != "" {
		c.DefaultPeriod = val
	}

	if val := os.Getenv("RISK_FREE_RATE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.RiskFreeRate = v
		}
	}
	if val := os.Getenv("MARKET_RETURN"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.MarketReturn = v
		}
	}
	if val := os.Getenv("GROWTH_RATE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.GrowthRate = v
		}
	}
	if val := os.Getenv("TERMINAL_GROWTH"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.TerminalGrowth = v
		}
	}
	if val := os.Getenv("PROJECTION_YEARS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.ProjectionYears = v
		}
	}
	if val := os.Getenv("TAX_RATE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.TaxRate = v
		}
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("CACHE_TTL_MINUTES"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.CacheTTLMinutes = v
		}
	}
	if val := os.Getenv("VALUADOR_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// Validate rejects parameter combinations the valuation math cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BenchmarkIndex) == "" {
		return fmt.Errorf("benchmark index cannot be empty")
	}
	if c.RiskFreeRate < 0 || c.RiskFreeRate >= 1 {
		return fmt.Errorf("risk-free rate must be in [0, 1), got %v", c.RiskFreeRate)
	}
	if c.MarketReturn <= 0 || c.MarketReturn >= 1 {
		return fmt.Errorf("market return must be in (0, 1), got %v", c.MarketReturn)
	}
	if c.GrowthRate <= -1 {
		return fmt.Errorf("growth rate must be greater than -100%%, got %v", c.GrowthRate)
	}
	if c.TerminalGrowth < 0 || c.TerminalGrowth >= c.MarketReturn {
		return fmt.Errorf("terminal growth must be in [0, market return), got %v", c.TerminalGrowth)
	}
	if c.ProjectionYears < 1 || c.ProjectionYears > 30 {
		return fmt.Errorf("projection years must be between 1 and 30, got %d", c.ProjectionYears)
	}
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fmt.Errorf("tax rate must be in [0, 1), got %v", c.TaxRate)
	}
	if c.CacheTTLMinutes < 0 {
		return fmt.Errorf("cache TTL cannot be negative, got %d", c.CacheTTLMinutes)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.OutputDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
