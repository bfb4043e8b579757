package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigWithRoot(t *testing.T) {
	cfg := DefaultConfigWithRoot("/tmp/work")

	if cfg.OutputDir != filepath.Join("/tmp/work", "output") {
		t.Errorf("unexpected output dir: %s", cfg.OutputDir)
	}
	if cfg.DataCacheDir != filepath.Join("/tmp/work", "data", "cache") {
		t.Errorf("unexpected cache dir: %s", cfg.DataCacheDir)
	}
	if cfg.BenchmarkIndex != "^BVSP" {
		t.Errorf("unexpected benchmark: %s", cfg.BenchmarkIndex)
	}
	if cfg.RiskFreeRate != 0.045 || cfg.MarketReturn != 0.09 {
		t.Errorf("unexpected CAPM defaults: rf=%v rm=%v", cfg.RiskFreeRate, cfg.MarketReturn)
	}
	if cfg.TaxRate != 0.34 {
		t.Errorf("unexpected tax rate: %v", cfg.TaxRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BENCHMARK_INDEX", "^GSPC")
	t.Setenv("RISK_FREE_RATE", "0.05")
	t.Setenv("PROJECTION_YEARS", "10")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("TAX_RATE", "not-a-number")

	cfg := DefaultConfig()

	if cfg.BenchmarkIndex != "^GSPC" {
		t.Errorf("benchmark override ignored: %s", cfg.BenchmarkIndex)
	}
	if cfg.RiskFreeRate != 0.05 {
		t.Errorf("risk-free override ignored: %v", cfg.RiskFreeRate)
	}
	if cfg.ProjectionYears != 10 {
		t.Errorf("projection years override ignored: %d", cfg.ProjectionYears)
	}
	if cfg.CacheEnabled {
		t.Error("cache enabled override ignored")
	}
	if cfg.TaxRate != 0.34 {
		t.Errorf("malformed tax rate should keep default, got %v", cfg.TaxRate)
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty benchmark", func(c *Config) { c.BenchmarkIndex = "  " }},
		{"negative risk-free", func(c *Config) { c.RiskFreeRate = -0.01 }},
		{"risk-free at one", func(c *Config) { c.RiskFreeRate = 1.0 }},
		{"zero market return", func(c *Config) { c.MarketReturn = 0 }},
		{"growth below -100%", func(c *Config) { c.GrowthRate = -1.5 }},
		{"terminal above market", func(c *Config) { c.TerminalGrowth = 0.10 }},
		{"negative terminal", func(c *Config) { c.TerminalGrowth = -0.01 }},
		{"zero projection years", func(c *Config) { c.ProjectionYears = 0 }},
		{"too many projection years", func(c *Config) { c.ProjectionYears = 31 }},
		{"tax rate at one", func(c *Config) { c.TaxRate = 1.0 }},
		{"negative cache TTL", func(c *Config) { c.CacheTTLMinutes = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfigWithRoot(t.TempDir())
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfigWithRoot(root)

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	for _, dir := range []string{cfg.ProjectDir, cfg.OutputDir, cfg.DataCacheDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}
