package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()

	mgr, err := NewManager(WithConfigDir(dir), WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	cfg := mgr.Get()
	if cfg.BenchmarkIndex != "^BVSP" {
		t.Fatalf("unexpected default benchmark: %q", cfg.BenchmarkIndex)
	}
	if cfg.ProjectionYears != 5 {
		t.Fatalf("unexpected default projection years: %d", cfg.ProjectionYears)
	}

	cfg.GrowthRate = 0.08
	cfg.ProjectionYears = 7
	if err := mgr.Update(cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reopened, err := NewManager(WithConfigPath(mgr.Path()))
	if err != nil {
		t.Fatalf("reopen manager: %v", err)
	}
	got := reopened.Get()
	if got.GrowthRate != 0.08 || got.ProjectionYears != 7 {
		t.Fatalf("update not persisted, got growth=%v years=%d", got.GrowthRate, got.ProjectionYears)
	}
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	dir := t.TempDir()

	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	bad := mgr.Get()
	bad.TerminalGrowth = bad.MarketReturn + 0.01
	if err := mgr.Update(bad); err == nil {
		t.Fatal("expected validation error for terminal growth above market return")
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()

	mgr, err := NewManager(WithConfigDir(dir), WithDebounce(30*time.Millisecond))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan Config, 1)
	if err := mgr.Watch(ctx, func(c Config) {
		select {
		case changed <- c:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	edited := mgr.Get()
	edited.BetaPeriod = "5y"
	edited.RiskFreeRate = 0.05
	data, err := json.MarshalIndent(&edited, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(mgr.Path(), data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	select {
	case got := <-changed:
		if got.BetaPeriod != "5y" {
			t.Fatalf("expected reloaded beta period 5y, got %q", got.BetaPeriod)
		}
		if got.RiskFreeRate != 0.05 {
			t.Fatalf("expected reloaded risk free 0.05, got %v", got.RiskFreeRate)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	if mgr.Get().BetaPeriod != "5y" {
		t.Fatalf("manager state not updated after reload")
	}
}
