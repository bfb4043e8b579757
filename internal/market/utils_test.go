package market

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastRetryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxRetries: attempts,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
	}
}

func TestWithRetryEventualSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetryExhausted(t *testing.T) {
	sentinel := errors.New("always down")
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig(2), func() error {
		calls++
		return fmt.Errorf("attempt %d: %w", calls, sentinel)
	})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("last error not wrapped: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls (1 + 2 retries), got %d", calls)
	}
}

func TestWithRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	cfg := &RetryConfig{
		MaxRetries: 5,
		BaseDelay:  time.Hour,
		MaxDelay:   time.Hour,
		Multiplier: 2.0,
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := WithRetry(ctx, cfg, func() error {
		calls++
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt before the cancelled wait, got %d", calls)
	}
}

func TestValidateSymbol(t *testing.T) {
	ok := []string{"PETR4.SA", "aapl", " VALE3.SA ", "^BVSP", "BRK.B"}
	for _, sym := range ok {
		if err := ValidateSymbol(sym); err != nil {
			t.Errorf("ValidateSymbol(%q): %v", sym, err)
		}
	}

	bad := []string{"", "   ", "TOOLONGSYMBOL"}
	for _, sym := range bad {
		if err := ValidateSymbol(sym); err == nil {
			t.Errorf("ValidateSymbol(%q): expected error", sym)
		}
	}
}

func TestNormalizeSymbol(t *testing.T) {
	cases := map[string]string{
		" petr4.sa ": "PETR4.SA",
		"AAPL":       "AAPL",
		"^bvsp":      "^BVSP",
	}
	for in, want := range cases {
		if got := NormalizeSymbol(in); got != want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}
