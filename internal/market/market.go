package market

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/jpoffo/valuador/config"
)

// Service is the single entry point for provider data. One instance is safe
// for concurrent use.
type Service struct {
	cfg     *config.Config
	retry   *RetryConfig
	cache   *CacheManager
	yahoo   *yahooClient
	funds   *fundamentalsClient
	scraper *statsScraper

	apiBaseURL    string
	scrapeBaseURL string
}

type ServiceOption func(*Service)

// WithBaseURL redirects the JSON endpoints, mainly for tests.
func WithBaseURL(url string) ServiceOption {
	return func(s *Service) { s.apiBaseURL = url }
}

// WithScrapeBaseURL redirects the statistics-page scraper.
func WithScrapeBaseURL(url string) ServiceOption {
	return func(s *Service) { s.scrapeBaseURL = url }
}

func WithRetryConfig(rc *RetryConfig) ServiceOption {
	return func(s *Service) { s.retry = rc }
}

func WithCacheManager(cm *CacheManager) ServiceOption {
	return func(s *Service) { s.cache = cm }
}

func NewService(cfg *config.Config, opts ...ServiceOption) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.retry == nil {
		s.retry = DefaultRetryConfig()
	}
	if s.cache == nil {
		cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo_finance")
		ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
		s.cache = NewCacheManager(cacheDir, ttl, cfg.CacheEnabled)
	}

	s.yahoo = newYahooClient(s.cache, s.retry)
	s.funds = newFundamentalsClient(s.apiBaseURL, s.cache, s.retry)
	s.scraper = newStatsScraper(s.scrapeBaseURL)

	return s
}

// FetchAll gathers everything one analysis needs. Price history and the
// fundamentals snapshot are required; statements and dividends degrade to
// absent with a logged warning so the valuation layer can fault locally.
func (s *Service) FetchAll(ctx context.Context, symbol string, period Period) (*CompanyData, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	prices, err := s.PriceHistory(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	snap, err := s.Fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}

	data := &CompanyData{
		Symbol:       symbol,
		Period:       period,
		Prices:       prices,
		Fundamentals: snap,
		FetchedAt:    time.Now(),
	}

	if stmts, err := s.FinancialStatements(ctx, symbol); err != nil {
		log.Printf("financial statements for %s unavailable: %v", symbol, err)
	} else {
		data.Statements = stmts
		promoteStatementMetrics(snap, stmts)
	}

	if divs, err := s.Dividends(ctx, symbol, period); err != nil {
		log.Printf("dividend history for %s unavailable: %v", symbol, err)
	} else {
		data.Dividends = divs
	}

	return data, nil
}

// PriceHistory returns daily bars for the lookback window, oldest first.
func (s *Service) PriceHistory(ctx context.Context, symbol string, period Period) (PriceSeries, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	now := time.Now()
	series, err := s.yahoo.history(ctx, symbol, period.Start(now), now)
	if err != nil {
		return nil, fmt.Errorf("price history for %s (%s): %w", symbol, period, err)
	}
	return series, nil
}

// Quote returns the live trading session for a symbol.
func (s *Service) Quote(ctx context.Context, symbol string) (*SessionQuote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	return s.yahoo.sessionQuote(ctx, NormalizeSymbol(symbol))
}

// Fundamentals merges the quoteSummary modules, the equity profile and the
// scraped statistics page into one snapshot. The scrape only runs when keys
// are still missing and never fails the call.
func (s *Service) Fundamentals(ctx context.Context, symbol string) (*FundamentalsSnapshot, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	snap, err := s.funds.fundamentals(ctx, symbol)
	if err != nil {
		eq, eqErr := s.yahoo.equitySnapshot(ctx, symbol)
		if eqErr != nil {
			return nil, fmt.Errorf("fundamentals for %s: %w", symbol, err)
		}
		log.Printf("quoteSummary for %s unavailable, using equity profile: %v", symbol, err)
		snap = eq
	} else if eq, eqErr := s.yahoo.equitySnapshot(ctx, symbol); eqErr == nil {
		mergeMissing(snap, eq)
	} else {
		log.Printf("equity profile for %s unavailable: %v", symbol, eqErr)
	}

	if needsScrape(snap) {
		if err := s.scraper.fillMissing(ctx, snap); err != nil {
			log.Printf("statistics scrape for %s skipped: %v", symbol, err)
		}
	}

	return snap, nil
}

// FinancialStatements returns the annual statements, most recent year first.
func (s *Service) FinancialStatements(ctx context.Context, symbol string) (*Statements, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	return s.funds.statements(ctx, NormalizeSymbol(symbol))
}

// Dividends returns cash dividends paid inside the lookback window.
func (s *Service) Dividends(ctx context.Context, symbol string, period Period) (DividendSeries, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	now := time.Now()
	return s.funds.dividends(ctx, symbol, period.Start(now), now)
}

// PeerSnapshot returns the snapshot a comparables row needs. The equity
// profile serves as the reduced fallback when quoteSummary fails.
func (s *Service) PeerSnapshot(ctx context.Context, symbol string) (*FundamentalsSnapshot, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	snap, err := s.funds.fundamentals(ctx, symbol)
	if err == nil {
		return snap, nil
	}

	eq, eqErr := s.yahoo.equitySnapshot(ctx, symbol)
	if eqErr != nil {
		return nil, fmt.Errorf("peer snapshot for %s: %w", symbol, err)
	}
	return eq, nil
}

// ClearCache drops every cached provider response.
func (s *Service) ClearCache() error {
	return s.cache.Clear()
}

func needsScrape(snap *FundamentalsSnapshot) bool {
	for _, target := range scrapeTargets {
		if _, ok := snap.Get(target.key); !ok {
			return true
		}
	}
	return false
}

func mergeMissing(dst, src *FundamentalsSnapshot) {
	if dst == nil || src == nil {
		return
	}
	if dst.LongName == "" {
		dst.LongName = src.LongName
	}
	if dst.Sector == "" {
		dst.Sector = src.Sector
	}
	if dst.Industry == "" {
		dst.Industry = src.Industry
	}
	if dst.Exchange == "" {
		dst.Exchange = src.Exchange
	}
	if dst.Currency == "" {
		dst.Currency = src.Currency
	}
	for key, value := range src.Metrics {
		dst.SetIfAbsent(key, value)
	}
}

// promoteStatementMetrics fills snapshot gaps from the latest fiscal year of
// the statements. The cost-of-debt path reads interest expense from the
// snapshot, which quoteSummary never carries.
func promoteStatementMetrics(snap *FundamentalsSnapshot, stmts *Statements) {
	if snap == nil || stmts == nil {
		return
	}

	promote := func(key string, stmt Statement, line string) {
		if v, ok := stmt.Latest(line); ok {
			snap.SetIfAbsent(key, v)
		}
	}

	promote(KeyInterestExpense, stmts.Income, LineInterestExpense)
	promote(KeyEbitda, stmts.Income, LineEBITDA)
	promote(KeyTotalRevenue, stmts.Income, LineTotalRevenue)
	promote(KeyTotalDebt, stmts.Balance, LineTotalDebt)
	promote(KeyTotalCash, stmts.Balance, LineCashAndEquivalents)
}
