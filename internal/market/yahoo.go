package market

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"
)

// SessionQuote is the current trading session of a symbol.
type SessionQuote struct {
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Exchange    string    `json:"exchange"`
	Currency    string    `json:"currency"`
	MarketState string    `json:"market_state"`
	QuoteType   string    `json:"quote_type"`
	Price       float64   `json:"price"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Volume      int       `json:"volume"`
	Tradeable   bool      `json:"tradeable"`
	AsOf        time.Time `json:"as_of"`
}

// yahooClient wraps the quote, equity and chart endpoints.
type yahooClient struct {
	cache *CacheManager
	retry *RetryConfig
}

func newYahooClient(cache *CacheManager, retry *RetryConfig) *yahooClient {
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	return &yahooClient{cache: cache, retry: retry}
}

// history fetches daily bars for the window, oldest first.
func (yc *yahooClient) history(ctx context.Context, symbol string, start, end time.Time) (PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	var cached PriceSeries
	if yc.cache.Get("yahoo", "history", cacheKey, &cached) {
		return cached, nil
	}

	var result PriceSeries
	err := WithRetry(ctx, yc.retry, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)

		result = result[:0]
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, PriceBar{
				Date:     time.Unix(int64(bar.Timestamp), 0).UTC(),
				Open:     bar.Open,
				High:     bar.High,
				Low:      bar.Low,
				Close:    bar.Close,
				AdjClose: bar.AdjClose,
				Volume:   bar.Volume,
			})
		}

		if err := iter.Err(); err != nil {
			return fmt.Errorf("chart fetch for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no price bars for %s between %s and %s",
			ErrDataUnavailable, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	yc.cache.Set("yahoo", "history", cacheKey, result)

	return result, nil
}

// sessionQuote fetches the live quote for a symbol.
func (yc *yahooClient) sessionQuote(ctx context.Context, symbol string) (*SessionQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cached SessionQuote
	if yc.cache.Get("yahoo", "quote", symbol, &cached) {
		return &cached, nil
	}

	var result *SessionQuote
	err := WithRetry(ctx, yc.retry, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("quote fetch for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("empty quote response for %s", symbol)
		}

		result = &SessionQuote{
			Symbol:      symbol,
			Name:        q.ShortName,
			Exchange:    q.FullExchangeName,
			Currency:    q.CurrencyID,
			MarketState: string(q.MarketState),
			QuoteType:   string(q.QuoteType),
			Price:       q.RegularMarketPrice,
			Open:        q.RegularMarketOpen,
			High:        q.RegularMarketDayHigh,
			Low:         q.RegularMarketDayLow,
			Volume:      q.RegularMarketVolume,
			Tradeable:   q.IsTradeable,
			AsOf:        time.Unix(int64(q.RegularMarketTime), 0).UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	yc.cache.Set("yahoo", "quote", symbol, result)

	return result, nil
}

// equitySnapshot fetches the equity profile and fills the snapshot metrics
// the endpoint reports. Zero values from the provider mean missing and are
// not stored.
func (yc *yahooClient) equitySnapshot(ctx context.Context, symbol string) (*FundamentalsSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cached FundamentalsSnapshot
	if yc.cache.Get("yahoo", "equity", symbol, &cached) {
		return &cached, nil
	}

	var snap *FundamentalsSnapshot
	err := WithRetry(ctx, yc.retry, func() error {
		eq, err := equity.Get(symbol)
		if err != nil {
			return fmt.Errorf("equity fetch for %s: %w", symbol, err)
		}
		if eq == nil {
			return fmt.Errorf("empty equity response for %s", symbol)
		}

		snap = NewFundamentalsSnapshot(symbol)
		snap.LongName = eq.LongName
		if snap.LongName == "" {
			snap.LongName = eq.ShortName
		}
		snap.Exchange = eq.FullExchangeName
		snap.Currency = eq.CurrencyID

		setNonZero(snap, KeyCurrentPrice, eq.RegularMarketPrice)
		setNonZero(snap, KeyOpen, eq.RegularMarketOpen)
		setNonZero(snap, KeyDayHigh, eq.RegularMarketDayHigh)
		setNonZero(snap, KeyDayLow, eq.RegularMarketDayLow)
		setNonZero(snap, KeyVolume, float64(eq.RegularMarketVolume))
		setNonZero(snap, KeyMarketCap, float64(eq.MarketCap))
		setNonZero(snap, KeySharesOutstanding, float64(eq.SharesOutstanding))
		setNonZero(snap, KeyTrailingPE, eq.TrailingPE)
		setNonZero(snap, KeyForwardPE, eq.ForwardPE)
		setNonZero(snap, KeyPriceToBook, eq.PriceToBook)
		setNonZero(snap, KeyBookValue, eq.BookValue)
		setNonZero(snap, KeyTrailingEps, eq.EpsTrailingTwelveMonths)
		setNonZero(snap, KeyDividendYield, eq.TrailingAnnualDividendYield)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	yc.cache.Set("yahoo", "equity", symbol, snap)

	return snap, nil
}

func setNonZero(snap *FundamentalsSnapshot, key string, value float64) {
	if value == 0 {
		return
	}
	snap.Set(key, value)
}
