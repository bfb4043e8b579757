package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://query2.finance.yahoo.com"

	quoteSummaryModules = "assetProfile,price,summaryDetail,financialData,defaultKeyStatistics"

	// The provider throttles unauthenticated clients hard; stay well under.
	requestsPerSecond = 2
	requestBurst      = 4
)

// browserUserAgent is required by the provider's web endpoints; requests with
// the default Go client UA get rejected.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// statement line items requested from the timeseries endpoint, annual scope.
var (
	incomeLines = []string{
		LineTotalRevenue, LineGrossProfit, LineOperatingIncome,
		LineNetIncome, LineEBITDA, LineInterestExpense,
	}
	balanceLines = []string{
		LineTotalAssets, LineCurrentAssets, LineCurrentLiabilities,
		LineTotalDebt, LineCashAndEquivalents, LineStockholdersEquity,
	}
	cashFlowLines = []string{
		LineOperatingCashFlow, LineCapitalExpenditure, LineFreeCashFlow,
	}
)

// fundamentalsClient talks to the provider's JSON endpoints: quoteSummary for
// the metric snapshot, fundamentals-timeseries for annual statements, and the
// chart events feed for dividend history.
type fundamentalsClient struct {
	http    *resty.Client
	limiter *rate.Limiter
	cache   *CacheManager
	retry   *RetryConfig
}

func newFundamentalsClient(baseURL string, cache *CacheManager, retry *RetryConfig) *fundamentalsClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if retry == nil {
		retry = DefaultRetryConfig()
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(20 * time.Second).
		SetHeader("User-Agent", browserUserAgent).
		SetHeader("Accept", "application/json")

	return &fundamentalsClient{
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		cache:   cache,
		retry:   retry,
	}
}

func (fc *fundamentalsClient) doGet(ctx context.Context, endpoint string, query map[string]string, out interface{}) error {
	if err := fc.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := fc.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode(),
			Message:    truncate(string(resp.Body()), 120),
		}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// yahooNumber is the provider's {"raw": ..., "fmt": ...} wrapper. Only the
// raw value matters; a missing wrapper or raw field means not reported.
type yahooNumber struct {
	Raw *float64 `json:"raw"`
}

func (n *yahooNumber) value() (float64, bool) {
	if n == nil || n.Raw == nil {
		return 0, false
	}
	return *n.Raw, true
}

type yahooAPIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *yahooAPIError       `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	AssetProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
		Country  string `json:"country"`
		Website  string `json:"website"`
	} `json:"assetProfile"`
	Price *struct {
		LongName           string       `json:"longName"`
		ShortName          string       `json:"shortName"`
		Currency           string       `json:"currency"`
		ExchangeName       string       `json:"exchangeName"`
		RegularMarketPrice *yahooNumber `json:"regularMarketPrice"`
		MarketCap          *yahooNumber `json:"marketCap"`
	} `json:"price"`
	SummaryDetail *struct {
		Open          *yahooNumber `json:"open"`
		DayHigh       *yahooNumber `json:"dayHigh"`
		DayLow        *yahooNumber `json:"dayLow"`
		PreviousClose *yahooNumber `json:"previousClose"`
		Volume        *yahooNumber `json:"volume"`
		TrailingPE    *yahooNumber `json:"trailingPE"`
		ForwardPE     *yahooNumber `json:"forwardPE"`
		PriceToSales  *yahooNumber `json:"priceToSalesTrailing12Months"`
		DividendYield *yahooNumber `json:"dividendYield"`
		PayoutRatio   *yahooNumber `json:"payoutRatio"`
		MarketCap     *yahooNumber `json:"marketCap"`
		Beta          *yahooNumber `json:"beta"`
	} `json:"summaryDetail"`
	FinancialData *struct {
		CurrentPrice     *yahooNumber `json:"currentPrice"`
		TotalCash        *yahooNumber `json:"totalCash"`
		TotalDebt        *yahooNumber `json:"totalDebt"`
		TotalRevenue     *yahooNumber `json:"totalRevenue"`
		Ebitda           *yahooNumber `json:"ebitda"`
		GrossMargins     *yahooNumber `json:"grossMargins"`
		OperatingMargins *yahooNumber `json:"operatingMargins"`
		ProfitMargins    *yahooNumber `json:"profitMargins"`
		ReturnOnEquity   *yahooNumber `json:"returnOnEquity"`
		ReturnOnAssets   *yahooNumber `json:"returnOnAssets"`
		CurrentRatio     *yahooNumber `json:"currentRatio"`
		QuickRatio       *yahooNumber `json:"quickRatio"`
		DebtToEquity     *yahooNumber `json:"debtToEquity"`
	} `json:"financialData"`
	DefaultKeyStatistics *struct {
		SharesOutstanding   *yahooNumber `json:"sharesOutstanding"`
		EnterpriseToRevenue *yahooNumber `json:"enterpriseToRevenue"`
		EnterpriseToEbitda  *yahooNumber `json:"enterpriseToEbitda"`
		PriceToBook         *yahooNumber `json:"priceToBook"`
		BookValue           *yahooNumber `json:"bookValue"`
		TrailingEps         *yahooNumber `json:"trailingEps"`
		Beta                *yahooNumber `json:"beta"`
		PayoutRatio         *yahooNumber `json:"payoutRatio"`
	} `json:"defaultKeyStatistics"`
}

// fundamentals fetches the quoteSummary modules and folds them into one
// snapshot.
func (fc *fundamentalsClient) fundamentals(ctx context.Context, symbol string) (*FundamentalsSnapshot, error) {
	var cached FundamentalsSnapshot
	if fc.cache.Get("yahoo", "quote_summary", symbol, &cached) {
		return &cached, nil
	}

	var envelope quoteSummaryEnvelope
	err := WithRetry(ctx, fc.retry, func() error {
		envelope = quoteSummaryEnvelope{}
		return fc.doGet(ctx, "/v10/finance/quoteSummary/"+symbol, map[string]string{
			"modules": quoteSummaryModules,
		}, &envelope)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if apiErr := envelope.QuoteSummary.Error; apiErr != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrDataUnavailable, apiErr.Description, apiErr.Code)
	}
	if len(envelope.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: empty quoteSummary for %s", ErrDataUnavailable, symbol)
	}

	snap := buildSnapshot(symbol, envelope.QuoteSummary.Result[0])

	fc.cache.Set("yahoo", "quote_summary", symbol, snap)

	return snap, nil
}

func buildSnapshot(symbol string, result quoteSummaryResult) *FundamentalsSnapshot {
	snap := NewFundamentalsSnapshot(symbol)

	if p := result.AssetProfile; p != nil {
		snap.Sector = p.Sector
		snap.Industry = p.Industry
	}
	if p := result.Price; p != nil {
		snap.LongName = p.LongName
		if snap.LongName == "" {
			snap.LongName = p.ShortName
		}
		snap.Currency = p.Currency
		snap.Exchange = p.ExchangeName
		putNumber(snap, KeyCurrentPrice, p.RegularMarketPrice)
		putNumber(snap, KeyMarketCap, p.MarketCap)
	}
	if d := result.SummaryDetail; d != nil {
		putNumber(snap, KeyOpen, d.Open)
		putNumber(snap, KeyDayHigh, d.DayHigh)
		putNumber(snap, KeyDayLow, d.DayLow)
		putNumber(snap, KeyPreviousClose, d.PreviousClose)
		putNumber(snap, KeyVolume, d.Volume)
		putNumber(snap, KeyTrailingPE, d.TrailingPE)
		putNumber(snap, KeyForwardPE, d.ForwardPE)
		putNumber(snap, KeyPriceToSales, d.PriceToSales)
		putNumber(snap, KeyDividendYield, d.DividendYield)
		putNumber(snap, KeyPayoutRatio, d.PayoutRatio)
		putNumber(snap, KeyMarketCap, d.MarketCap)
		putNumber(snap, KeyBeta, d.Beta)
	}
	if f := result.FinancialData; f != nil {
		putNumber(snap, KeyCurrentPrice, f.CurrentPrice)
		putNumber(snap, KeyTotalCash, f.TotalCash)
		putNumber(snap, KeyTotalDebt, f.TotalDebt)
		putNumber(snap, KeyTotalRevenue, f.TotalRevenue)
		putNumber(snap, KeyEbitda, f.Ebitda)
		putNumber(snap, KeyGrossMargins, f.GrossMargins)
		putNumber(snap, KeyOperatingMargins, f.OperatingMargins)
		putNumber(snap, KeyProfitMargins, f.ProfitMargins)
		putNumber(snap, KeyReturnOnEquity, f.ReturnOnEquity)
		putNumber(snap, KeyReturnOnAssets, f.ReturnOnAssets)
		putNumber(snap, KeyCurrentRatio, f.CurrentRatio)
		putNumber(snap, KeyQuickRatio, f.QuickRatio)
		putNumber(snap, KeyDebtToEquity, f.DebtToEquity)
	}
	if s := result.DefaultKeyStatistics; s != nil {
		putNumber(snap, KeySharesOutstanding, s.SharesOutstanding)
		putNumber(snap, KeyEnterpriseToRev, s.EnterpriseToRevenue)
		putNumber(snap, KeyEnterpriseToEbitda, s.EnterpriseToEbitda)
		putNumber(snap, KeyPriceToBook, s.PriceToBook)
		putNumber(snap, KeyBookValue, s.BookValue)
		putNumber(snap, KeyTrailingEps, s.TrailingEps)
		putNumber(snap, KeyBeta, s.Beta)
		putNumber(snap, KeyPayoutRatio, s.PayoutRatio)
	}

	return snap
}

// putNumber stores a reported value; later calls overwrite earlier ones, so
// module order sets precedence.
func putNumber(snap *FundamentalsSnapshot, key string, n *yahooNumber) {
	if v, ok := n.value(); ok {
		snap.Set(key, v)
	}
}

type timeseriesEnvelope struct {
	Timeseries struct {
		Result []json.RawMessage `json:"result"`
		Error  *yahooAPIError    `json:"error"`
	} `json:"timeseries"`
}

type timeseriesMeta struct {
	Meta struct {
		Symbol []string `json:"symbol"`
		Type   []string `json:"type"`
	} `json:"meta"`
}

type timeseriesValue struct {
	AsOfDate      string       `json:"asOfDate"`
	ReportedValue *yahooNumber `json:"reportedValue"`
}

// statements fetches the annual income, balance and cash-flow statements.
func (fc *fundamentalsClient) statements(ctx context.Context, symbol string) (*Statements, error) {
	cacheKey := map[string]interface{}{"symbol": symbol, "scope": "annual"}

	var cached Statements
	if fc.cache.Get("yahoo", "statements", cacheKey, &cached) {
		return &cached, nil
	}

	var types []string
	for _, line := range incomeLines {
		types = append(types, "annual"+line)
	}
	for _, line := range balanceLines {
		types = append(types, "annual"+line)
	}
	for _, line := range cashFlowLines {
		types = append(types, "annual"+line)
	}

	now := time.Now()
	query := map[string]string{
		"symbol":  symbol,
		"type":    strings.Join(types, ","),
		"period1": strconv.FormatInt(now.AddDate(-5, 0, 0).Unix(), 10),
		"period2": strconv.FormatInt(now.Unix(), 10),
	}

	var envelope timeseriesEnvelope
	err := WithRetry(ctx, fc.retry, func() error {
		envelope = timeseriesEnvelope{}
		return fc.doGet(ctx, "/ws/fundamentals-timeseries/v1/finance/timeseries/"+symbol, query, &envelope)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if apiErr := envelope.Timeseries.Error; apiErr != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrDataUnavailable, apiErr.Description, apiErr.Code)
	}

	lines := make(map[string]map[string]float64)
	for _, raw := range envelope.Timeseries.Result {
		name, values, err := parseTimeseriesResult(raw)
		if err != nil || name == "" {
			continue
		}
		line := strings.TrimPrefix(name, "annual")
		if len(values) == 0 {
			continue
		}
		lines[line] = values
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no statement data for %s", ErrDataUnavailable, symbol)
	}

	stmts := &Statements{
		Income:   assembleStatement(lines, incomeLines),
		Balance:  assembleStatement(lines, balanceLines),
		CashFlow: assembleStatement(lines, cashFlowLines),
	}

	fc.cache.Set("yahoo", "statements", cacheKey, stmts)

	return stmts, nil
}

// parseTimeseriesResult extracts one line item from a result entry. The value
// array sits under a key equal to the entry's meta type, so the entry is
// decoded generically first.
func parseTimeseriesResult(raw json.RawMessage) (string, map[string]float64, error) {
	var meta timeseriesMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", nil, err
	}
	if len(meta.Meta.Type) == 0 {
		return "", nil, nil
	}
	name := meta.Meta.Type[0]

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil, err
	}
	rawValues, ok := fields[name]
	if !ok {
		return name, nil, nil
	}

	var entries []*timeseriesValue
	if err := json.Unmarshal(rawValues, &entries); err != nil {
		return name, nil, err
	}

	values := make(map[string]float64)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if v, ok := entry.ReportedValue.value(); ok {
			values[entry.AsOfDate] = v
		}
	}
	return name, values, nil
}

// assembleStatement orders each requested line most recent fiscal year first.
func assembleStatement(lines map[string]map[string]float64, wanted []string) Statement {
	periodSet := make(map[string]struct{})
	for _, line := range wanted {
		for period := range lines[line] {
			periodSet[period] = struct{}{}
		}
	}

	periods := make([]string, 0, len(periodSet))
	for period := range periodSet {
		periods = append(periods, period)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))

	stmt := Statement{
		Periods: periods,
		Items:   make(map[string][]float64),
	}
	for _, line := range wanted {
		byPeriod := lines[line]
		if len(byPeriod) == 0 {
			continue
		}
		values := make([]float64, 0, len(periods))
		for _, period := range periods {
			if v, ok := byPeriod[period]; ok {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			stmt.Items[line] = values
		}
	}
	return stmt
}

type chartEventsEnvelope struct {
	Chart struct {
		Result []struct {
			Events *struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *yahooAPIError `json:"error"`
	} `json:"chart"`
}

// dividends fetches the cash dividend events inside the window, oldest first.
// A company that pays none yields an empty series, not an error.
func (fc *fundamentalsClient) dividends(ctx context.Context, symbol string, start, end time.Time) (DividendSeries, error) {
	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	var cached DividendSeries
	if fc.cache.Get("yahoo", "dividends", cacheKey, &cached) {
		return cached, nil
	}

	query := map[string]string{
		"period1":  strconv.FormatInt(start.Unix(), 10),
		"period2":  strconv.FormatInt(end.Unix(), 10),
		"interval": "1d",
		"events":   "div",
	}

	var envelope chartEventsEnvelope
	err := WithRetry(ctx, fc.retry, func() error {
		envelope = chartEventsEnvelope{}
		return fc.doGet(ctx, "/v8/finance/chart/"+symbol, query, &envelope)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if apiErr := envelope.Chart.Error; apiErr != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrDataUnavailable, apiErr.Description, apiErr.Code)
	}
	if len(envelope.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: empty chart response for %s", ErrDataUnavailable, symbol)
	}

	series := DividendSeries{}
	if events := envelope.Chart.Result[0].Events; events != nil {
		for _, div := range events.Dividends {
			if div.Amount <= 0 {
				continue
			}
			series = append(series, DividendPayment{
				Date:   time.Unix(div.Date, 0).UTC(),
				Amount: decimal.NewFromFloat(div.Amount),
			})
		}
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	fc.cache.Set("yahoo", "dividends", cacheKey, series)

	return series, nil
}
