package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot metric keys shared between the providers and the valuation layer.
// Names follow the provider's quoteSummary field names.
const (
	KeyCurrentPrice       = "currentPrice"
	KeyPreviousClose      = "previousClose"
	KeyOpen               = "open"
	KeyDayHigh            = "dayHigh"
	KeyDayLow             = "dayLow"
	KeyVolume             = "volume"
	KeyMarketCap          = "marketCap"
	KeySharesOutstanding  = "sharesOutstanding"
	KeyReturnOnEquity     = "returnOnEquity"
	KeyReturnOnAssets     = "returnOnAssets"
	KeyGrossMargins       = "grossMargins"
	KeyOperatingMargins   = "operatingMargins"
	KeyProfitMargins      = "profitMargins"
	KeyTrailingPE         = "trailingPE"
	KeyForwardPE          = "forwardPE"
	KeyPriceToBook        = "priceToBook"
	KeyPriceToSales       = "priceToSalesTrailing12Months"
	KeyEnterpriseToEbitda = "enterpriseToEbitda"
	KeyEnterpriseToRev    = "enterpriseToRevenue"
	KeyCurrentRatio       = "currentRatio"
	KeyQuickRatio         = "quickRatio"
	KeyDebtToEquity       = "debtToEquity"
	KeyTotalDebt          = "totalDebt"
	KeyTotalCash          = "totalCash"
	KeyEbitda             = "ebitda"
	KeyTotalRevenue       = "totalRevenue"
	KeyDividendYield      = "dividendYield"
	KeyPayoutRatio        = "payoutRatio"
	KeyInterestExpense    = "interestExpense"
	KeyBookValue          = "bookValue"
	KeyTrailingEps        = "trailingEps"
	KeyBeta               = "beta"
)

// Statement line-item keys used by the valuation layer. Names follow the
// provider's fundamentals-timeseries type names with the annual prefix removed.
const (
	LineOperatingCashFlow  = "OperatingCashFlow"
	LineCapitalExpenditure = "CapitalExpenditure"
	LineFreeCashFlow       = "FreeCashFlow"
	LineTotalRevenue       = "TotalRevenue"
	LineNetIncome          = "NetIncome"
	LineGrossProfit        = "GrossProfit"
	LineOperatingIncome    = "OperatingIncome"
	LineEBITDA             = "EBITDA"
	LineInterestExpense    = "InterestExpense"
	LineTotalAssets        = "TotalAssets"
	LineCurrentAssets      = "CurrentAssets"
	LineCurrentLiabilities = "CurrentLiabilities"
	LineTotalDebt          = "TotalDebt"
	LineCashAndEquivalents = "CashAndCashEquivalents"
	LineStockholdersEquity = "StockholdersEquity"
)

// PriceBar is one OHLCV bar of daily history.
type PriceBar struct {
	Date     time.Time       `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adj_close"`
	Volume   int             `json:"volume"`
}

// PriceSeries is daily history ordered oldest first.
type PriceSeries []PriceBar

func (s PriceSeries) Len() int { return len(s) }

// Closes returns the close prices as floats, oldest first.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, bar := range s {
		out[i] = bar.Close.InexactFloat64()
	}
	return out
}

// Dates returns the bar dates, oldest first.
func (s PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, bar := range s {
		out[i] = bar.Date
	}
	return out
}

// Tail returns the last n bars, or the whole series when it is shorter.
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 || len(s) == 0 {
		return nil
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// FundamentalsSnapshot collects the named metrics of one company at fetch
// time. Absent keys mean the provider did not report the value; they are
// never stored as zero.
type FundamentalsSnapshot struct {
	Symbol   string             `json:"symbol"`
	LongName string             `json:"long_name"`
	Sector   string             `json:"sector"`
	Industry string             `json:"industry"`
	Exchange string             `json:"exchange"`
	Currency string             `json:"currency"`
	Metrics  map[string]float64 `json:"metrics"`
}

func NewFundamentalsSnapshot(symbol string) *FundamentalsSnapshot {
	return &FundamentalsSnapshot{
		Symbol:  symbol,
		Metrics: make(map[string]float64),
	}
}

// Get reports the metric value and whether the provider supplied it.
func (f *FundamentalsSnapshot) Get(key string) (float64, bool) {
	if f == nil || f.Metrics == nil {
		return 0, false
	}
	v, ok := f.Metrics[key]
	return v, ok
}

func (f *FundamentalsSnapshot) Set(key string, value float64) {
	if f.Metrics == nil {
		f.Metrics = make(map[string]float64)
	}
	f.Metrics[key] = value
}

// SetIfAbsent stores the value only when the key is still missing. Fallback
// sources fill gaps without clobbering primary data.
func (f *FundamentalsSnapshot) SetIfAbsent(key string, value float64) {
	if _, ok := f.Get(key); ok {
		return
	}
	f.Set(key, value)
}

// Statement is one financial statement: line item -> annual values, most
// recent fiscal year first. Periods holds the matching fiscal period labels.
type Statement struct {
	Periods []string             `json:"periods"`
	Items   map[string][]float64 `json:"items"`
}

// Latest returns the most recent value of a line item.
func (s Statement) Latest(key string) (float64, bool) {
	values, ok := s.Items[key]
	if !ok || len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

// Statements bundles the three annual financial statements.
type Statements struct {
	Income   Statement `json:"income"`
	Balance  Statement `json:"balance"`
	CashFlow Statement `json:"cash_flow"`
}

// DividendPayment is one cash dividend event.
type DividendPayment struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// DividendSeries is dividend history ordered oldest first.
type DividendSeries []DividendPayment

// CompanyData is everything one analysis needs, fetched in a single pass.
type CompanyData struct {
	Symbol       string
	Period       Period
	Prices       PriceSeries
	Fundamentals *FundamentalsSnapshot
	Statements   *Statements
	Dividends    DividendSeries
	FetchedAt    time.Time
}
