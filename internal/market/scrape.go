package market

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultScrapeBaseURL = "https://finance.yahoo.com"

// scrapeTarget binds a statistics-page row label to a snapshot key. Percent
// rows are stored as fractions to match the JSON API scale, except where the
// provider itself reports a percent-scaled number.
type scrapeTarget struct {
	key      string
	match    string
	percent  bool
	suffixed bool
}

// Order matters: earlier entries win when one label contains another
// ("total debt/equity" before "total debt").
var scrapeTargets = []scrapeTarget{
	{key: KeyMarketCap, match: "market cap", suffixed: true},
	{key: KeyEnterpriseToRev, match: "enterprise value/revenue"},
	{key: KeyEnterpriseToEbitda, match: "enterprise value/ebitda"},
	{key: KeyTrailingPE, match: "trailing p/e"},
	{key: KeyForwardPE, match: "forward p/e"},
	{key: KeyPriceToSales, match: "price/sales"},
	{key: KeyPriceToBook, match: "price/book"},
	{key: KeyProfitMargins, match: "profit margin", percent: true},
	{key: KeyOperatingMargins, match: "operating margin", percent: true},
	{key: KeyReturnOnAssets, match: "return on assets", percent: true},
	{key: KeyReturnOnEquity, match: "return on equity", percent: true},
	{key: KeyTotalRevenue, match: "revenue", suffixed: true},
	{key: KeyEbitda, match: "ebitda", suffixed: true},
	{key: KeyTotalCash, match: "total cash", suffixed: true},
	// Shown as a percent but the JSON API reports it percent-scaled too,
	// so the raw number carries over unchanged.
	{key: KeyDebtToEquity, match: "total debt/equity"},
	{key: KeyTotalDebt, match: "total debt", suffixed: true},
	{key: KeyCurrentRatio, match: "current ratio"},
	{key: KeyBookValue, match: "book value per share"},
	{key: KeyDividendYield, match: "dividend yield", percent: true},
	{key: KeyPayoutRatio, match: "payout ratio", percent: true},
	{key: KeySharesOutstanding, match: "shares outstanding", suffixed: true},
	{key: KeyBeta, match: "beta"},
}

var suffixedValuePattern = regexp.MustCompile(`^(-?[0-9.]+)([KMBT]?)$`)

// statsScraper pulls the key-statistics page as a gap filler for metrics the
// JSON endpoints omitted. Strictly best effort.
type statsScraper struct {
	http    *http.Client
	baseURL string
}

func newStatsScraper(baseURL string) *statsScraper {
	if baseURL == "" {
		baseURL = defaultScrapeBaseURL
	}
	return &statsScraper{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
	}
}

// fillMissing scrapes the statistics page and adds values for keys the
// snapshot does not have yet.
func (sc *statsScraper) fillMissing(ctx context.Context, snap *FundamentalsSnapshot) error {
	url := fmt.Sprintf("%s/quote/%s/key-statistics/", sc.baseURL, snap.Symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := sc.http.Do(req)
	if err != nil {
		return fmt.Errorf("statistics page for %s: %w", snap.Symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Endpoint: url, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse statistics page for %s: %w", snap.Symbol, err)
	}

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.First().Text()))
		value := strings.TrimSpace(cells.Last().Text())
		if label == "" || value == "" {
			return
		}

		for _, target := range scrapeTargets {
			if !strings.Contains(label, target.match) {
				continue
			}
			if v, err := parseScrapedValue(value, target); err == nil {
				snap.SetIfAbsent(target.key, v)
			}
			return
		}
	})

	return nil
}

func parseScrapedValue(raw string, target scrapeTarget) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")

	switch strings.ToUpper(cleaned) {
	case "", "N/A", "--", "-":
		return 0, fmt.Errorf("no value: %q", raw)
	}

	isPercent := strings.HasSuffix(cleaned, "%")
	cleaned = strings.TrimSuffix(cleaned, "%")

	if target.suffixed {
		m := suffixedValuePattern.FindStringSubmatch(cleaned)
		if m == nil {
			return 0, fmt.Errorf("unrecognized value: %q", raw)
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, err
		}
		switch m[2] {
		case "K":
			v *= 1e3
		case "M":
			v *= 1e6
		case "B":
			v *= 1e9
		case "T":
			v *= 1e12
		}
		return v, nil
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized value: %q", raw)
	}
	if target.percent && isPercent {
		v /= 100
	}
	return v, nil
}
