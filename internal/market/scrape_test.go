package market

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const keyStatisticsFixture = `<html><body>
<table><tbody>
<tr><td>Market Cap</td><td>505.36B</td></tr>
<tr><td>Trailing P/E</td><td>9.99</td></tr>
<tr><td>Forward P/E</td><td>4.05</td></tr>
<tr><td>Return on Equity (ttm)</td><td>23.45%</td></tr>
<tr><td>Total Debt/Equity (mrq)</td><td>39.50%</td></tr>
<tr><td>Total Debt (mrq)</td><td>271.03B</td></tr>
<tr><td>Payout Ratio</td><td>60.13%</td></tr>
<tr><td>Shares Outstanding</td><td>13.04B</td></tr>
<tr><td>Beta (5Y Monthly)</td><td>1.25</td></tr>
<tr><td>Current Ratio (mrq)</td><td>0.92</td></tr>
<tr><td>Enterprise Value/EBITDA</td><td>2.93</td></tr>
<tr><td>Revenue (ttm)</td><td>480.12B</td></tr>
<tr><td>Forward Annual Dividend Yield</td><td>14.32%</td></tr>
<tr><td>PEG Ratio (5yr expected)</td><td>N/A</td></tr>
</tbody></table>
</body></html>`

func newTestScraper(t *testing.T, handler http.Handler) *statsScraper {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newStatsScraper(srv.URL)
}

func TestScrapeFillsMissingOnly(t *testing.T) {
	sc := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/quote/PETR4.SA/key-statistics") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(keyStatisticsFixture))
	}))

	snap := NewFundamentalsSnapshot("PETR4.SA")
	snap.Set(KeyTrailingPE, 4.21) // primary source already answered

	if err := sc.fillMissing(context.Background(), snap); err != nil {
		t.Fatalf("fillMissing: %v", err)
	}

	if v, _ := snap.Get(KeyTrailingPE); v != 4.21 {
		t.Errorf("scrape overwrote primary trailing P/E: %v", v)
	}

	checks := map[string]float64{
		KeyMarketCap:          505.36e9,
		KeyForwardPE:          4.05,
		KeyReturnOnEquity:     0.2345,
		KeyDebtToEquity:       39.50, // provider reports this percent-scaled
		KeyTotalDebt:          271.03e9,
		KeyPayoutRatio:        0.6013,
		KeySharesOutstanding:  13.04e9,
		KeyBeta:               1.25,
		KeyCurrentRatio:       0.92,
		KeyEnterpriseToEbitda: 2.93,
		KeyTotalRevenue:       480.12e9,
		KeyDividendYield:      0.1432,
	}
	for key, want := range checks {
		got, ok := snap.Get(key)
		if !ok {
			t.Errorf("missing key %s", key)
			continue
		}
		if math.Abs(got-want) > math.Abs(want)*1e-9+1e-9 {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
}

func TestScrapeHTTPError(t *testing.T) {
	sc := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	snap := NewFundamentalsSnapshot("NOPE")
	err := sc.fillMissing(context.Background(), snap)
	if err == nil {
		t.Fatal("expected error on 404")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected APIError with 404, got %v", err)
	}
}

func TestParseScrapedValue(t *testing.T) {
	plain := scrapeTarget{}
	percent := scrapeTarget{percent: true}
	suffixed := scrapeTarget{suffixed: true}

	cases := []struct {
		raw    string
		target scrapeTarget
		want   float64
		ok     bool
	}{
		{"1,234.56", plain, 1234.56, true},
		{"$45.20", plain, 45.2, true},
		{"9.99", plain, 9.99, true},
		{"23.45%", percent, 0.2345, true},
		{"23.45", percent, 23.45, true},
		{"39.50%", plain, 39.50, true},
		{"505.36B", suffixed, 505.36e9, true},
		{"3.08T", suffixed, 3.08e12, true},
		{"13.04M", suffixed, 13.04e6, true},
		{"950.5K", suffixed, 950500, true},
		{"120", suffixed, 120, true},
		{"-62.1B", suffixed, -62.1e9, true},
		{"N/A", plain, 0, false},
		{"--", plain, 0, false},
		{"-", suffixed, 0, false},
		{"", percent, 0, false},
		{"abc", plain, 0, false},
	}

	for _, tc := range cases {
		got, err := parseScrapedValue(tc.raw, tc.target)
		if tc.ok && err != nil {
			t.Errorf("parseScrapedValue(%q): %v", tc.raw, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("parseScrapedValue(%q): expected error, got %v", tc.raw, got)
			}
			continue
		}
		if math.Abs(got-tc.want) > math.Abs(tc.want)*1e-12 {
			t.Errorf("parseScrapedValue(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
