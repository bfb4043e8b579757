package display

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jpoffo/valuador/internal/market"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func chartSeries(n int) market.PriceSeries {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	series := make(market.PriceSeries, n)
	for i := range series {
		price := decimal.NewFromFloat(35 + 3*math.Sin(float64(i)/4))
		series[i] = market.PriceBar{
			Date: start.AddDate(0, 0, i),
			Open: price, High: price, Low: price, Close: price,
			Volume: 1_000_000,
		}
	}
	return series
}

func TestSavePriceChart(t *testing.T) {
	dir := t.TempDir()

	path, err := SavePriceChart(dir, "PETR4.SA", market.Period1Y, chartSeries(30))
	if err != nil {
		t.Fatalf("SavePriceChart: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "PETR4.SA_1y_") || !strings.HasSuffix(base, ".png") {
		t.Errorf("chart filename = %q", base)
	}

	img, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("chart file is not a PNG")
	}
}

func TestSavePriceChartTooFewPoints(t *testing.T) {
	if _, err := SavePriceChart(t.TempDir(), "PETR4.SA", market.Period1Mo, chartSeries(1)); err == nil {
		t.Error("expected an error for a single-point series")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("^BVSP"); got != "BVSP" {
		t.Errorf("sanitizeFilename(^BVSP) = %q", got)
	}
	if got := sanitizeFilename("BRK/B"); got != "BRK-B" {
		t.Errorf("sanitizeFilename(BRK/B) = %q", got)
	}
}
