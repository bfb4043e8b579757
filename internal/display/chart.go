package display

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/jpoffo/valuador/internal/market"
)

// SavePriceChart renders the close-price line as a PNG under dir and returns
// the written path. Files are named <symbol>_<period>_<yyyymmdd>.png.
func SavePriceChart(dir, symbol string, period market.Period, series market.PriceSeries) (string, error) {
	if series.Len() < 2 {
		return "", fmt.Errorf("not enough price points to chart %s", symbol)
	}

	closes := series.Closes()
	labels := make([]string, len(series))
	yMin, yMax := closes[0], closes[0]
	for i, bar := range series {
		labels[i] = bar.Date.Format("2006-01-02")
		if closes[i] < yMin {
			yMin = closes[i]
		}
		if closes[i] > yMax {
			yMax = closes[i]
		}
	}

	// Pad the y-range so the line does not hug the frame.
	pad := (yMax - yMin) * 0.05
	if pad < yMax*0.002 {
		pad = yMax * 0.002
	}
	yMin -= pad
	if yMin < 0 {
		yMin = 0
	}
	yMax += pad

	painter, err := charts.LineRender([][]float64{closes},
		charts.TitleTextOptionFunc(fmt.Sprintf("%s close • %s", symbol, period)),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: 10}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return "", fmt.Errorf("render chart for %s: %w", symbol, err)
	}
	img, err := painter.Bytes()
	if err != nil {
		return "", fmt.Errorf("encode chart for %s: %w", symbol, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.png", sanitizeFilename(symbol), period, time.Now().Format("20060102"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return path, nil
}

// sanitizeFilename drops index prefixes and path separators.
func sanitizeFilename(symbol string) string {
	return strings.NewReplacer("^", "", "/", "-", "\\", "-").Replace(symbol)
}
