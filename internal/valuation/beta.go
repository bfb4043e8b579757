package valuation

import (
	"math"
	"sort"

	"github.com/jpoffo/valuador/internal/market"
)

// RiskProfile is the asset's regression against the benchmark index.
type RiskProfile struct {
	Beta     float64
	Alpha    float64
	RSquared float64
	Basis    Basis
}

// neutralRisk is the substitute when the regression cannot run: market beta,
// no excess return, no explanatory power.
func neutralRisk() RiskProfile {
	return RiskProfile{Beta: 1, Alpha: 0, RSquared: 0, Basis: BasisDegradedDefault}
}

// EstimateRisk regresses the asset's daily returns on the benchmark's over
// the dates both series traded. Fewer than two aligned observations, or a
// flat benchmark, degrade to the neutral profile instead of failing.
func EstimateRisk(asset, benchmark market.PriceSeries) RiskProfile {
	assetReturns := dailyReturns(asset)
	benchReturns := dailyReturns(benchmark)

	dates := make([]string, 0, len(assetReturns))
	for date := range assetReturns {
		if _, ok := benchReturns[date]; ok {
			dates = append(dates, date)
		}
	}
	if len(dates) < 2 {
		return neutralRisk()
	}
	sort.Strings(dates)

	x := make([]float64, len(dates)) // benchmark
	y := make([]float64, len(dates)) // asset
	for i, date := range dates {
		x[i] = benchReturns[date]
		y[i] = assetReturns[date]
	}

	n := float64(len(dates))
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var covXY, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		covXY += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 {
		return neutralRisk()
	}

	beta := covXY / varX
	alpha := meanY - beta*meanX
	rSquared := 0.0
	if varY > 0 {
		rSquared = (covXY * covXY) / (varX * varY)
	}

	return RiskProfile{Beta: beta, Alpha: alpha, RSquared: rSquared, Basis: BasisComputed}
}

// dailyReturns keys each day's percentage change by its date so the two
// series can be joined on the days both traded.
func dailyReturns(series market.PriceSeries) map[string]float64 {
	out := make(map[string]float64, len(series))
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Close.InexactFloat64()
		cur := series[i].Close.InexactFloat64()
		if prev == 0 {
			continue
		}
		r := (cur - prev) / prev
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out[series[i].Date.Format("2006-01-02")] = r
	}
	return out
}
