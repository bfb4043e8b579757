// Package valuation computes ratios, risk, cost of capital and discounted
// cash flow from already-fetched market data. Everything here is pure: no
// network, no clocks beyond timestamps, no shared state.
package valuation

import "errors"

// ErrComputationFault marks a numeric step that cannot proceed, like a
// discount rate at or below terminal growth. Faults stay local to the result
// they invalidate; the surrounding summary still comes back.
var ErrComputationFault = errors.New("valuation computation fault")

// Metric is a value that may legitimately be absent. The zero Metric is
// absent; arithmetic never treats absent as zero.
type Metric struct {
	Value float64
	Valid bool
}

func NewMetric(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// Basis records whether a result was computed from data or substituted with
// the documented default after a degraded estimate.
type Basis int

const (
	BasisComputed Basis = iota
	BasisDegradedDefault
)

func (b Basis) String() string {
	if b == BasisDegradedDefault {
		return "degraded default"
	}
	return "computed"
}
