// Package engine holds the pure financial calculations: balance projections,
// driver unit economics and period aggregation. Nothing here performs I/O;
// every function maps an input value to a fresh result value.
package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundEpsilon nudges binary floats like 1.005 (stored as 1.00499...) across
// the half-cent boundary before rounding.
const roundEpsilon = 1e-9

// Round rounds d to two decimal places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundFloat converts a simulation value into a two-place decimal.
// NaN and infinities map to zero.
func RoundFloat(x float64) decimal.Decimal {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Zero
	}
	switch {
	case x > 0:
		x += roundEpsilon
	case x < 0:
		x -= roundEpsilon
	}
	return decimal.NewFromFloat(x).Round(2)
}

// toFloat reads a decimal input into the float domain used by simulations.
func toFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
