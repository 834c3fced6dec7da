// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/ration-formulator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency or
// reportable feed quantities. Rounding is done in decimal so that values such
// as 1.005 round the way they read.
func Round(val float64) float64 {
	return RoundTo(val, constants.DecimalPlaces)
}

// RoundTo rounds a value half away from zero to the given number of places.
func RoundTo(val float64, places int32) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	return decimal.NewFromFloat(val).Round(places).InexactFloat64()
}

// SnapToZero clamps negative values and values smaller than epsilon to zero.
func SnapToZero(val, epsilon float64) float64 {
	if val < epsilon {
		return 0
	}
	return val
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CostTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// IsFinite reports whether a value is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
