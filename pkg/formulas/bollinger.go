package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// BollingerBands represents Bollinger Bands values
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// CalculateBollingerBands calculates the latest Bollinger Bands over closes.
//
//	Middle = SMA(length)
//	Upper  = Middle + k × σ
//	Lower  = Middle − k × σ
//
// Returns nil if there is not enough data.
func CalculateBollingerBands(closes []float64, length int, stdDevMultiplier float64) *BollingerBands {
	if length < 2 || len(closes) < length {
		return nil
	}

	// MAType 0 = SMA
	upper, middle, lower := talib.BBands(closes, length, stdDevMultiplier, stdDevMultiplier, 0)

	last := len(upper) - 1
	if last < 0 || math.IsNaN(upper[last]) {
		return nil
	}

	return &BollingerBands{
		Upper:  upper[last],
		Middle: middle[last],
		Lower:  lower[last],
	}
}

// RollingStdDev returns the population standard deviation of the last length values.
// Returns 0 if there is not enough data.
func RollingStdDev(values []float64, length int) float64 {
	if length < 2 || len(values) < length {
		return 0
	}
	out := talib.StdDev(values, length, 1)
	if len(out) == 0 || math.IsNaN(out[len(out)-1]) {
		return 0
	}
	return out[len(out)-1]
}
