package marketdata

import (
	"fmt"

	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/pkg/formulas"
)

// IndicatorDetector flags crisis conditions in a category's closing prices
type IndicatorDetector struct {
	BollingerPeriod int     // Window for the Bollinger breakout check
	BollingerK      float64 // Band width in standard deviations
	ShortWindow     int     // Recent returns window for the volatility spike check
	LongWindow      int     // Baseline returns window
	SpikeRatio      float64 // Short/long σ ratio that counts as a spike
}

// NewIndicatorDetector returns a detector with 20/2 Bollinger bands and a 10/60 day σ spike at 1.5×
func NewIndicatorDetector() *IndicatorDetector {
	return &IndicatorDetector{
		BollingerPeriod: 20,
		BollingerK:      2,
		ShortWindow:     10,
		LongWindow:      60,
		SpikeRatio:      1.5,
	}
}

// MinHistory is the number of closes needed to evaluate every check
func (d *IndicatorDetector) MinHistory() int {
	if d.LongWindow+1 > d.BollingerPeriod {
		return d.LongWindow + 1
	}
	return d.BollingerPeriod
}

// Detect returns the indicators active for the closes, oldest first.
// Checks without enough history are skipped.
func (d *IndicatorDetector) Detect(category domain.Category, closes []float64) []string {
	indicators := []string{}
	if len(closes) == 0 {
		return indicators
	}

	last := closes[len(closes)-1]
	if bands := formulas.CalculateBollingerBands(closes, d.BollingerPeriod, d.BollingerK); bands != nil {
		if last > bands.Upper || last < bands.Lower {
			indicators = append(indicators, fmt.Sprintf("%s_bollinger_breakout", category))
		}
	}

	returns := formulas.CalculateReturns(closes)
	short := formulas.RollingStdDev(returns, d.ShortWindow)
	long := formulas.RollingStdDev(returns, d.LongWindow)
	if long > 0 && short/long >= d.SpikeRatio {
		indicators = append(indicators, fmt.Sprintf("%s_volatility_spike", category))
	}

	return indicators
}
