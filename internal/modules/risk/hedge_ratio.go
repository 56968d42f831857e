package risk

import (
	"fmt"
	"math"

	"github.com/aristath/hedgeflow/internal/domain"
)

// MaxRecommendedHedgePct caps the recommended hedge percentage regardless of the computed ratio
const MaxRecommendedHedgePct = 85.0

// Hedge effectiveness labels
const (
	EffectivenessHigh   = "High"
	EffectivenessMedium = "Medium"
	EffectivenessLow    = "Low"
)

// HedgeRatioResult holds the minimum-variance hedge ratio for a spot/futures pair
type HedgeRatioResult struct {
	Correlation          float64 `json:"correlation"`
	SpotVolatility       float64 `json:"spot_volatility"`
	FuturesVolatility    float64 `json:"futures_volatility"`
	Ratio                float64 `json:"ratio"`
	RecommendedPct       float64 `json:"recommended_pct"`
	VarianceReductionPct float64 `json:"variance_reduction_pct"`
	Effectiveness        string  `json:"effectiveness"`
}

// HedgeRatioCalculator computes minimum-variance hedge ratios
type HedgeRatioCalculator struct{}

// NewHedgeRatioCalculator creates a new hedge ratio calculator
func NewHedgeRatioCalculator() *HedgeRatioCalculator {
	return &HedgeRatioCalculator{}
}

// OptimalRatio computes h* = ρ × σs/σf.
//
// The recommended percentage is h* × 100 clamped to [0, MaxRecommendedHedgePct];
// a negative ratio means the futures contract does not offset the spot risk and
// nothing is recommended.
func (c *HedgeRatioCalculator) OptimalRatio(correlation, spotVol, futuresVol float64) (HedgeRatioResult, error) {
	if math.IsNaN(correlation) || correlation < -1 || correlation > 1 {
		return HedgeRatioResult{}, fmt.Errorf("%w: correlation must be within [-1, 1], got %v", domain.ErrInvalidInput, correlation)
	}
	if math.IsNaN(spotVol) || math.IsInf(spotVol, 0) || spotVol <= 0 {
		return HedgeRatioResult{}, fmt.Errorf("%w: spot volatility must be positive, got %v", domain.ErrInvalidInput, spotVol)
	}
	if math.IsNaN(futuresVol) || math.IsInf(futuresVol, 0) || futuresVol <= 0 {
		return HedgeRatioResult{}, fmt.Errorf("%w: futures volatility must be positive, got %v", domain.ErrInvalidInput, futuresVol)
	}

	ratio := correlation * (spotVol / futuresVol)
	recommended := math.Max(0, math.Min(ratio*100, MaxRecommendedHedgePct))

	return HedgeRatioResult{
		Correlation:          correlation,
		SpotVolatility:       spotVol,
		FuturesVolatility:    futuresVol,
		Ratio:                ratio,
		RecommendedPct:       recommended,
		VarianceReductionPct: correlation * correlation * 100,
		Effectiveness:        effectiveness(correlation),
	}, nil
}

func effectiveness(correlation float64) string {
	switch {
	case correlation > 0.85:
		return EffectivenessHigh
	case correlation > 0.70:
		return EffectivenessMedium
	default:
		return EffectivenessLow
	}
}
