package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/hedgeflow/internal/domain"
)

func TestOptimalRatio_CappedRecommendation(t *testing.T) {
	result, err := NewHedgeRatioCalculator().OptimalRatio(0.9, 0.25, 0.22)
	require.NoError(t, err)

	assert.InDelta(t, 1.0227, result.Ratio, 1e-4)
	assert.Equal(t, 85.0, result.RecommendedPct)
	assert.InDelta(t, 81.0, result.VarianceReductionPct, 1e-9)
	assert.Equal(t, EffectivenessHigh, result.Effectiveness)
}

func TestOptimalRatio_Effectiveness(t *testing.T) {
	calc := NewHedgeRatioCalculator()

	tests := []struct {
		correlation float64
		expected    string
	}{
		{0.95, EffectivenessHigh},
		{0.86, EffectivenessHigh},
		{0.85, EffectivenessMedium},
		{0.75, EffectivenessMedium},
		{0.70, EffectivenessLow},
		{0.2, EffectivenessLow},
		{-0.9, EffectivenessLow},
	}

	for _, tt := range tests {
		result, err := calc.OptimalRatio(tt.correlation, 0.2, 0.2)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, result.Effectiveness, "correlation=%v", tt.correlation)
	}
}

func TestOptimalRatio_RecommendedNeverExceedsCeiling(t *testing.T) {
	calc := NewHedgeRatioCalculator()

	for rho := -1.0; rho <= 1.0; rho += 0.1 {
		for _, spot := range []float64{0.05, 0.2, 0.6, 1.5} {
			for _, fut := range []float64{0.05, 0.2, 0.6} {
				result, err := calc.OptimalRatio(math.Max(-1, math.Min(1, rho)), spot, fut)
				require.NoError(t, err)
				assert.LessOrEqual(t, result.RecommendedPct, MaxRecommendedHedgePct)
				assert.GreaterOrEqual(t, result.RecommendedPct, 0.0)
			}
		}
	}
}

func TestOptimalRatio_ExtremeCorrelations(t *testing.T) {
	calc := NewHedgeRatioCalculator()

	result, err := calc.OptimalRatio(1, 0.1, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.Ratio, 1e-12)
	assert.InDelta(t, 50.0, result.RecommendedPct, 1e-9)
	assert.Equal(t, 100.0, result.VarianceReductionPct)

	result, err = calc.OptimalRatio(-1, 0.1, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, result.Ratio, 1e-12)
	assert.Equal(t, 0.0, result.RecommendedPct)
}

func TestOptimalRatio_RejectsInvalidInput(t *testing.T) {
	calc := NewHedgeRatioCalculator()

	tests := []struct {
		name        string
		correlation float64
		spot        float64
		futures     float64
	}{
		{"correlation above one", 1.01, 0.2, 0.2},
		{"correlation below minus one", -1.5, 0.2, 0.2},
		{"nan correlation", math.NaN(), 0.2, 0.2},
		{"zero spot vol", 0.5, 0, 0.2},
		{"negative futures vol", 0.5, 0.2, -0.1},
		{"zero futures vol", 0.5, 0.2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.OptimalRatio(tt.correlation, tt.spot, tt.futures)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
