package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/hedgeflow/internal/domain"
)

func TestVaREstimator_FuelExposureScenario(t *testing.T) {
	estimator := NewVaREstimator()

	result, err := estimator.Estimate(5_000_000, 0.20, 0.95, 180)
	require.NoError(t, err)

	assert.InDelta(t, 0.1690, result.HorizonVolatility, 1e-4)
	assert.InDelta(t, 1_390_278.75, result.VaRValue, 0.01)
	assert.InDelta(t, 27.8, result.VaRPct, 0.01)
	assert.Equal(t, 1.645, result.ZScore)
	assert.Equal(t, 0.95, result.ConfidenceLevel)
	assert.Equal(t, RiskLevelCritical, result.RiskLevel)
	assert.Equal(t, "Critical risk – immediate hedging required", result.Interpretation)
}

func TestVaREstimator_MatchesClosedForm(t *testing.T) {
	estimator := NewVaREstimator()

	tests := []struct {
		exposure   float64
		volatility float64
		confidence float64
		days       int
		z          float64
	}{
		{1_000_000, 0.35, 0.90, 21, 1.282},
		{250_000, 0.08, 0.99, 252, 2.326},
		{42, 0, 0.95, 5, 1.645},
		{3_200_000, 1.2, 0.99, 500, 2.326},
	}

	for _, tt := range tests {
		result, err := estimator.Estimate(tt.exposure, tt.volatility, tt.confidence, tt.days)
		require.NoError(t, err)

		expected := tt.exposure * tt.z * tt.volatility * math.Sqrt(float64(tt.days)/252)
		assert.InDelta(t, expected, result.VaRValue, 1e-6)
		assert.InDelta(t, expected/tt.exposure*100, result.VaRPct, 1e-9)
	}
}

func TestVaREstimator_UnsupportedConfidenceFallsBack(t *testing.T) {
	estimator := NewVaREstimator()

	fallback, err := estimator.Estimate(1_000_000, 0.25, 0.975, 30)
	require.NoError(t, err)
	standard, err := estimator.Estimate(1_000_000, 0.25, 0.95, 30)
	require.NoError(t, err)

	assert.Equal(t, standard.VaRValue, fallback.VaRValue)
	assert.Equal(t, 0.95, fallback.ConfidenceLevel)
}

func TestVaREstimator_ZeroExposure(t *testing.T) {
	result, err := NewVaREstimator().Estimate(0, 0.3, 0.99, 10)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.VaRValue)
	assert.Equal(t, 0.0, result.VaRPct)
	assert.False(t, math.IsNaN(result.VaRPct))
	assert.Equal(t, RiskLevelLow, result.RiskLevel)
}

func TestVaREstimator_RejectsInvalidInput(t *testing.T) {
	estimator := NewVaREstimator()

	tests := []struct {
		name       string
		exposure   float64
		volatility float64
		days       int
	}{
		{"negative exposure", -1, 0.2, 10},
		{"nan exposure", math.NaN(), 0.2, 10},
		{"infinite exposure", math.Inf(1), 0.2, 10},
		{"negative volatility", 100, -0.2, 10},
		{"nan volatility", 100, math.NaN(), 10},
		{"zero horizon", 100, 0.2, 0},
		{"negative horizon", 100, 0.2, -3},
		{"overflowing var", 1e308, 5, 2520},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := estimator.Estimate(tt.exposure, tt.volatility, 0.95, tt.days)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestVaREstimator_MonotonicInVolatilityAndHorizon(t *testing.T) {
	estimator := NewVaREstimator()

	previous := -1.0
	for vol := 0.0; vol <= 1.0; vol += 0.05 {
		result, err := estimator.Estimate(1_000_000, vol, 0.95, 60)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.VaRValue, previous)
		previous = result.VaRValue
	}

	previous = -1.0
	for days := 1; days <= 504; days += 7 {
		result, err := estimator.Estimate(1_000_000, 0.3, 0.95, days)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.VaRValue, previous)
		previous = result.VaRValue
	}
}

func TestInterpret_Bands(t *testing.T) {
	tests := []struct {
		pct   float64
		level RiskLevel
	}{
		{25, RiskLevelCritical},
		{20.01, RiskLevelCritical},
		{20, RiskLevelHigh},
		{15.5, RiskLevelHigh},
		{15, RiskLevelModerate},
		{10.1, RiskLevelModerate},
		{10, RiskLevelLow},
		{0, RiskLevelLow},
	}

	for _, tt := range tests {
		level, label := Interpret(tt.pct)
		assert.Equal(t, tt.level, level, "pct=%v", tt.pct)
		assert.NotEmpty(t, label)
	}
}

func TestZScore(t *testing.T) {
	z, ok := ZScore(0.99)
	assert.True(t, ok)
	assert.Equal(t, 2.326, z)

	z, ok = ZScore(0.5)
	assert.False(t, ok)
	assert.Equal(t, 1.645, z)
}

func TestConfidenceLevels_TableTracksNormalQuantile(t *testing.T) {
	levels := ConfidenceLevels()
	require.Len(t, levels, 3)

	for i, level := range levels {
		if i > 0 {
			assert.Greater(t, level.Confidence, levels[i-1].Confidence)
		}
		z, ok := ZScore(level.Confidence)
		assert.True(t, ok)
		assert.Equal(t, z, level.ZScore)
		assert.InDelta(t, level.ExactZ, level.ZScore, 1e-3)
	}
}
