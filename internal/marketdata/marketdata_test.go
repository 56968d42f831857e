package marketdata

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/hedgeflow/internal/domain"
	testingpkg "github.com/aristath/hedgeflow/internal/testing"
)

// calmSeries alternates between 100 and 100.5
func calmSeries(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i%2)*0.5
	}
	return closes
}

// shockSeries is a calm series ending in a ~20% jump
func shockSeries(n int) []float64 {
	closes := calmSeries(n)
	closes[n-1] = 120
	return closes
}

func pricePoints(start time.Time, closes []float64) []PricePoint {
	points := make([]PricePoint, len(closes))
	for i, c := range closes {
		points[i] = PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return points
}

func TestIndicatorDetector_Detect(t *testing.T) {
	detector := NewIndicatorDetector()

	tests := []struct {
		name     string
		closes   []float64
		expected []string
	}{
		{name: "no history", closes: nil, expected: []string{}},
		{name: "calm market", closes: calmSeries(80), expected: []string{}},
		{name: "shock", closes: shockSeries(80), expected: []string{"fuel_bollinger_breakout", "fuel_volatility_spike"}},
		{name: "short history skips the spike check", closes: shockSeries(25), expected: []string{"fuel_bollinger_breakout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.Detect(domain.CategoryFuel, tt.closes))
		})
	}
}

func TestStaticProvider(t *testing.T) {
	snapshot := domain.MarketSnapshot{
		SpotPrice:            3.2,
		AnnualizedVolatility: 0.35,
		CrisisIndicators:     []string{"manual"},
		CategoryVolatility:   map[domain.Category]float64{domain.CategoryFreight: 0.5},
	}
	provider, err := NewStaticProvider(snapshot)
	require.NoError(t, err)

	got, err := provider.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.MarketRegimeNormal, got.Regime)
	assert.False(t, got.AsOf.IsZero())
	assert.Equal(t, 3.2, got.SpotPrice)

	// Returned snapshots do not alias provider state
	got.CrisisIndicators[0] = "mutated"
	got.CategoryVolatility[domain.CategoryFreight] = 9
	again, err := provider.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"manual"}, again.CrisisIndicators)
	assert.Equal(t, 0.5, again.CategoryVolatility[domain.CategoryFreight])

	_, err = NewStaticProvider(domain.MarketSnapshot{SpotPrice: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = provider.GetSnapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteProvider_NoSnapshot(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "market")
	defer cleanup()

	_, err := NewSQLiteProvider(db.Conn(), nil, zerolog.Nop()).GetSnapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrSnapshotUnavailable)
}

func TestSQLiteProvider_StoredRegimeWins(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "market")
	defer cleanup()
	ctx := context.Background()
	provider := NewSQLiteProvider(db.Conn(), nil, zerolog.Nop())

	asOf := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, provider.SaveSnapshot(ctx, domain.MarketSnapshot{
		AsOf: asOf.Add(-24 * time.Hour), SpotPrice: 2.9, AnnualizedVolatility: 0.2,
	}))
	require.NoError(t, provider.SaveSnapshot(ctx, domain.MarketSnapshot{
		AsOf:                 asOf,
		SpotPrice:            3.1,
		AnnualizedVolatility: 0.3,
		FXSpotRate:           1.08,
		FreightDayRate:       18_000,
		CrisisIndicators:     []string{"strait_closure"},
		Regime:               domain.MarketRegimeCrisis,
	}))

	got, err := provider.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, asOf, got.AsOf)
	assert.Equal(t, 3.1, got.SpotPrice)
	assert.Equal(t, 0.3, got.AnnualizedVolatility)
	assert.Equal(t, 1.08, got.FXSpotRate)
	assert.Equal(t, domain.MarketRegimeCrisis, got.Regime)
	assert.Equal(t, []string{"strait_closure"}, got.CrisisIndicators)
}

func TestSQLiteProvider_DerivesFromPriceHistory(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "market")
	defer cleanup()
	ctx := context.Background()
	provider := NewSQLiteProvider(db.Conn(), nil, zerolog.Nop())

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, provider.SaveSnapshot(ctx, domain.MarketSnapshot{
		AsOf: start.AddDate(0, 3, 0), SpotPrice: 120, FXSpotRate: 1.1, FreightDayRate: 15_000,
	}))
	require.NoError(t, provider.AppendPrices(ctx, domain.CategoryFuel, pricePoints(start, shockSeries(80))))
	require.NoError(t, provider.AppendPrices(ctx, domain.CategoryCurrency, pricePoints(start, calmSeries(80))))

	got, err := provider.GetSnapshot(ctx)
	require.NoError(t, err)

	assert.Greater(t, got.CategoryVolatility[domain.CategoryFuel], 0.0)
	assert.Greater(t, got.CategoryVolatility[domain.CategoryCurrency], 0.0)
	_, hasFreight := got.CategoryVolatility[domain.CategoryFreight]
	assert.False(t, hasFreight)

	// Headline volatility falls back to fuel's realized volatility
	assert.Equal(t, got.CategoryVolatility[domain.CategoryFuel], got.AnnualizedVolatility)

	assert.Equal(t, []string{"fuel_bollinger_breakout", "fuel_volatility_spike"}, got.CrisisIndicators)
	assert.Equal(t, domain.MarketRegimeCrisis, got.Regime)
}

func TestSQLiteProvider_AppendPricesUpserts(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "market")
	defer cleanup()
	ctx := context.Background()
	provider := NewSQLiteProvider(db.Conn(), nil, zerolog.Nop())

	day := time.Date(2026, 2, 2, 15, 30, 0, 0, time.UTC)
	require.NoError(t, provider.AppendPrices(ctx, domain.CategoryFreight, []PricePoint{{Date: day, Close: 10}}))
	require.NoError(t, provider.AppendPrices(ctx, domain.CategoryFreight, []PricePoint{{Date: day.Add(time.Hour), Close: 11}}))

	closes, err := provider.closes(ctx, domain.CategoryFreight)
	require.NoError(t, err)
	assert.Equal(t, []float64{11}, closes)

	err = provider.AppendPrices(ctx, "coal", []PricePoint{{Date: day, Close: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		err = provider.AppendPrices(ctx, domain.CategoryFuel, []PricePoint{{Date: day, Close: bad}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "close %v", bad)
	}
}

func TestMergeIndicators(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, mergeIndicators([]string{"a", "b"}, []string{"b", "", "c"}))
	assert.Equal(t, []string{}, mergeIndicators(nil, nil))
}
