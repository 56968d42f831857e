package market_regime

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/hedgeflow/internal/domain"
	testingpkg "github.com/aristath/hedgeflow/internal/testing"
)

func TestRegimeHistory_RecordAndRecent(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "market")
	defer cleanup()

	history := NewRegimeHistory(db.Conn(), zerolog.Nop())

	_, ok, err := history.Latest()
	require.NoError(t, err)
	assert.False(t, ok)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	decisions := []Decision{
		{MarketRegime: domain.MarketRegimeNormal, StrategyRegime: domain.StrategyRegimeNormal, CrisisIndicators: []string{}},
		{MarketRegime: domain.MarketRegimeElevated, StrategyRegime: domain.StrategyRegimeNormal, CrisisIndicators: []string{"fuel_bollinger_breakout"}},
		{MarketRegime: domain.MarketRegimeCrisis, StrategyRegime: domain.StrategyRegimeCrisis, CrisisOverride: true, CrisisIndicators: []string{"fuel_bollinger_breakout", "fuel_volatility_spike"}},
	}
	for i, d := range decisions {
		_, err := history.Record(d, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	latest, ok, err := history.Latest()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StrategyRegimeCrisis, latest.StrategyRegime)
	assert.True(t, latest.CrisisOverride)
	assert.Equal(t, []string{"fuel_bollinger_breakout", "fuel_volatility_spike"}, latest.CrisisIndicators)
	assert.Equal(t, base.Add(2*time.Hour), latest.RecordedAt)

	recent, err := history.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, domain.MarketRegimeCrisis, recent[0].MarketRegime)
	assert.Equal(t, domain.MarketRegimeElevated, recent[1].MarketRegime)
	assert.False(t, recent[1].CrisisOverride)

	all, err := history.Recent(10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Empty(t, all[2].CrisisIndicators)
}

func TestRegimeHistory_RejectsBadLimit(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "market")
	defer cleanup()

	_, err := NewRegimeHistory(db.Conn(), zerolog.Nop()).Recent(0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
