package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/market_regime"
)

// RegimeMonitorJob classifies the current market snapshot and records regime transitions
type RegimeMonitorJob struct {
	provider domain.MarketDataProvider
	history  *market_regime.RegimeHistory
	timeout  time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewRegimeMonitorJob creates a new RegimeMonitorJob
func NewRegimeMonitorJob(provider domain.MarketDataProvider, history *market_regime.RegimeHistory, log zerolog.Logger) *RegimeMonitorJob {
	return &RegimeMonitorJob{
		provider: provider,
		history:  history,
		timeout:  30 * time.Second,
		now:      time.Now,
		log:      log.With().Str("job", "regime_monitor").Logger(),
	}
}

// Name returns the job name
func (j *RegimeMonitorJob) Name() string {
	return "regime_monitor"
}

// Run fetches the snapshot, classifies it and stores the decision when the regime changed
func (j *RegimeMonitorJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	snapshot, err := j.provider.GetSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch market snapshot: %w", err)
	}

	decision := market_regime.ClassifySnapshot(snapshot, false)

	latest, found, err := j.history.Latest()
	if err != nil {
		return fmt.Errorf("failed to load latest regime: %w", err)
	}
	if found && !decision.Changed(latest.Decision) {
		j.log.Debug().
			Str("regime", string(decision.MarketRegime)).
			Msg("Market regime unchanged")
		return nil
	}

	if _, err := j.history.Record(decision, j.now()); err != nil {
		return fmt.Errorf("failed to record regime: %w", err)
	}

	event := j.log.Info()
	if decision.StrategyRegime == domain.StrategyRegimeCrisis {
		event = j.log.Warn()
	}
	if found {
		event = event.Str("previous", string(latest.MarketRegime))
	}
	event.
		Str("regime", string(decision.MarketRegime)).
		Strs("indicators", decision.CrisisIndicators).
		Msg("Market regime changed")

	return nil
}
