package hedging

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/market_regime"
)

// Service is the entry point for strategy building.
// It resolves the market snapshot from the provider when the caller supplies none.
type Service struct {
	composer *StrategyComposer
	provider domain.MarketDataProvider
	log      zerolog.Logger
}

// NewService creates a new hedging service
func NewService(composer *StrategyComposer, provider domain.MarketDataProvider, log zerolog.Logger) *Service {
	return &Service{
		composer: composer,
		provider: provider,
		log:      log.With().Str("service", "hedging").Logger(),
	}
}

// BuildHedgeStrategy composes a hedge strategy for the exposures.
// A nil snapshot is fetched from the market data provider.
func (s *Service) BuildHedgeStrategy(ctx context.Context, exposures []domain.Exposure, snapshot *domain.MarketSnapshot, crisisOverride bool, opts StrategyOptions) (*HedgeStrategy, error) {
	snap, err := s.resolveSnapshot(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	return s.composer.Compose(exposures, snap, crisisOverride, opts)
}

// PricedCatalog returns the regime and priced instrument catalog an exposure would be offered
func (s *Service) PricedCatalog(ctx context.Context, exposure domain.Exposure, crisisOverride bool) (domain.StrategyRegime, []HedgeInstrumentSpec, error) {
	snap, err := s.resolveSnapshot(ctx, nil)
	if err != nil {
		return "", nil, err
	}
	regime := market_regime.Classify(snap.Regime, crisisOverride)
	specs, err := s.composer.CostModel().Catalog(exposure, snap, regime)
	if err != nil {
		return "", nil, err
	}
	return regime, RankInstruments(specs), nil
}

// CurrentRegime classifies the provider's current snapshot
func (s *Service) CurrentRegime(ctx context.Context, crisisOverride bool) (market_regime.Decision, error) {
	snap, err := s.resolveSnapshot(ctx, nil)
	if err != nil {
		return market_regime.Decision{}, err
	}
	return market_regime.ClassifySnapshot(snap, crisisOverride), nil
}

func (s *Service) resolveSnapshot(ctx context.Context, snapshot *domain.MarketSnapshot) (domain.MarketSnapshot, error) {
	if snapshot != nil {
		return *snapshot, nil
	}
	if s.provider == nil {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: no market data provider configured", domain.ErrSnapshotUnavailable)
	}

	snap, err := s.provider.GetSnapshot(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch market snapshot")
		return domain.MarketSnapshot{}, fmt.Errorf("failed to fetch market snapshot: %w", err)
	}
	return snap, nil
}
