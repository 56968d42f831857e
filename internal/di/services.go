package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/api"
	"github.com/aristath/hedgeflow/internal/config"
	"github.com/aristath/hedgeflow/internal/market_regime"
	"github.com/aristath/hedgeflow/internal/marketdata"
	markethandlers "github.com/aristath/hedgeflow/internal/marketdata/handlers"
	"github.com/aristath/hedgeflow/internal/modules/hedging"
	hedginghandlers "github.com/aristath/hedgeflow/internal/modules/hedging/handlers"
	"github.com/aristath/hedgeflow/internal/modules/risk"
	riskhandlers "github.com/aristath/hedgeflow/internal/modules/risk/handlers"
)

// InitializeServices creates the market data provider, the calculators and the HTTP handlers
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.MarketDataSource {
	case config.SourceSQLite:
		store := marketdata.NewSQLiteProvider(container.MarketDB.Conn(), marketdata.NewIndicatorDetector(), log)
		container.MarketProvider = store
		container.MarketStore = store
	case config.SourceStatic:
		provider, err := marketdata.NewStaticProvider(cfg.StaticMarket)
		if err != nil {
			return fmt.Errorf("failed to create static market data provider: %w", err)
		}
		container.MarketProvider = provider
	default:
		return fmt.Errorf("unknown market data source %q", cfg.MarketDataSource)
	}
	log.Info().Str("source", cfg.MarketDataSource).Msg("Market data provider initialized")

	container.RegimeHistory = market_regime.NewRegimeHistory(container.MarketDB.Conn(), log)

	container.RiskService = risk.NewService(log)
	container.StrategyComposer = hedging.NewStrategyComposer(hedging.DefaultRegimeTable(), log)
	container.HedgingService = hedging.NewService(container.StrategyComposer, container.MarketProvider, log)

	container.Responder = api.NewResponder(log)
	container.RiskHandler = riskhandlers.NewHandler(container.RiskService, container.Responder, cfg.DefaultConfidence, log)
	container.HedgingHandler = hedginghandlers.NewHandler(container.HedgingService, container.RegimeHistory, container.Responder, cfg.DefaultConfidence, log)

	// A nil *SQLiteProvider must not become a non-nil Store interface.
	var store markethandlers.Store
	if container.MarketStore != nil {
		store = container.MarketStore
	}
	container.MarketHandler = markethandlers.NewHandler(container.MarketProvider, store, container.Responder, log)

	return nil
}
