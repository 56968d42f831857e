// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/hedgeflow/internal/api"
	"github.com/aristath/hedgeflow/internal/database"
	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/market_regime"
	"github.com/aristath/hedgeflow/internal/marketdata"
	markethandlers "github.com/aristath/hedgeflow/internal/marketdata/handlers"
	"github.com/aristath/hedgeflow/internal/modules/hedging"
	hedginghandlers "github.com/aristath/hedgeflow/internal/modules/hedging/handlers"
	"github.com/aristath/hedgeflow/internal/modules/risk"
	riskhandlers "github.com/aristath/hedgeflow/internal/modules/risk/handlers"
	"github.com/aristath/hedgeflow/internal/scheduler"
	"github.com/aristath/hedgeflow/internal/server"
)

// Container holds all application dependencies
type Container struct {
	// Database
	MarketDB *database.DB

	// Market data
	MarketProvider domain.MarketDataProvider
	MarketStore    *marketdata.SQLiteProvider // nil unless the sqlite source is configured
	RegimeHistory  *market_regime.RegimeHistory

	// Services
	RiskService      *risk.Service
	StrategyComposer *hedging.StrategyComposer
	HedgingService   *hedging.Service

	// HTTP
	Responder      *api.Responder
	RiskHandler    *riskhandlers.Handler
	HedgingHandler *hedginghandlers.Handler
	MarketHandler  *markethandlers.Handler

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered background jobs
type JobInstances struct {
	RegimeMonitor *scheduler.RegimeMonitorJob
}

// Modules returns the route registrars mounted under /api
func (c *Container) Modules() []server.RouteRegistrar {
	return []server.RouteRegistrar{c.RiskHandler, c.HedgingHandler, c.MarketHandler}
}

// Close releases the database connection
func (c *Container) Close() error {
	if c.MarketDB == nil {
		return nil
	}
	return c.MarketDB.Close()
}
