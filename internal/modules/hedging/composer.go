package hedging

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/market_regime"
	"github.com/aristath/hedgeflow/internal/modules/risk"
	"github.com/aristath/hedgeflow/internal/utils"
)

// StrategyComposer builds regime-dependent hedge strategies across categories.
//
// The regime is CRISIS when the caller overrides or the snapshot reports a crisis;
// elevated markets use normal parameters. Each category is allocated independently
// from its own priced catalog and target ratio.
type StrategyComposer struct {
	table        RegimeTable
	costModel    *InstrumentCostModel
	allocator    *Allocator
	varEstimator *risk.VaREstimator
	aggregator   *risk.PortfolioRiskAggregator
	now          func() time.Time
	log          zerolog.Logger
}

// NewStrategyComposer creates a composer over a regime table
func NewStrategyComposer(table RegimeTable, log zerolog.Logger) *StrategyComposer {
	return &StrategyComposer{
		table:        table,
		costModel:    NewInstrumentCostModel(table),
		allocator:    NewAllocator(log),
		varEstimator: risk.NewVaREstimator(),
		aggregator:   risk.NewPortfolioRiskAggregator(),
		now:          time.Now,
		log:          log.With().Str("component", "strategy_composer").Logger(),
	}
}

// CostModel returns the composer's instrument cost model
func (c *StrategyComposer) CostModel() *InstrumentCostModel {
	return c.costModel
}

// Compose builds a strategy for the exposures under the snapshot.
// Categories are emitted in canonical order (fuel, currency, freight) whatever the input order.
func (c *StrategyComposer) Compose(exposures []domain.Exposure, snapshot domain.MarketSnapshot, crisisOverride bool, opts StrategyOptions) (*HedgeStrategy, error) {
	defer utils.OperationTimer("compose_strategy", time.Second, c.log)()

	ordered, err := orderExposures(exposures)
	if err != nil {
		return nil, err
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	if opts.BudgetLimit != nil {
		if b := *opts.BudgetLimit; math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
			return nil, fmt.Errorf("%w: budget limit must be a non-negative number, got %v", domain.ErrInvalidInput, b)
		}
	}
	confidence := opts.Confidence
	if confidence == 0 {
		confidence = risk.DefaultConfidence
	}

	decision := market_regime.ClassifySnapshot(snapshot, crisisOverride)

	totalExposure := 0.0
	for _, e := range ordered {
		totalExposure += e.TotalValue()
	}

	strategy := &HedgeStrategy{
		ID:               uuid.NewString(),
		GeneratedAt:      c.now().UTC(),
		Regime:           decision.StrategyRegime,
		MarketRegime:     decision.MarketRegime,
		CrisisOverride:   crisisOverride,
		CrisisIndicators: decision.CrisisIndicators,
		SnapshotAsOf:     snapshot.AsOf,
		Categories:       make([]CategoryStrategy, 0, len(ordered)),
	}

	assets := make([]risk.AssetExposure, 0, len(ordered))
	for _, exposure := range ordered {
		var budget *float64
		if opts.BudgetLimit != nil {
			share := *opts.BudgetLimit * exposure.TotalValue() / totalExposure
			budget = &share
		}

		cs, err := c.composeCategory(exposure, snapshot, decision.StrategyRegime, budget, confidence)
		if err != nil {
			return nil, fmt.Errorf("failed to compose %s hedge: %w", exposure.Category, err)
		}
		strategy.Categories = append(strategy.Categories, cs)
		assets = append(assets, risk.AssetExposure{
			Name:          string(exposure.Category),
			ExposureValue: cs.ExposureValue,
			Volatility:    cs.Volatility,
		})
	}

	portfolioRisk, err := c.aggregator.Aggregate(assets, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate portfolio risk: %w", err)
	}
	strategy.PortfolioRisk = portfolioRisk
	strategy.Summary = summarize(strategy.Categories)

	c.log.Info().
		Str("strategy_id", strategy.ID).
		Str("regime", string(strategy.Regime)).
		Str("market_regime", string(strategy.MarketRegime)).
		Bool("override", crisisOverride).
		Float64("total_cost", strategy.Summary.TotalCost).
		Float64("overall_hedge_ratio", strategy.Summary.OverallHedgeRatio).
		Msg("Composed hedge strategy")

	return strategy, nil
}

func (c *StrategyComposer) composeCategory(exposure domain.Exposure, snapshot domain.MarketSnapshot, regime domain.StrategyRegime, budget *float64, confidence float64) (CategoryStrategy, error) {
	params, ok := c.table.Lookup(exposure.Category, regime)
	if !ok {
		return CategoryStrategy{}, fmt.Errorf("no %s parameters for %s", regime, exposure.Category)
	}

	instruments, err := c.costModel.Catalog(exposure, snapshot, regime)
	if err != nil {
		return CategoryStrategy{}, err
	}

	value := exposure.TotalValue()
	portfolio, err := c.allocator.Allocate(AllocationRequest{
		ExposureValue: value,
		TargetRatio:   params.TargetRatio,
		Instruments:   instruments,
		BudgetLimit:   budget,
		MaxTotalUnits: exposure.TotalUnits(),
		Regime:        regime,
	})
	if err != nil {
		return CategoryStrategy{}, err
	}

	vol := snapshot.VolatilityFor(exposure.Category)
	days := exposure.HorizonDays()

	unhedged, err := c.varEstimator.Estimate(value, vol, confidence, days)
	if err != nil {
		return CategoryStrategy{}, err
	}
	residual, err := c.varEstimator.Estimate(math.Max(0, value-portfolio.HedgedAmount), vol, confidence, days)
	if err != nil {
		return CategoryStrategy{}, err
	}

	return CategoryStrategy{
		Category:      exposure.Category,
		Exposure:      exposure,
		ExposureValue: value,
		Volatility:    vol,
		TargetRatio:   params.TargetRatio,
		BudgetLimit:   budget,
		Instruments:   instruments,
		Portfolio:     portfolio,
		VaR:           unhedged,
		ResidualVaR:   residual,
	}, nil
}

// orderExposures validates exposures and returns them in canonical category order
func orderExposures(exposures []domain.Exposure) ([]domain.Exposure, error) {
	if len(exposures) == 0 {
		return nil, fmt.Errorf("%w: at least one exposure is required", domain.ErrInvalidInput)
	}

	byCategory := make(map[domain.Category]domain.Exposure, len(exposures))
	for _, e := range exposures {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byCategory[e.Category]; dup {
			return nil, fmt.Errorf("%w: duplicate %s exposure", domain.ErrInvalidInput, e.Category)
		}
		byCategory[e.Category] = e
	}

	ordered := make([]domain.Exposure, 0, len(byCategory))
	for _, cat := range domain.Categories {
		if e, ok := byCategory[cat]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

func summarize(categories []CategoryStrategy) CostBenefit {
	exposure, cost, protection := decimal.Zero, decimal.Zero, decimal.Zero
	varBefore, varAfter := decimal.Zero, decimal.Zero

	for _, cs := range categories {
		exposure = exposure.Add(decimal.NewFromFloat(cs.ExposureValue))
		cost = cost.Add(decimal.NewFromFloat(cs.Portfolio.TotalCost))
		protection = protection.Add(decimal.NewFromFloat(cs.Portfolio.ExpectedProtection))
		varBefore = varBefore.Add(decimal.NewFromFloat(cs.VaR.VaRValue))
		varAfter = varAfter.Add(decimal.NewFromFloat(cs.ResidualVaR.VaRValue))
	}

	summary := CostBenefit{
		TotalExposure:   money(exposure),
		TotalCost:       money(cost),
		TotalProtection: money(protection),
		NetBenefit:      money(protection.Sub(cost)),
		VaRBefore:       money(varBefore),
		VaRAfter:        money(varAfter),
		VaRReduction:    money(varBefore.Sub(varAfter)),
	}

	if exposure.IsPositive() {
		summary.CostPctOfExposure = ratio(cost.Div(exposure).Mul(decimal.NewFromInt(100)))
		summary.OverallHedgeRatio = ratio(protection.Div(exposure))
	}

	switch {
	case cost.IsPositive():
		summary.ROIRatio = ratio(protection.Div(cost))
	case protection.IsPositive():
		summary.ROIUnbounded = true
	}

	return summary
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func ratio(d decimal.Decimal) float64 {
	return d.Round(4).InexactFloat64()
}
