package hedging

import (
	"time"

	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/modules/risk"
)

// StrategyOptions tunes one strategy composition
type StrategyOptions struct {
	BudgetLimit *float64 // Total hedge budget across categories, split pro-rata by exposure value; nil means unlimited
	Confidence  float64  // VaR confidence level; 0 means 95%
}

// CategoryStrategy is the hedge plan for one risk category
type CategoryStrategy struct {
	Category      domain.Category       `json:"category"`
	Exposure      domain.Exposure       `json:"exposure"`
	ExposureValue float64               `json:"exposure_value"`
	Volatility    float64               `json:"volatility"`
	TargetRatio   float64               `json:"target_ratio"`
	BudgetLimit   *float64              `json:"budget_limit,omitempty"`
	Instruments   []HedgeInstrumentSpec `json:"instruments"` // Priced catalog offered to the allocator
	Portfolio     HedgePortfolio        `json:"portfolio"`
	VaR           risk.VaRResult        `json:"var"`          // Unhedged exposure
	ResidualVaR   risk.VaRResult        `json:"residual_var"` // Exposure left after hedging
}

// CostBenefit aggregates cost and protection across categories.
// Money values are rounded to cents and ratios to four decimals.
type CostBenefit struct {
	TotalExposure     float64 `json:"total_exposure"`
	TotalCost         float64 `json:"total_cost"`
	TotalProtection   float64 `json:"total_protection"`
	NetBenefit        float64 `json:"net_benefit"`          // Protection − cost
	CostPctOfExposure float64 `json:"cost_pct_of_exposure"` // Cost / exposure × 100
	OverallHedgeRatio float64 `json:"overall_hedge_ratio"`  // Protection / exposure
	ROIRatio          float64 `json:"roi_ratio"`            // Protection / cost; 0 when ROIUnbounded
	ROIUnbounded      bool    `json:"roi_unbounded"`        // Protection bought at zero cost
	VaRBefore         float64 `json:"var_before"`           // Σ unhedged category VaR
	VaRAfter          float64 `json:"var_after"`            // Σ residual category VaR
	VaRReduction      float64 `json:"var_reduction"`
}

// HedgeStrategy is the composed, regime-dependent hedge plan
type HedgeStrategy struct {
	ID               string                   `json:"id"`
	GeneratedAt      time.Time                `json:"generated_at"`
	Regime           domain.StrategyRegime    `json:"regime"`
	MarketRegime     domain.MarketRegime      `json:"market_regime"`
	CrisisOverride   bool                     `json:"crisis_override"`
	CrisisIndicators []string                 `json:"crisis_indicators"`
	SnapshotAsOf     time.Time                `json:"snapshot_as_of"`
	Categories       []CategoryStrategy       `json:"categories"`
	PortfolioRisk    risk.PortfolioRiskResult `json:"portfolio_risk"`
	Summary          CostBenefit              `json:"summary"`
}

// Category returns the plan for one category
func (s *HedgeStrategy) Category(c domain.Category) (CategoryStrategy, bool) {
	for _, cs := range s.Categories {
		if cs.Category == c {
			return cs, true
		}
	}
	return CategoryStrategy{}, false
}
