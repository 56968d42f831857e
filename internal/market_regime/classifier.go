// Package market_regime maps market conditions onto the two-state strategy regime
// and keeps a history of regime decisions.
package market_regime

import (
	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/utils"
)

// Decision is the outcome of one regime classification
type Decision struct {
	MarketRegime     domain.MarketRegime   `json:"market_regime"`
	StrategyRegime   domain.StrategyRegime `json:"strategy_regime"`
	CrisisOverride   bool                  `json:"crisis_override"`
	CrisisIndicators []string              `json:"crisis_indicators"`
}

// Classify selects the strategy regime.
// Crisis when the caller overrides or the market reports crisis; everything else,
// including elevated, runs on normal parameters.
func Classify(market domain.MarketRegime, override bool) domain.StrategyRegime {
	if override || market == domain.MarketRegimeCrisis {
		return domain.StrategyRegimeCrisis
	}
	return domain.StrategyRegimeNormal
}

// ClassifySnapshot classifies a snapshot and carries its indicators along
func ClassifySnapshot(snapshot domain.MarketSnapshot, override bool) Decision {
	market := snapshot.Regime
	if market == "" {
		market = domain.MarketRegimeNormal
	}
	indicators := make([]string, len(snapshot.CrisisIndicators))
	copy(indicators, snapshot.CrisisIndicators)

	return Decision{
		MarketRegime:     market,
		StrategyRegime:   Classify(market, override),
		CrisisOverride:   override,
		CrisisIndicators: indicators,
	}
}

// RegimeFromIndicators derives a market regime from a count of active crisis indicators:
// two or more is a crisis, one is elevated.
func RegimeFromIndicators(indicators []string) domain.MarketRegime {
	switch n := len(indicators); {
	case n >= 2:
		return domain.MarketRegimeCrisis
	case n == 1:
		return domain.MarketRegimeElevated
	default:
		return domain.MarketRegimeNormal
	}
}

// Changed reports whether two decisions put the engine in different states
func (d Decision) Changed(prev Decision) bool {
	return d.StrategyRegime != prev.StrategyRegime || d.MarketRegime != prev.MarketRegime
}

// IndicatorList joins indicators for storage
func (d Decision) IndicatorList() string {
	return utils.JoinList(d.CrisisIndicators)
}
