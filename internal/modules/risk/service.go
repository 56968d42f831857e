package risk

import (
	"github.com/rs/zerolog"
)

// Service exposes the risk calculators to the API layer
type Service struct {
	varEstimator *VaREstimator
	hedgeRatio   *HedgeRatioCalculator
	aggregator   *PortfolioRiskAggregator
	log          zerolog.Logger
}

// NewService creates a new risk service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		varEstimator: NewVaREstimator(),
		hedgeRatio:   NewHedgeRatioCalculator(),
		aggregator:   NewPortfolioRiskAggregator(),
		log:          log.With().Str("service", "risk").Logger(),
	}
}

// ComputeVaR estimates parametric VaR for a single exposure
func (s *Service) ComputeVaR(exposureValue, volatilityAnnual, confidence float64, horizonDays int) (VaRResult, error) {
	result, err := s.varEstimator.Estimate(exposureValue, volatilityAnnual, confidence, horizonDays)
	if err != nil {
		return VaRResult{}, err
	}

	if result.ConfidenceLevel != confidence {
		s.log.Debug().
			Float64("requested", confidence).
			Float64("applied", result.ConfidenceLevel).
			Msg("Unsupported confidence level, using default z-score")
	}

	s.log.Debug().
		Float64("exposure", exposureValue).
		Float64("var", result.VaRValue).
		Float64("var_pct", result.VaRPct).
		Str("risk_level", string(result.RiskLevel)).
		Msg("Computed VaR")

	return result, nil
}

// ComputeVaRProfile estimates VaR at every supported confidence level (90%, 95%, 99%)
func (s *Service) ComputeVaRProfile(exposureValue, volatilityAnnual float64, horizonDays int) ([]VaRResult, error) {
	profile := make([]VaRResult, 0, len(zScores))
	for _, entry := range zScores {
		result, err := s.varEstimator.Estimate(exposureValue, volatilityAnnual, entry.confidence, horizonDays)
		if err != nil {
			return nil, err
		}
		profile = append(profile, result)
	}
	return profile, nil
}

// ComputeHedgeRatio computes the minimum-variance hedge ratio
func (s *Service) ComputeHedgeRatio(correlation, spotVol, futuresVol float64) (HedgeRatioResult, error) {
	return s.hedgeRatio.OptimalRatio(correlation, spotVol, futuresVol)
}

// ComputePortfolioRisk aggregates correlated per-asset exposures
func (s *Service) ComputePortfolioRisk(assets []AssetExposure, correlations Correlations) (PortfolioRiskResult, error) {
	result, err := s.aggregator.Aggregate(assets, correlations)
	if err != nil {
		return PortfolioRiskResult{}, err
	}

	s.log.Debug().
		Int("assets", len(assets)).
		Float64("portfolio_volatility", result.PortfolioVolatility).
		Float64("diversification_benefit", result.DiversificationBenefit).
		Msg("Computed portfolio risk")

	return result, nil
}
