// Package risk provides parametric risk measures: Value-at-Risk, minimum-variance
// hedge ratios and correlated multi-asset portfolio risk.
package risk

import (
	"fmt"
	"math"

	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/pkg/formulas"
)

// DefaultConfidence is used when a requested confidence level has no z-score entry
const DefaultConfidence = 0.95

// zScores maps supported one-sided confidence levels to standard normal z-scores
var zScores = []struct {
	confidence float64
	z          float64
}{
	{0.90, 1.282},
	{0.95, 1.645},
	{0.99, 2.326},
}

// RiskLevel is the interpretation band of a VaR percentage
type RiskLevel string

const (
	RiskLevelCritical RiskLevel = "critical"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelModerate RiskLevel = "moderate"
	RiskLevelLow      RiskLevel = "low"
)

// ConfidenceLevel is one supported confidence level
type ConfidenceLevel struct {
	Confidence float64 `json:"confidence"`
	ZScore     float64 `json:"z_score"`       // Tabulated value applied by Estimate
	ExactZ     float64 `json:"exact_z_score"` // Inverse normal CDF at the same level
}

// ConfidenceLevels lists the supported confidence levels in ascending order
func ConfidenceLevels() []ConfidenceLevel {
	levels := make([]ConfidenceLevel, len(zScores))
	for i, entry := range zScores {
		levels[i] = ConfidenceLevel{
			Confidence: entry.confidence,
			ZScore:     entry.z,
			ExactZ:     formulas.NormalQuantile(entry.confidence),
		}
	}
	return levels
}

// VaRResult holds a parametric Value-at-Risk estimate for one exposure
type VaRResult struct {
	Exposure          float64   `json:"exposure"`
	VolatilityAnnual  float64   `json:"volatility_annual"`
	HorizonVolatility float64   `json:"horizon_volatility"`
	HorizonDays       int       `json:"horizon_days"`
	ConfidenceLevel   float64   `json:"confidence_level"` // Confidence actually applied
	ZScore            float64   `json:"z_score"`
	VaRValue          float64   `json:"var_value"`
	VaRPct            float64   `json:"var_pct"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Interpretation    string    `json:"interpretation"`
}

// VaREstimator computes parametric (variance-covariance) VaR for a single exposure.
// It has no state and is safe for concurrent use.
type VaREstimator struct{}

// NewVaREstimator creates a new VaR estimator
func NewVaREstimator() *VaREstimator {
	return &VaREstimator{}
}

// ZScore returns the z-score for a confidence level and whether the level is supported.
// Unsupported levels get the 95% z-score.
func ZScore(confidence float64) (float64, bool) {
	for _, entry := range zScores {
		if math.Abs(entry.confidence-confidence) < 1e-9 {
			return entry.z, true
		}
	}
	z, _ := ZScore(DefaultConfidence)
	return z, false
}

// Estimate computes VaR = exposure × z × vol × sqrt(horizonDays/252).
//
// A zero exposure yields a zero result. Negative or non-finite numbers and a
// non-positive horizon are rejected with domain.ErrInvalidInput.
func (e *VaREstimator) Estimate(exposureValue, volatilityAnnual, confidence float64, horizonDays int) (VaRResult, error) {
	if math.IsNaN(exposureValue) || math.IsInf(exposureValue, 0) || exposureValue < 0 {
		return VaRResult{}, fmt.Errorf("%w: exposure value must be a non-negative number, got %v", domain.ErrInvalidInput, exposureValue)
	}
	if math.IsNaN(volatilityAnnual) || math.IsInf(volatilityAnnual, 0) || volatilityAnnual < 0 {
		return VaRResult{}, fmt.Errorf("%w: volatility must be a non-negative number, got %v", domain.ErrInvalidInput, volatilityAnnual)
	}
	if horizonDays <= 0 {
		return VaRResult{}, fmt.Errorf("%w: horizon must be positive, got %d days", domain.ErrInvalidInput, horizonDays)
	}

	z, supported := ZScore(confidence)
	if !supported {
		confidence = DefaultConfidence
	}

	horizonVol := formulas.ScaleVolatility(volatilityAnnual, horizonDays)
	varValue := exposureValue * z * horizonVol

	varPct := 0.0
	if exposureValue > 0 {
		varPct = varValue / exposureValue * 100
	}
	if math.IsInf(varValue, 0) || math.IsNaN(varValue) || math.IsInf(varPct, 0) || math.IsNaN(varPct) {
		return VaRResult{}, fmt.Errorf("%w: VaR for exposure %v at volatility %v over %d days is not finite", domain.ErrInvalidInput, exposureValue, volatilityAnnual, horizonDays)
	}

	level, label := Interpret(varPct)

	return VaRResult{
		Exposure:          exposureValue,
		VolatilityAnnual:  volatilityAnnual,
		HorizonVolatility: horizonVol,
		HorizonDays:       horizonDays,
		ConfidenceLevel:   confidence,
		ZScore:            z,
		VaRValue:          varValue,
		VaRPct:            varPct,
		RiskLevel:         level,
		Interpretation:    label,
	}, nil
}

// Interpret maps a VaR percentage of exposure to a risk band and label
func Interpret(varPct float64) (RiskLevel, string) {
	switch {
	case varPct > 20:
		return RiskLevelCritical, "Critical risk – immediate hedging required"
	case varPct > 15:
		return RiskLevelHigh, "High risk – hedging strongly recommended"
	case varPct > 10:
		return RiskLevelModerate, "Moderate risk – consider hedging"
	default:
		return RiskLevelLow, "Low risk – selective hedging"
	}
}
