package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/hedgeflow/internal/domain"
)

// AssetExposure is one asset's input to portfolio aggregation
type AssetExposure struct {
	Name          string  `json:"name"`
	ExposureValue float64 `json:"exposure_value"`
	Volatility    float64 `json:"volatility"`
}

// AssetRisk is one asset's share of portfolio risk
type AssetRisk struct {
	Name            string  `json:"name"`
	ExposureValue   float64 `json:"exposure_value"`
	Weight          float64 `json:"weight"`
	Volatility      float64 `json:"volatility"`
	VarianceTerm    float64 `json:"variance_term"`    // (w × σ)²
	ContributionPct float64 `json:"contribution_pct"` // VarianceTerm / portfolio variance × 100
}

// CovarianceTerm is the cross term of one unordered asset pair
type CovarianceTerm struct {
	AssetA      string  `json:"asset_a"`
	AssetB      string  `json:"asset_b"`
	Correlation float64 `json:"correlation"`
	Term        float64 `json:"term"` // 2 × wa × wb × ρ × σa × σb
}

// PortfolioRiskResult holds the correlated variance breakdown of a multi-asset exposure
type PortfolioRiskResult struct {
	Assets                 []AssetRisk      `json:"assets"`
	Covariances            []CovarianceTerm `json:"covariances"`
	TotalExposure          float64          `json:"total_exposure"`
	PortfolioVariance      float64          `json:"portfolio_variance"`
	PortfolioVolatility    float64          `json:"portfolio_volatility"`
	WeightedVolatility     float64          `json:"weighted_volatility"` // Σ w × σ, the undiversified volatility
	DiversificationBenefit float64          `json:"diversification_benefit"`
}

// Correlations holds pairwise correlations keyed "a-b". Lookups are order-insensitive.
type Correlations map[string]float64

// PairKey builds the correlation key for two assets
func PairKey(a, b string) string {
	return a + "-" + b
}

// Get returns the correlation for a pair regardless of key order
func (c Correlations) Get(a, b string) (float64, bool) {
	if v, ok := c[PairKey(a, b)]; ok {
		return v, true
	}
	v, ok := c[PairKey(b, a)]
	return v, ok
}

// DefaultCorrelations returns the default cross-category correlations.
// Fuel and freight rates move together; currency is treated as independent.
func DefaultCorrelations() Correlations {
	return Correlations{
		PairKey(string(domain.CategoryFuel), string(domain.CategoryCurrency)):    0.0,
		PairKey(string(domain.CategoryFuel), string(domain.CategoryFreight)):     0.3,
		PairKey(string(domain.CategoryCurrency), string(domain.CategoryFreight)): 0.0,
	}
}

// PortfolioRiskAggregator combines per-asset exposures into portfolio variance
type PortfolioRiskAggregator struct{}

// NewPortfolioRiskAggregator creates a new portfolio risk aggregator
func NewPortfolioRiskAggregator() *PortfolioRiskAggregator {
	return &PortfolioRiskAggregator{}
}

// Aggregate computes portfolio variance wᵀΣw with Σij = ρij σi σj.
//
// Correlations overlay the defaults; pairs found in neither are uncorrelated.
// Zero total exposure returns a zero-risk result.
func (a *PortfolioRiskAggregator) Aggregate(assets []AssetExposure, correlations Correlations) (PortfolioRiskResult, error) {
	if err := validateAssets(assets); err != nil {
		return PortfolioRiskResult{}, err
	}

	for k, v := range correlations {
		if math.IsNaN(v) || v < -1 || v > 1 {
			return PortfolioRiskResult{}, fmt.Errorf("%w: correlation %s must be within [-1, 1], got %v", domain.ErrInvalidInput, k, v)
		}
	}
	defaults := DefaultCorrelations()
	rhoFor := func(x, y string) float64 {
		if v, ok := correlations.Get(x, y); ok {
			return v
		}
		v, _ := defaults.Get(x, y)
		return v
	}

	n := len(assets)
	exposures := make([]float64, n)
	vols := make([]float64, n)
	for i, asset := range assets {
		exposures[i] = asset.ExposureValue
		vols[i] = asset.Volatility
	}

	total := floats.Sum(exposures)
	if math.IsInf(total, 0) {
		return PortfolioRiskResult{}, fmt.Errorf("%w: total exposure overflows", domain.ErrInvalidInput)
	}
	result := PortfolioRiskResult{
		Assets:        make([]AssetRisk, n),
		Covariances:   make([]CovarianceTerm, 0, n*(n-1)/2),
		TotalExposure: total,
	}

	if total == 0 {
		for i, asset := range assets {
			result.Assets[i] = AssetRisk{Name: asset.Name, Volatility: asset.Volatility}
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				result.Covariances = append(result.Covariances, CovarianceTerm{
					AssetA:      assets[i].Name,
					AssetB:      assets[j].Name,
					Correlation: rhoFor(assets[i].Name, assets[j].Name),
				})
			}
		}
		return result, nil
	}

	weights := make([]float64, n)
	floats.ScaleTo(weights, 1/total, exposures)

	sigma := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		sigma.SetSym(i, i, vols[i]*vols[i])
		for j := i + 1; j < n; j++ {
			sigma.SetSym(i, j, rhoFor(assets[i].Name, assets[j].Name)*vols[i]*vols[j])
		}
	}

	w := mat.NewVecDense(n, weights)
	variance := math.Max(0, mat.Inner(w, sigma, w))
	if math.IsInf(variance, 0) || math.IsNaN(variance) {
		return PortfolioRiskResult{}, fmt.Errorf("%w: portfolio variance is not finite", domain.ErrInvalidInput)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			result.Covariances = append(result.Covariances, CovarianceTerm{
				AssetA:      assets[i].Name,
				AssetB:      assets[j].Name,
				Correlation: rhoFor(assets[i].Name, assets[j].Name),
				Term:        2 * weights[i] * weights[j] * sigma.At(i, j),
			})
		}
	}

	weighted := floats.Dot(weights, vols)
	for i, asset := range assets {
		term := math.Pow(weights[i]*vols[i], 2)
		contribution := 0.0
		if variance > 0 {
			contribution = term / variance * 100
		}
		result.Assets[i] = AssetRisk{
			Name:            asset.Name,
			ExposureValue:   asset.ExposureValue,
			Weight:          weights[i],
			Volatility:      asset.Volatility,
			VarianceTerm:    term,
			ContributionPct: contribution,
		}
	}

	result.PortfolioVariance = variance
	result.PortfolioVolatility = math.Sqrt(variance)
	result.WeightedVolatility = weighted
	result.DiversificationBenefit = math.Max(0, weighted-result.PortfolioVolatility)

	return result, nil
}

func validateAssets(assets []AssetExposure) error {
	seen := make(map[string]bool, len(assets))
	for _, asset := range assets {
		if asset.Name == "" {
			return fmt.Errorf("%w: asset name is required", domain.ErrInvalidInput)
		}
		if seen[asset.Name] {
			return fmt.Errorf("%w: duplicate asset %q", domain.ErrInvalidInput, asset.Name)
		}
		seen[asset.Name] = true

		if math.IsNaN(asset.ExposureValue) || math.IsInf(asset.ExposureValue, 0) || asset.ExposureValue < 0 {
			return fmt.Errorf("%w: %s exposure must be a non-negative number, got %v", domain.ErrInvalidInput, asset.Name, asset.ExposureValue)
		}
		if math.IsNaN(asset.Volatility) || math.IsInf(asset.Volatility, 0) || asset.Volatility < 0 {
			return fmt.Errorf("%w: %s volatility must be a non-negative number, got %v", domain.ErrInvalidInput, asset.Name, asset.Volatility)
		}
	}
	return nil
}
