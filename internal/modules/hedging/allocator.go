package hedging

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/domain"
)

// AllocationRequest is the input to one greedy allocation
type AllocationRequest struct {
	ExposureValue float64
	TargetRatio   float64 // In (0, 1]
	Instruments   []HedgeInstrumentSpec
	BudgetLimit   *float64 // Maximum total cost; nil means unlimited
	MaxTotalUnits float64  // Cap on Σ coverage units across instruments; 0 means uncapped
	Regime        domain.StrategyRegime
}

// Allocator distributes a protection target across priced instruments.
//
// The algorithm is greedy: instruments are taken cheapest protection first and
// each is filled to the smaller of the remaining target, its capacity and what the
// remaining budget affords. It is not globally optimal.
type Allocator struct {
	log zerolog.Logger
}

// NewAllocator creates a new allocator
func NewAllocator(log zerolog.Logger) *Allocator {
	return &Allocator{
		log: log.With().Str("component", "hedge_allocator").Logger(),
	}
}

type rankedInstrument struct {
	spec  HedgeInstrumentSpec
	ratio float64
}

// RankInstruments orders instruments by cost per unit of protection, ascending.
// Instruments without protection are dropped; ties keep catalog order.
func RankInstruments(instruments []HedgeInstrumentSpec) []HedgeInstrumentSpec {
	ranked := rank(instruments)
	out := make([]HedgeInstrumentSpec, len(ranked))
	for i, r := range ranked {
		out[i] = r.spec
	}
	return out
}

func rank(instruments []HedgeInstrumentSpec) []rankedInstrument {
	ranked := make([]rankedInstrument, 0, len(instruments))
	for _, spec := range instruments {
		if spec.ProtectionPerUnit <= 0 {
			continue
		}
		ranked = append(ranked, rankedInstrument{spec: spec, ratio: spec.CostEffectiveness()})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ratio < ranked[j].ratio
	})
	return ranked
}

// Allocate builds a HedgePortfolio for the request.
// Falling short of the target is reported through Shortfall and
// OptimizationEfficiency, never as an error.
func (a *Allocator) Allocate(req AllocationRequest) (HedgePortfolio, error) {
	if err := validateRequest(req); err != nil {
		return HedgePortfolio{}, err
	}

	targetProtection := req.ExposureValue * req.TargetRatio
	remaining := targetProtection
	epsilon := targetProtection * 1e-12

	portfolio := HedgePortfolio{
		Positions:        []HedgePosition{},
		TotalExposure:    req.ExposureValue,
		TargetRatio:      req.TargetRatio,
		TargetProtection: targetProtection,
		Regime:           req.Regime,
	}

	for _, r := range rank(req.Instruments) {
		if remaining <= epsilon {
			break
		}

		units := math.Min(remaining/r.spec.ProtectionPerUnit, r.spec.MaxCapacityUnits)

		if req.BudgetLimit != nil && r.spec.CostPerUnit > 0 {
			units = math.Min(units, (*req.BudgetLimit-portfolio.TotalCost)/r.spec.CostPerUnit)
		}
		if req.MaxTotalUnits > 0 {
			units = math.Min(units, req.MaxTotalUnits-portfolio.CoverageUnits)
		}
		if units <= 0 {
			continue
		}

		position, err := NewHedgePosition(r.spec, units)
		if err != nil {
			return HedgePortfolio{}, fmt.Errorf("failed to materialize %s position: %w", r.spec.Name, err)
		}

		portfolio.Positions = append(portfolio.Positions, position)
		portfolio.TotalCost += position.Cost
		portfolio.HedgedAmount += position.Protection
		portfolio.CoverageUnits += position.CoverageUnits
		remaining -= position.Protection
	}

	portfolio.ExpectedProtection = portfolio.HedgedAmount
	portfolio.HedgeRatio = portfolio.HedgedAmount / req.ExposureValue
	portfolio.OptimizationEfficiency = portfolio.HedgeRatio / req.TargetRatio * 100
	portfolio.Shortfall = math.Max(0, targetProtection-portfolio.HedgedAmount)

	if !portfolio.FullyHedged() {
		a.log.Debug().
			Float64("target_ratio", req.TargetRatio).
			Float64("achieved_ratio", portfolio.HedgeRatio).
			Float64("shortfall", portfolio.Shortfall).
			Msg("Allocation constrained below target")
	}

	return portfolio, nil
}

func validateRequest(req AllocationRequest) error {
	if math.IsNaN(req.ExposureValue) || math.IsInf(req.ExposureValue, 0) || req.ExposureValue <= 0 {
		return fmt.Errorf("%w: exposure value must be positive, got %v", domain.ErrInvalidInput, req.ExposureValue)
	}
	if math.IsNaN(req.TargetRatio) || req.TargetRatio <= 0 || req.TargetRatio > 1 {
		return fmt.Errorf("%w: target ratio must be within (0, 1], got %v", domain.ErrInvalidInput, req.TargetRatio)
	}
	if req.BudgetLimit != nil {
		if b := *req.BudgetLimit; math.IsNaN(b) || b < 0 {
			return fmt.Errorf("%w: budget limit must be non-negative, got %v", domain.ErrInvalidInput, b)
		}
	}
	if math.IsNaN(req.MaxTotalUnits) || req.MaxTotalUnits < 0 {
		return fmt.Errorf("%w: unit limit must be non-negative, got %v", domain.ErrInvalidInput, req.MaxTotalUnits)
	}
	for _, spec := range req.Instruments {
		if err := spec.Validate(); err != nil {
			return err
		}
	}
	return nil
}
