// Package hedging turns exposures and a market snapshot into priced hedge
// instruments, greedy multi-instrument allocations and regime-dependent strategies.
package hedging

import (
	"fmt"
	"math"

	"github.com/aristath/hedgeflow/internal/domain"
)

// InstrumentKind is the type of a hedge instrument
type InstrumentKind string

const (
	KindFutures     InstrumentKind = "futures"
	KindSwap        InstrumentKind = "swap"
	KindPutOption   InstrumentKind = "put_option"
	KindCallOption  InstrumentKind = "call_option"
	KindCollar      InstrumentKind = "collar"
	KindForward     InstrumentKind = "forward"
	KindTimeCharter InstrumentKind = "time_charter"
)

// Valid reports whether k is a known instrument kind
func (k InstrumentKind) Valid() bool {
	switch k {
	case KindFutures, KindSwap, KindPutOption, KindCallOption, KindCollar, KindForward, KindTimeCharter:
		return true
	}
	return false
}

// HedgeInstrumentSpec is one priced instrument offered to the allocator
type HedgeInstrumentSpec struct {
	Name              string         `json:"name"`
	Kind              InstrumentKind `json:"kind"`
	CostPerUnit       float64        `json:"cost_per_unit"`
	ProtectionPerUnit float64        `json:"protection_per_unit"`
	MaxCapacityUnits  float64        `json:"max_capacity_units"`
	DurationMonths    int            `json:"duration_months"`
	Strike            float64        `json:"strike,omitempty"`     // Options: strike; collars: floor strike
	CapStrike         float64        `json:"cap_strike,omitempty"` // Collars only
}

// Validate rejects negative prices or capacity and unknown kinds
func (s HedgeInstrumentSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: instrument name is required", domain.ErrInvalidInput)
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: instrument %s has unknown kind %q", domain.ErrInvalidInput, s.Name, s.Kind)
	}
	numbers := []struct {
		field string
		value float64
	}{
		{"cost_per_unit", s.CostPerUnit},
		{"protection_per_unit", s.ProtectionPerUnit},
		{"max_capacity_units", s.MaxCapacityUnits},
	}
	for _, n := range numbers {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) || n.value < 0 {
			return fmt.Errorf("%w: instrument %s %s must be a non-negative number, got %v", domain.ErrInvalidInput, s.Name, n.field, n.value)
		}
	}
	if s.DurationMonths < 0 {
		return fmt.Errorf("%w: instrument %s duration must not be negative", domain.ErrInvalidInput, s.Name)
	}
	return nil
}

// CostEffectiveness returns cost per unit of protection.
// Instruments without protection are not rankable and report +Inf.
func (s HedgeInstrumentSpec) CostEffectiveness() float64 {
	if s.ProtectionPerUnit <= 0 {
		return math.Inf(1)
	}
	return s.CostPerUnit / s.ProtectionPerUnit
}

// HedgePosition is a materialized allocation to one instrument
type HedgePosition struct {
	Instrument        HedgeInstrumentSpec `json:"instrument"`
	CoverageUnits     float64             `json:"coverage_units"`
	Cost              float64             `json:"cost"`
	Protection        float64             `json:"protection"`
	CostEffectiveness float64             `json:"cost_effectiveness"`
}

// capacityTolerance absorbs float rounding when units are derived from capacity arithmetic
const capacityTolerance = 1e-9

// NewHedgePosition builds a position; units must lie within [0, capacity]
func NewHedgePosition(instrument HedgeInstrumentSpec, units float64) (HedgePosition, error) {
	if err := instrument.Validate(); err != nil {
		return HedgePosition{}, err
	}
	if math.IsNaN(units) || units < 0 {
		return HedgePosition{}, fmt.Errorf("%w: coverage units must be non-negative, got %v", domain.ErrInvalidInput, units)
	}
	if units > instrument.MaxCapacityUnits*(1+capacityTolerance) {
		return HedgePosition{}, fmt.Errorf("%w: %v units exceed %s capacity of %v", domain.ErrInvalidInput, units, instrument.Name, instrument.MaxCapacityUnits)
	}
	units = math.Min(units, instrument.MaxCapacityUnits)

	return HedgePosition{
		Instrument:        instrument,
		CoverageUnits:     units,
		Cost:              units * instrument.CostPerUnit,
		Protection:        units * instrument.ProtectionPerUnit,
		CostEffectiveness: instrument.CostEffectiveness(),
	}, nil
}

// HedgePortfolio is the allocation result for one exposure.
// HedgeRatio below TargetRatio is an expected outcome under capacity or budget limits.
type HedgePortfolio struct {
	Positions              []HedgePosition       `json:"positions"`
	TotalExposure          float64               `json:"total_exposure"`
	TargetRatio            float64               `json:"target_ratio"`
	TargetProtection       float64               `json:"target_protection"`
	HedgedAmount           float64               `json:"hedged_amount"`
	HedgeRatio             float64               `json:"hedge_ratio"`
	TotalCost              float64               `json:"total_cost"`
	ExpectedProtection     float64               `json:"expected_protection"`
	CoverageUnits          float64               `json:"coverage_units"`
	Shortfall              float64               `json:"shortfall"`
	OptimizationEfficiency float64               `json:"optimization_efficiency"` // HedgeRatio / TargetRatio × 100
	Regime                 domain.StrategyRegime `json:"regime"`
}

// FullyHedged reports whether the target ratio was reached
func (p HedgePortfolio) FullyHedged() bool {
	return p.Shortfall <= p.TargetProtection*capacityTolerance
}
