package hedging

import (
	"github.com/aristath/hedgeflow/internal/domain"
)

// InstrumentTemplate describes an instrument before pricing.
// Strikes are expressed as multiples of the reference price.
type InstrumentTemplate struct {
	Name        string
	Kind        InstrumentKind
	CapacityPct float64 // Maximum coverage as a share of the exposure's total units
	FeeRate     float64 // Swaps: flat fee per unit; time charters: premium over the day rate
	PutStrike   float64 // Put options and collar floors
	CallStrike  float64 // Call options and collar caps
}

// RegimeParams is the per-category configuration for one strategy regime
type RegimeParams struct {
	TargetRatio float64
	Instruments []InstrumentTemplate
}

// RegimeKey identifies a table entry
type RegimeKey struct {
	Category domain.Category
	Regime   domain.StrategyRegime
}

// RegimeTable maps (category, regime) to target ratios and instrument mixes.
// Adding a regime or category is a table edit.
type RegimeTable map[RegimeKey]RegimeParams

// Lookup returns the parameters for a category and regime
func (t RegimeTable) Lookup(category domain.Category, regime domain.StrategyRegime) (RegimeParams, bool) {
	params, ok := t[RegimeKey{Category: category, Regime: regime}]
	return params, ok
}

// DefaultRegimeTable returns the production parameter table.
//
// Crisis raises fuel and freight coverage but lowers the currency target:
// in a crisis the currency book keeps more optionality instead of locking in forwards.
func DefaultRegimeTable() RegimeTable {
	return RegimeTable{
		{domain.CategoryFuel, domain.StrategyRegimeNormal}: {
			TargetRatio: 0.60,
			Instruments: []InstrumentTemplate{
				{Name: "Fuel Futures", Kind: KindFutures, CapacityPct: 0.40},
				{Name: "Fuel Swap", Kind: KindSwap, CapacityPct: 0.30, FeeRate: 0.015},
				{Name: "Fuel Call Option", Kind: KindCallOption, CapacityPct: 0.20, CallStrike: 1.05},
				{Name: "Fuel Collar", Kind: KindCollar, CapacityPct: 0.15, PutStrike: 0.95, CallStrike: 1.10},
			},
		},
		{domain.CategoryFuel, domain.StrategyRegimeCrisis}: {
			TargetRatio: 0.80,
			Instruments: []InstrumentTemplate{
				{Name: "Fuel Futures", Kind: KindFutures, CapacityPct: 0.50},
				{Name: "Fuel Swap", Kind: KindSwap, CapacityPct: 0.40, FeeRate: 0.025},
				{Name: "Fuel Call Option", Kind: KindCallOption, CapacityPct: 0.30, CallStrike: 1.10},
				{Name: "Fuel Collar", Kind: KindCollar, CapacityPct: 0.25, PutStrike: 0.90, CallStrike: 1.15},
			},
		},
		{domain.CategoryCurrency, domain.StrategyRegimeNormal}: {
			TargetRatio: 0.70,
			Instruments: []InstrumentTemplate{
				{Name: "FX Forward", Kind: KindForward, CapacityPct: 0.60},
				{Name: "FX Futures", Kind: KindFutures, CapacityPct: 0.30},
				{Name: "FX Put Option", Kind: KindPutOption, CapacityPct: 0.20, PutStrike: 0.98},
			},
		},
		{domain.CategoryCurrency, domain.StrategyRegimeCrisis}: {
			TargetRatio: 0.55,
			Instruments: []InstrumentTemplate{
				{Name: "FX Forward", Kind: KindForward, CapacityPct: 0.40},
				{Name: "FX Put Option", Kind: KindPutOption, CapacityPct: 0.30, PutStrike: 0.95},
				{Name: "FX Collar", Kind: KindCollar, CapacityPct: 0.20, PutStrike: 0.95, CallStrike: 1.05},
				{Name: "FX Futures", Kind: KindFutures, CapacityPct: 0.20},
			},
		},
		{domain.CategoryFreight, domain.StrategyRegimeNormal}: {
			TargetRatio: 0.50,
			Instruments: []InstrumentTemplate{
				{Name: "Time Charter", Kind: KindTimeCharter, CapacityPct: 0.35, FeeRate: 0.05},
				{Name: "Freight Forward Agreement", Kind: KindForward, CapacityPct: 0.30},
			},
		},
		{domain.CategoryFreight, domain.StrategyRegimeCrisis}: {
			TargetRatio: 0.70,
			Instruments: []InstrumentTemplate{
				{Name: "Time Charter", Kind: KindTimeCharter, CapacityPct: 0.50, FeeRate: 0.08},
				{Name: "Freight Forward Agreement", Kind: KindForward, CapacityPct: 0.30},
				{Name: "Freight Call Option", Kind: KindCallOption, CapacityPct: 0.20, CallStrike: 1.10},
			},
		},
	}
}
