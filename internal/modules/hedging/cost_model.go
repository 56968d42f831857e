package hedging

import (
	"fmt"
	"math"

	"github.com/aristath/hedgeflow/internal/domain"
)

// Pricing constants.
//
// TimeValueShapeFactor and CollarCaptureRate are fixed calibration constants, not
// outputs of a pricing model. They scale option time value and the share of the
// short call premium credited against a collar's long put.
const (
	FuturesMarginRate     = 0.02   // Initial margin as a share of price
	ForwardMarkupPerMonth = 0.0005 // Forward points per month of tenor, as a share of price
	TimeValueShapeFactor  = 0.4
	CollarCaptureRate     = 0.8
)

// InstrumentCostModel prices the instrument catalog of a category under a regime.
// It has no state beyond its table and is safe for concurrent use.
type InstrumentCostModel struct {
	table RegimeTable
}

// NewInstrumentCostModel creates a cost model over the given regime table
func NewInstrumentCostModel(table RegimeTable) *InstrumentCostModel {
	return &InstrumentCostModel{table: table}
}

// PricingInputs are the market inputs used to price one category's catalog
type PricingInputs struct {
	Price          float64 // Reference price per unit
	Volatility     float64 // Annualized
	DurationMonths int
	TotalUnits     float64 // Exposure units the capacities are a share of
}

// InputsFor derives pricing inputs from an exposure and a snapshot.
// The snapshot's market price is used when present, else the exposure's own unit price.
func InputsFor(exposure domain.Exposure, snapshot domain.MarketSnapshot) PricingInputs {
	price := snapshot.ReferencePrice(exposure.Category)
	if price <= 0 {
		price = exposure.UnitPrice
	}
	return PricingInputs{
		Price:          price,
		Volatility:     snapshot.VolatilityFor(exposure.Category),
		DurationMonths: exposure.HorizonMonths,
		TotalUnits:     exposure.TotalUnits(),
	}
}

// Catalog prices the instrument mix for an exposure under a regime.
// Instruments keep the table's order, which is the allocator's tie-break order.
func (m *InstrumentCostModel) Catalog(exposure domain.Exposure, snapshot domain.MarketSnapshot, regime domain.StrategyRegime) ([]HedgeInstrumentSpec, error) {
	if err := exposure.Validate(); err != nil {
		return nil, err
	}
	params, ok := m.table.Lookup(exposure.Category, regime)
	if !ok {
		return nil, fmt.Errorf("no instrument catalog for %s in %s regime", exposure.Category, regime)
	}
	return m.Price(params.Instruments, InputsFor(exposure, snapshot))
}

// Price prices a list of templates against explicit inputs
func (m *InstrumentCostModel) Price(templates []InstrumentTemplate, in PricingInputs) ([]HedgeInstrumentSpec, error) {
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price <= 0 {
		return nil, fmt.Errorf("%w: reference price must be positive, got %v", domain.ErrInvalidInput, in.Price)
	}
	if math.IsNaN(in.Volatility) || math.IsInf(in.Volatility, 0) || in.Volatility < 0 {
		return nil, fmt.Errorf("%w: volatility must be non-negative, got %v", domain.ErrInvalidInput, in.Volatility)
	}

	years := float64(in.DurationMonths) / 12
	specs := make([]HedgeInstrumentSpec, 0, len(templates))

	for _, tmpl := range templates {
		spec := HedgeInstrumentSpec{
			Name:              tmpl.Name,
			Kind:              tmpl.Kind,
			ProtectionPerUnit: in.Price,
			MaxCapacityUnits:  tmpl.CapacityPct * in.TotalUnits,
			DurationMonths:    in.DurationMonths,
		}

		switch tmpl.Kind {
		case KindFutures:
			spec.CostPerUnit = in.Price * FuturesMarginRate
		case KindSwap, KindTimeCharter:
			spec.CostPerUnit = in.Price * tmpl.FeeRate
		case KindPutOption:
			spec.Strike = in.Price * tmpl.PutStrike
			spec.CostPerUnit = OptionPremium(KindPutOption, in.Price, spec.Strike, in.Volatility, years)
		case KindCallOption:
			spec.Strike = in.Price * tmpl.CallStrike
			spec.CostPerUnit = OptionPremium(KindCallOption, in.Price, spec.Strike, in.Volatility, years)
		case KindCollar:
			spec.Strike = in.Price * tmpl.PutStrike
			spec.CapStrike = in.Price * tmpl.CallStrike
			put := OptionPremium(KindPutOption, in.Price, spec.Strike, in.Volatility, years)
			call := OptionPremium(KindCallOption, in.Price, spec.CapStrike, in.Volatility, years)
			spec.CostPerUnit = CollarNetCost(put, call)
		case KindForward:
			spec.CostPerUnit = ForwardCost(in.Price, in.DurationMonths)
		default:
			return nil, fmt.Errorf("%w: cannot price instrument kind %q", domain.ErrInvalidInput, tmpl.Kind)
		}

		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// OptionPremium approximates an option premium as intrinsic value plus
// spot × vol × sqrt(T) × TimeValueShapeFactor. This is not a full pricing model.
func OptionPremium(kind InstrumentKind, spot, strike, volatility, years float64) float64 {
	intrinsic := 0.0
	switch kind {
	case KindPutOption:
		intrinsic = math.Max(strike-spot, 0)
	case KindCallOption:
		intrinsic = math.Max(spot-strike, 0)
	}
	timeValue := spot * volatility * math.Sqrt(math.Max(years, 0)) * TimeValueShapeFactor
	return intrinsic + timeValue
}

// CollarNetCost nets the long put against the captured share of the short call premium
func CollarNetCost(putPremium, callPremium float64) float64 {
	return math.Max(putPremium-CollarCaptureRate*callPremium, 0)
}

// ForwardCost is the forward-points markup per unit; there is no upfront premium
func ForwardCost(price float64, months int) float64 {
	return price * ForwardMarkupPerMonth * float64(months)
}
