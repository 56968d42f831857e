// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Category represents a hedgeable risk category
type Category string

const (
	CategoryFuel     Category = "fuel"
	CategoryCurrency Category = "currency"
	CategoryFreight  Category = "freight"
)

// Categories lists every category in canonical order.
// Iteration over categories always follows this order so results are reproducible.
var Categories = []Category{CategoryFuel, CategoryCurrency, CategoryFreight}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryFuel, CategoryCurrency, CategoryFreight:
		return true
	}
	return false
}

// ParseCategory converts a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
	}
	return c, nil
}

// MarketRegime is the discrete market-condition classification supplied with a snapshot
type MarketRegime string

const (
	MarketRegimeNormal   MarketRegime = "normal"
	MarketRegimeElevated MarketRegime = "elevated"
	MarketRegimeCrisis   MarketRegime = "crisis"
)

// Valid reports whether r is a known market regime
func (r MarketRegime) Valid() bool {
	switch r {
	case MarketRegimeNormal, MarketRegimeElevated, MarketRegimeCrisis:
		return true
	}
	return false
}

// ParseMarketRegime converts a string into a MarketRegime. Empty input maps to normal.
func ParseMarketRegime(s string) (MarketRegime, error) {
	if s == "" {
		return MarketRegimeNormal, nil
	}
	r := MarketRegime(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown market regime %q", ErrInvalidInput, s)
	}
	return r, nil
}

// StrategyRegime is the two-state regime that drives target ratios and instrument mixes.
// Elevated market conditions use normal parameters.
type StrategyRegime string

const (
	StrategyRegimeNormal StrategyRegime = "normal"
	StrategyRegimeCrisis StrategyRegime = "crisis"
)

// Exposure is a single category exposure for one request
type Exposure struct {
	Category      Category `json:"category"`
	Quantity      float64  `json:"quantity"`       // Volume per month (gallons, currency units, vessel days)
	UnitPrice     float64  `json:"unit_price"`     // Price per unit in reporting currency
	HorizonMonths int      `json:"horizon_months"` // Number of months the exposure runs for
}

// NewExposure validates the inputs and builds an Exposure
func NewExposure(category Category, quantity, unitPrice float64, horizonMonths int) (Exposure, error) {
	e := Exposure{
		Category:      category,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		HorizonMonths: horizonMonths,
	}
	if err := e.Validate(); err != nil {
		return Exposure{}, err
	}
	return e, nil
}

// Validate checks the exposure invariants
func (e Exposure) Validate() error {
	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, e.Category)
	}
	if !isPositive(e.Quantity) {
		return fmt.Errorf("%w: %s quantity must be positive, got %v", ErrInvalidInput, e.Category, e.Quantity)
	}
	if !isPositive(e.UnitPrice) {
		return fmt.Errorf("%w: %s unit price must be positive, got %v", ErrInvalidInput, e.Category, e.UnitPrice)
	}
	if e.HorizonMonths < 1 {
		return fmt.Errorf("%w: %s horizon must be at least 1 month, got %d", ErrInvalidInput, e.Category, e.HorizonMonths)
	}
	return nil
}

// TotalUnits returns the quantity exposed over the whole horizon
func (e Exposure) TotalUnits() float64 {
	return e.Quantity * float64(e.HorizonMonths)
}

// TotalValue returns the total exposure value over the horizon
func (e Exposure) TotalValue() float64 {
	return e.TotalUnits() * e.UnitPrice
}

// HorizonDays converts the horizon into trading days (21 per month)
func (e Exposure) HorizonDays() int {
	return e.HorizonMonths * TradingDaysPerMonth
}

const (
	// TradingDaysPerYear is the annualization convention for volatility scaling
	TradingDaysPerYear = 252
	// TradingDaysPerMonth is TradingDaysPerYear / 12
	TradingDaysPerMonth = 21
)

// MarketSnapshot is the read-only market data consumed by the engine
type MarketSnapshot struct {
	AsOf                 time.Time            `json:"as_of"`
	SpotPrice            float64              `json:"spot_price"`
	AnnualizedVolatility float64              `json:"annualized_volatility"`
	FXSpotRate           float64              `json:"fx_spot_rate"`
	FreightDayRate       float64              `json:"freight_day_rate"`
	CrisisIndicators     []string             `json:"crisis_indicators"`
	Regime               MarketRegime         `json:"regime"`
	CategoryVolatility   map[Category]float64 `json:"category_volatility,omitempty"` // Optional per-category overrides
}

// Validate rejects snapshots with negative or non-finite numbers
func (s MarketSnapshot) Validate() error {
	fields := map[string]float64{
		"spot_price":            s.SpotPrice,
		"annualized_volatility": s.AnnualizedVolatility,
		"fx_spot_rate":          s.FXSpotRate,
		"freight_day_rate":      s.FreightDayRate,
	}
	for name, v := range fields {
		if !isNonNegative(v) {
			return fmt.Errorf("%w: snapshot %s must be a non-negative number, got %v", ErrInvalidInput, name, v)
		}
	}
	for cat, v := range s.CategoryVolatility {
		if !isNonNegative(v) {
			return fmt.Errorf("%w: snapshot %s volatility must be a non-negative number, got %v", ErrInvalidInput, cat, v)
		}
	}
	if s.Regime != "" && !s.Regime.Valid() {
		return fmt.Errorf("%w: unknown market regime %q", ErrInvalidInput, s.Regime)
	}
	return nil
}

// VolatilityFor returns the annualized volatility for a category,
// falling back to the headline volatility when no override is present
func (s MarketSnapshot) VolatilityFor(c Category) float64 {
	if v, ok := s.CategoryVolatility[c]; ok && v > 0 {
		return v
	}
	return s.AnnualizedVolatility
}

// ReferencePrice returns the market price used to price instruments for a category.
// Zero means the snapshot carries no price for that category.
func (s MarketSnapshot) ReferencePrice(c Category) float64 {
	switch c {
	case CategoryFuel:
		return s.SpotPrice
	case CategoryCurrency:
		return s.FXSpotRate
	case CategoryFreight:
		return s.FreightDayRate
	}
	return 0
}

// IsCrisis reports whether the snapshot itself declares a crisis
func (s MarketSnapshot) IsCrisis() bool {
	return s.Regime == MarketRegimeCrisis
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func isNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
