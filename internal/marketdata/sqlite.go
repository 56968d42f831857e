package marketdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/database"
	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/market_regime"
	"github.com/aristath/hedgeflow/internal/utils"
	"github.com/aristath/hedgeflow/pkg/formulas"
)

// DefaultLookbackDays is how many closes per category the provider loads
const DefaultLookbackDays = 120

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// SQLiteProvider builds snapshots from the market database.
//
// The latest market_snapshots row supplies prices and any stored regime. Per-category
// volatility and crisis indicators are derived from daily_prices.
type SQLiteProvider struct {
	db           *sql.DB
	detector     *IndicatorDetector
	lookbackDays int
	log          zerolog.Logger
}

// NewSQLiteProvider creates a new SQLite-backed provider
func NewSQLiteProvider(db *sql.DB, detector *IndicatorDetector, log zerolog.Logger) *SQLiteProvider {
	if detector == nil {
		detector = NewIndicatorDetector()
	}
	lookback := DefaultLookbackDays
	if need := detector.MinHistory(); lookback < need {
		lookback = need
	}
	return &SQLiteProvider{
		db:           db,
		detector:     detector,
		lookbackDays: lookback,
		log:          log.With().Str("component", "sqlite_market_data").Logger(),
	}
}

// GetSnapshot implements domain.MarketDataProvider
func (p *SQLiteProvider) GetSnapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	defer utils.OperationTimer("build_market_snapshot", 2*time.Second, p.log)()

	snapshot, err := p.latestSnapshot(ctx)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	detected := []string{}
	for _, category := range domain.Categories {
		closes, err := p.closes(ctx, category)
		if err != nil {
			return domain.MarketSnapshot{}, err
		}
		if len(closes) < 3 {
			continue
		}

		vol := formulas.AnnualizedVolatility(formulas.CalculateReturns(closes))
		if vol > 0 {
			snapshot.CategoryVolatility[category] = vol
		}
		detected = append(detected, p.detector.Detect(category, closes)...)
	}

	if snapshot.AnnualizedVolatility == 0 {
		snapshot.AnnualizedVolatility = snapshot.CategoryVolatility[domain.CategoryFuel]
	}
	snapshot.CrisisIndicators = mergeIndicators(snapshot.CrisisIndicators, detected)

	if snapshot.Regime == "" {
		snapshot.Regime = market_regime.RegimeFromIndicators(snapshot.CrisisIndicators)
	}

	if err := snapshot.Validate(); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("stored market snapshot is invalid: %w", err)
	}

	p.log.Debug().
		Str("regime", string(snapshot.Regime)).
		Strs("indicators", snapshot.CrisisIndicators).
		Float64("volatility", snapshot.AnnualizedVolatility).
		Msg("Built market snapshot")

	return snapshot, nil
}

func (p *SQLiteProvider) latestSnapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	query := `SELECT as_of, spot_price, annualized_volatility, fx_spot_rate, freight_day_rate, crisis_indicators, regime
	          FROM market_snapshots
	          ORDER BY as_of DESC, id DESC
	          LIMIT 1`

	var asOf int64
	var indicators, regime string
	s := domain.MarketSnapshot{CategoryVolatility: map[domain.Category]float64{}}

	err := p.db.QueryRowContext(ctx, query).Scan(&asOf, &s.SpotPrice, &s.AnnualizedVolatility, &s.FXSpotRate, &s.FreightDayRate, &indicators, &regime)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: no rows in market_snapshots", domain.ErrSnapshotUnavailable)
	}
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("failed to load market snapshot: %w", err)
	}

	s.AsOf = time.Unix(asOf, 0).UTC()
	s.CrisisIndicators = utils.ParseList(indicators)
	if regime != "" {
		parsed, err := domain.ParseMarketRegime(regime)
		if err != nil {
			return domain.MarketSnapshot{}, fmt.Errorf("stored market snapshot is invalid: %w", err)
		}
		s.Regime = parsed
	}

	return s, nil
}

// closes returns up to lookbackDays closes for a category, oldest first
func (p *SQLiteProvider) closes(ctx context.Context, category domain.Category) ([]float64, error) {
	query := `SELECT close FROM daily_prices
	          WHERE category = ?
	          ORDER BY date DESC
	          LIMIT ?`

	rows, err := p.db.QueryContext(ctx, query, string(category), p.lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s prices: %w", category, err)
	}
	defer rows.Close()

	var desc []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan %s price: %w", category, err)
		}
		desc = append(desc, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	closes := make([]float64, len(desc))
	for i, c := range desc {
		closes[len(desc)-1-i] = c
	}
	return closes, nil
}

// SaveSnapshot stores a snapshot row. An empty regime is stored as empty so that
// GetSnapshot derives it from indicators.
func (p *SQLiteProvider) SaveSnapshot(ctx context.Context, s domain.MarketSnapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	asOf := s.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	query := `INSERT INTO market_snapshots
	          (as_of, spot_price, annualized_volatility, fx_spot_rate, freight_day_rate, crisis_indicators, regime)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := p.db.ExecContext(ctx, query, asOf.Unix(), s.SpotPrice, s.AnnualizedVolatility, s.FXSpotRate, s.FreightDayRate,
		utils.JoinList(s.CrisisIndicators), string(s.Regime))
	if err != nil {
		return fmt.Errorf("failed to save market snapshot: %w", err)
	}
	return nil
}

// AppendPrices upserts daily closes for a category in one transaction
func (p *SQLiteProvider) AppendPrices(ctx context.Context, category domain.Category, points []PricePoint) error {
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, category)
	}
	for _, pt := range points {
		if math.IsNaN(pt.Close) || math.IsInf(pt.Close, 0) || pt.Close <= 0 || pt.Date.IsZero() {
			return fmt.Errorf("%w: price points need a date and a positive close", domain.ErrInvalidInput)
		}
	}

	return database.WithTransaction(p.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO daily_prices (category, date, close) VALUES (?, ?, ?)
		                                     ON CONFLICT(category, date) DO UPDATE SET close = excluded.close`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, pt := range points {
			day := pt.Date.UTC().Truncate(24 * time.Hour)
			if _, err := stmt.ExecContext(ctx, string(category), day.Unix(), pt.Close); err != nil {
				return fmt.Errorf("failed to store %s close for %s: %w", category, day.Format("2006-01-02"), err)
			}
		}
		return nil
	})
}

func mergeIndicators(stored, detected []string) []string {
	seen := make(map[string]bool, len(stored)+len(detected))
	merged := make([]string, 0, len(stored)+len(detected))
	for _, list := range [][]string{stored, detected} {
		for _, ind := range list {
			if ind == "" || seen[ind] {
				continue
			}
			seen[ind] = true
			merged = append(merged, ind)
		}
	}
	return merged
}
