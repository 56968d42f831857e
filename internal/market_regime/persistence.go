package market_regime

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/utils"
)

// RegimeHistory stores regime decisions in the regime_history table
type RegimeHistory struct {
	db  *sql.DB
	log zerolog.Logger
}

// RegimeHistoryEntry is a single recorded decision
type RegimeHistoryEntry struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Decision
}

// NewRegimeHistory creates a new regime history store
func NewRegimeHistory(db *sql.DB, log zerolog.Logger) *RegimeHistory {
	return &RegimeHistory{
		db:  db,
		log: log.With().Str("component", "regime_history").Logger(),
	}
}

// Record appends a decision
func (h *RegimeHistory) Record(decision Decision, at time.Time) (int64, error) {
	query := `INSERT INTO regime_history
	          (recorded_at, market_regime, strategy_regime, crisis_override, crisis_indicators)
	          VALUES (?, ?, ?, ?, ?)`

	override := 0
	if decision.CrisisOverride {
		override = 1
	}

	res, err := h.db.Exec(query, at.Unix(), string(decision.MarketRegime), string(decision.StrategyRegime), override, decision.IndicatorList())
	if err != nil {
		return 0, fmt.Errorf("failed to record regime decision: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read regime history id: %w", err)
	}

	h.log.Debug().
		Int64("id", id).
		Str("market_regime", string(decision.MarketRegime)).
		Str("strategy_regime", string(decision.StrategyRegime)).
		Msg("Recorded regime decision")

	return id, nil
}

// Latest returns the most recent decision; ok is false when nothing is recorded
func (h *RegimeHistory) Latest() (RegimeHistoryEntry, bool, error) {
	entries, err := h.Recent(1)
	if err != nil {
		return RegimeHistoryEntry{}, false, err
	}
	if len(entries) == 0 {
		return RegimeHistoryEntry{}, false, nil
	}
	return entries[0], true, nil
}

// Recent returns up to limit decisions, newest first
func (h *RegimeHistory) Recent(limit int) ([]RegimeHistoryEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: history limit must be positive, got %d", domain.ErrInvalidInput, limit)
	}

	query := `SELECT id, recorded_at, market_regime, strategy_regime, crisis_override, crisis_indicators
	          FROM regime_history
	          ORDER BY id DESC
	          LIMIT ?`

	rows, err := h.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query regime history: %w", err)
	}
	defer rows.Close()

	entries := make([]RegimeHistoryEntry, 0, limit)
	for rows.Next() {
		var entry RegimeHistoryEntry
		var recordedAtUnix int64
		var market, strategy, indicators string
		var override int

		if err := rows.Scan(&entry.ID, &recordedAtUnix, &market, &strategy, &override, &indicators); err != nil {
			return nil, fmt.Errorf("failed to scan regime history: %w", err)
		}

		entry.RecordedAt = time.Unix(recordedAtUnix, 0).UTC()
		entry.MarketRegime = domain.MarketRegime(market)
		entry.StrategyRegime = domain.StrategyRegime(strategy)
		entry.CrisisOverride = override == 1
		entry.CrisisIndicators = utils.ParseList(indicators)

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
