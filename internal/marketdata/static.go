// Package marketdata provides MarketDataProvider implementations: a fixed snapshot
// from configuration and a SQLite-backed provider that derives volatility and
// crisis indicators from stored price history.
package marketdata

import (
	"context"
	"time"

	"github.com/aristath/hedgeflow/internal/domain"
)

// StaticProvider serves one configured snapshot
type StaticProvider struct {
	snapshot domain.MarketSnapshot
	now      func() time.Time
}

// NewStaticProvider validates and wraps a snapshot
func NewStaticProvider(snapshot domain.MarketSnapshot) (*StaticProvider, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return &StaticProvider{snapshot: snapshot, now: time.Now}, nil
}

// GetSnapshot returns a copy of the configured snapshot stamped with the current time
// when it carries none.
func (p *StaticProvider) GetSnapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.MarketSnapshot{}, err
	}

	s := p.snapshot
	s.CrisisIndicators = append([]string{}, p.snapshot.CrisisIndicators...)
	if p.snapshot.CategoryVolatility != nil {
		s.CategoryVolatility = make(map[domain.Category]float64, len(p.snapshot.CategoryVolatility))
		for k, v := range p.snapshot.CategoryVolatility {
			s.CategoryVolatility[k] = v
		}
	}
	if s.Regime == "" {
		s.Regime = domain.MarketRegimeNormal
	}
	if s.AsOf.IsZero() {
		s.AsOf = p.now().UTC()
	}
	return s, nil
}
