package domain

import (
	"context"
	"errors"
)

// ErrInvalidInput marks numeric or enum inputs rejected at a function boundary.
// Callers wrap it with context; HTTP handlers map it to 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrSnapshotUnavailable is returned by providers that have no market data to serve
var ErrSnapshotUnavailable = errors.New("market snapshot unavailable")

// MarketDataProvider supplies market snapshots.
// The engine never caches or retries snapshots; that is the provider's concern.
type MarketDataProvider interface {
	GetSnapshot(ctx context.Context) (MarketSnapshot, error)
}
