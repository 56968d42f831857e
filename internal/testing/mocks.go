package testing

import (
	"context"
	"sync"

	"github.com/aristath/hedgeflow/internal/domain"
)

// MockMarketDataProvider is a MarketDataProvider returning a fixed snapshot or error
type MockMarketDataProvider struct {
	mu       sync.RWMutex
	snapshot domain.MarketSnapshot
	err      error
	calls    int
}

// NewMockMarketDataProvider creates a mock provider returning snapshot
func NewMockMarketDataProvider(snapshot domain.MarketSnapshot) *MockMarketDataProvider {
	return &MockMarketDataProvider{snapshot: snapshot}
}

// GetSnapshot implements domain.MarketDataProvider
func (m *MockMarketDataProvider) GetSnapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.MarketSnapshot{}, m.err
	}
	return m.snapshot, nil
}

// SetSnapshot replaces the snapshot returned by subsequent calls
func (m *MockMarketDataProvider) SetSnapshot(snapshot domain.MarketSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
}

// SetError makes subsequent calls fail with err
func (m *MockMarketDataProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times GetSnapshot was called
func (m *MockMarketDataProvider) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
