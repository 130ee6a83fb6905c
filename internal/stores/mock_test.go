package stores

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sjsage522/freegameworker/helpers"
	"sjsage522/freegameworker/internal/game"
	"sjsage522/freegameworker/services/metrics"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	mu    sync.Mutex
	cache map[string][]byte
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, errors.New("cache miss")
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

// mockChecker answers existence checks from a fixed set
type mockChecker struct {
	known map[game.PartialGame]bool
	err   error
	calls []game.PartialGame
}

func newMockChecker(known ...game.PartialGame) *mockChecker {
	m := &mockChecker{known: make(map[game.PartialGame]bool)}
	for _, k := range known {
		m.known[k] = true
	}
	return m
}

func (m *mockChecker) Exists(_ context.Context, key game.PartialGame) (bool, error) {
	m.calls = append(m.calls, key)
	if m.err != nil {
		return false, m.err
	}
	return m.known[key], nil
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	}
}

func newTestFetcher() *helpers.Fetcher {
	return helpers.NewFetcher(&http.Client{Timeout: 5 * time.Second})
}

// countingPacer records how often it was invoked
type countingPacer struct {
	mu    sync.Mutex
	calls int
}

func (p *countingPacer) pace(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
}

func (p *countingPacer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// counterValue reads a freegames_ counter whose labels match the given
// name/value pairs, or 0 when nothing was recorded
func counterValue(t *testing.T, m *metrics.Metrics, name string, labels ...string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "freegames_"+name {
			continue
		}
	metric:
		for _, metric := range family.GetMetric() {
			got := map[string]string{}
			for _, pair := range metric.GetLabel() {
				got[pair.GetName()] = pair.GetValue()
			}
			for i := 0; i+1 < len(labels); i += 2 {
				if got[labels[i]] != labels[i+1] {
					continue metric
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}
