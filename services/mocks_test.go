package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/malusev998/currency-converter"
)

type (
	MockFetcher struct {
		mock.Mock
	}

	MockStorage struct {
		mock.Mock
	}

	// staticFetcher serves fixed tables keyed by base currency.
	staticFetcher map[string]map[string]float64

	// gatedFetcher blocks each base until its gate is released.
	gatedFetcher struct {
		mutex sync.Mutex
		gates map[string]chan struct{}
		rates map[string]map[string]float64
	}
)

func (m *MockFetcher) Fetch(ctx context.Context, base string) (currency.RateTable, error) {
	args := m.Called(ctx, base)

	return args.Get(0).(currency.RateTable), args.Error(1)
}

func (m *MockStorage) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)

	return args.String(0), args.Error(1)
}

func (m *MockStorage) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)

	return args.Error(0)
}

func (m *MockStorage) GetStorageProviderName() string {
	return "MockStorage"
}

func (m *MockStorage) Migrate() error {
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}

func (s staticFetcher) Fetch(_ context.Context, base string) (currency.RateTable, error) {
	rates, ok := s[base]

	if !ok {
		return currency.RateTable{}, currency.ErrMalformedResponse
	}

	return currency.NewRateTable(base, rates), nil
}

func newGatedFetcher(rates map[string]map[string]float64) *gatedFetcher {
	gates := make(map[string]chan struct{}, len(rates))

	for base := range rates {
		gates[base] = make(chan struct{})
	}

	return &gatedFetcher{gates: gates, rates: rates}
}

func (g *gatedFetcher) release(base string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	close(g.gates[base])
}

func (g *gatedFetcher) Fetch(ctx context.Context, base string) (currency.RateTable, error) {
	g.mutex.Lock()
	gate := g.gates[base]
	g.mutex.Unlock()

	select {
	case <-gate:
	case <-ctx.Done():
		return currency.RateTable{}, ctx.Err()
	}

	return currency.NewRateTable(base, g.rates[base]), nil
}

// recorder collects every state a RateStore publishes.
type recorder struct {
	mutex  sync.Mutex
	states []currency.FetchState
}

func (r *recorder) record(state currency.FetchState) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.states = append(r.states, state)
}

func (r *recorder) statuses() []currency.Status {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	statuses := make([]currency.Status, 0, len(r.states))

	for _, s := range r.states {
		statuses = append(statuses, s.Status)
	}

	return statuses
}
