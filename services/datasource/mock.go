package datasource

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter is a configurable in-memory adapter for tests and local
// development without provider credentials.
type MockAdapter struct {
	Tag      string
	InitErr  error
	FetchErr error
	Series   map[string][]Observation
	Units    map[string]string

	mu         sync.Mutex
	fetchCalls int
}

func (m *MockAdapter) Source() string {
	if m.Tag == "" {
		return "MOCK"
	}
	return m.Tag
}

func (m *MockAdapter) Initialize() error {
	return m.InitErr
}

func (m *MockAdapter) StandardizeUnit(input string) string {
	return normalizeUnit(m.Units, input)
}

func (m *MockAdapter) FetchData(_ context.Context, indicatorName string) ([]Observation, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	series, ok := m.Series[indicatorName]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no indicator %q", ErrConfigNotFound, m.Source(), indicatorName)
	}
	out := make([]Observation, len(series))
	copy(out, series)
	return out, nil
}

// FetchCalls reports how many times FetchData has been invoked
func (m *MockAdapter) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}
