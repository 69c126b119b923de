package datasource

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
)

// Factory owns the adapter instances and dispatches fetch and unit
// normalization calls by source tag
type Factory struct {
	mu          sync.RWMutex
	adapters    map[string]Adapter
	unavailable map[string]error
}

// NewFactory creates an empty adapter factory
func NewFactory() *Factory {
	return &Factory{
		adapters:    make(map[string]Adapter),
		unavailable: make(map[string]error),
	}
}

// Register adds an adapter under its source tag. A later registration for the
// same tag replaces the earlier one.
func (f *Factory) Register(adapter Adapter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adapters[adapter.Source()] = adapter
}

// Initialize initializes every registered adapter concurrently. A failure
// marks that source unavailable and is logged; it never stops the other
// adapters from initializing.
func (f *Factory) Initialize() {
	f.mu.RLock()
	adapters := make(map[string]Adapter, len(f.adapters))
	for source, adapter := range f.adapters {
		adapters[source] = adapter
	}
	f.mu.RUnlock()

	var wg sync.WaitGroup
	for source, adapter := range adapters {
		wg.Add(1)
		go func(source string, adapter Adapter) {
			defer wg.Done()
			if err := adapter.Initialize(); err != nil {
				log.Printf("[factory] %s adapter unavailable: %v", source, err)
				f.mu.Lock()
				f.unavailable[source] = err
				f.mu.Unlock()
				return
			}
			f.mu.Lock()
			delete(f.unavailable, source)
			f.mu.Unlock()
			log.Printf("[factory] %s adapter ready", source)
		}(source, adapter)
	}
	wg.Wait()
}

// FetchData dispatches a fetch to the adapter registered for source
func (f *Factory) FetchData(ctx context.Context, source, indicatorName string) ([]Observation, error) {
	f.mu.RLock()
	adapter, ok := f.adapters[source]
	initErr := f.unavailable[source]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, source)
	}
	if initErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, source, initErr)
	}
	return adapter.FetchData(ctx, indicatorName)
}

// StandardizeUnit dispatches unit normalization to the adapter for source.
// Unknown sources pass the input through unchanged.
func (f *Factory) StandardizeUnit(source, input string) string {
	f.mu.RLock()
	adapter, ok := f.adapters[source]
	f.mu.RUnlock()

	if !ok {
		return input
	}
	return adapter.StandardizeUnit(input)
}

// Sources returns the registered source tags, sorted
func (f *Factory) Sources() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	sources := make([]string, 0, len(f.adapters))
	for source := range f.adapters {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// Available reports whether source has a registered adapter that initialized
func (f *Factory) Available(source string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, ok := f.adapters[source]; !ok {
		return false
	}
	return f.unavailable[source] == nil
}
