package datasource

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between calls per source. Each
// source has an independent gate; callers for the same source queue in
// arrival order, callers for different sources never interact.
type RateLimiter struct {
	mu    sync.Mutex
	gates map[string]*sourceGate
}

// sourceGate serializes callers for one source. The slot channel holds a
// single token; blocked receivers are woken in FIFO order, and next is only
// touched while holding the token.
type sourceGate struct {
	interval time.Duration
	slot     chan struct{}
	next     time.Time
}

// NewRateLimiter creates a limiter with the given per-source minimum intervals
func NewRateLimiter(intervals map[string]time.Duration) *RateLimiter {
	rl := &RateLimiter{gates: make(map[string]*sourceGate)}
	for source, interval := range intervals {
		rl.SetInterval(source, interval)
	}
	return rl
}

// SetInterval registers or replaces the minimum interval for a source
func (rl *RateLimiter) SetInterval(source string, interval time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if interval <= 0 {
		delete(rl.gates, source)
		return
	}
	gate := &sourceGate{
		interval: interval,
		slot:     make(chan struct{}, 1),
	}
	gate.slot <- struct{}{}
	rl.gates[source] = gate
}

// Interval returns the configured minimum interval for a source, zero when
// the source is unthrottled
func (rl *RateLimiter) Interval(source string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if gate, ok := rl.gates[source]; ok {
		return gate.interval
	}
	return 0
}

// Acquire blocks until the source's minimum interval has elapsed since the
// previous granted call. Sources without a configured interval pass
// immediately. Returns the context error if ctx ends while waiting.
func (rl *RateLimiter) Acquire(ctx context.Context, source string) error {
	rl.mu.Lock()
	gate, ok := rl.gates[source]
	rl.mu.Unlock()
	if !ok {
		return ctx.Err()
	}

	select {
	case <-gate.slot:
	case <-ctx.Done():
		return ctx.Err()
	}

	if wait := time.Until(gate.next); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			gate.slot <- struct{}{}
			return ctx.Err()
		}
	}

	gate.next = time.Now().Add(gate.interval)
	gate.slot <- struct{}{}
	return nil
}
