package scrape

import (
	"sync"
	"time"
)

// BreakerState is the circuit breaker state.
type BreakerState int

// Breaker states.
const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

// String returns the lowercase state name.
func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Breaker is a per-source circuit breaker. Consecutive failures reaching the
// threshold open the circuit; after the recovery timeout the next Allow call
// transitions to half-open, where a single success closes the circuit and a
// single failure reopens it. State is in-memory only: a restart resets every
// breaker to closed.
type Breaker struct {
	mu            sync.Mutex
	failures      int
	lastFailureAt time.Time
	state         BreakerState

	threshold       int
	recoveryTimeout time.Duration
	nowFunc         func() time.Time
}

// BreakerOption configures a Breaker.
type BreakerOption func(*Breaker)

// WithBreakerNowFunc overrides the time function for testing.
func WithBreakerNowFunc(f func() time.Time) BreakerOption {
	return func(b *Breaker) {
		b.nowFunc = f
	}
}

// NewBreaker creates a circuit breaker with the given consecutive-failure
// threshold and open-state recovery timeout.
func NewBreaker(threshold int, recoveryTimeout time.Duration, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		threshold:       threshold,
		recoveryTimeout: recoveryTimeout,
		nowFunc:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RecordSuccess resets the failure count and closes the circuit.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = BreakerClosed
}

// RecordFailure counts a failure. It returns true if the circuit is now open.
func (b *Breaker) RecordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailureAt = b.nowFunc()

	// A half-open probe failure reopens immediately.
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		b.state = BreakerOpen
		return true
	}
	return false
}

// Allow reports whether a request may be executed. An open circuit whose
// recovery timeout has elapsed transitions to half-open and allows one probe;
// there is no background timer, the transition is evaluated lazily here.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed, BreakerHalfOpen:
		return true
	case BreakerOpen:
		if b.nowFunc().Sub(b.lastFailureAt) >= b.recoveryTimeout {
			b.state = BreakerHalfOpen
			return true
		}
		return false
	}
	return true
}

// State returns the current breaker state without side effects.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
