package scrape

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Limiter enforces a randomized minimum spacing between requests to one
// source. Each Wait blocks until uniform(min, max) has elapsed since the
// previous request to that source; the jitter varies per call so request
// timing does not form a fingerprintable pattern. This is deliberately not a
// token bucket: retries and first requests alike pass through the same gate.
type Limiter struct {
	mu       sync.Mutex
	last     time.Time
	min, max time.Duration

	nowFunc   func() time.Time
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithLimiterNowFunc overrides the time function for testing.
func WithLimiterNowFunc(f func() time.Time) LimiterOption {
	return func(l *Limiter) {
		l.nowFunc = f
	}
}

// WithLimiterSleepFunc overrides the sleep function for testing.
func WithLimiterSleepFunc(f func(ctx context.Context, d time.Duration) error) LimiterOption {
	return func(l *Limiter) {
		l.sleepFunc = f
	}
}

// NewLimiter creates a spacing gate with the given delay bounds.
func NewLimiter(min, max time.Duration, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		min:       min,
		max:       max,
		nowFunc:   time.Now,
		sleepFunc: sleepCtx,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until the randomized spacing since the last request has
// elapsed, or the context is canceled. The first call never blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.nowFunc()
	var wait time.Duration
	if !l.last.IsZero() {
		delay := l.randomDelay()
		if elapsed := now.Sub(l.last); elapsed < delay {
			wait = delay - elapsed
		}
	}
	l.last = now.Add(wait)
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	return l.sleepFunc(ctx, wait)
}

func (l *Limiter) randomDelay() time.Duration {
	if l.min >= l.max {
		return l.min
	}
	return l.min + time.Duration(rand.Int64N(int64(l.max-l.min)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
