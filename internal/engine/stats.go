package engine

import (
	"sync"
	"time"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

const maxRecentErrors = 100

// Tracker accumulates monitor activity counters. Safe for concurrent use;
// every concurrent source check reports into the same tracker.
type Tracker struct {
	mu               sync.Mutex
	running          bool
	totalChecks      int
	successfulChecks int
	failedChecks     int
	productsFound    int
	alertsSent       int
	lastCheck        *time.Time

	// recentErrors is a bounded ring; next points at the slot the next
	// error overwrites once the ring is full.
	recentErrors []string
	next         int
	totalErrors  int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// SetRunning flips the running flag.
func (t *Tracker) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = running
}

// RecordCheck counts one completed (source, category) check.
func (t *Tracker) RecordCheck(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalChecks++
	if ok {
		t.successfulChecks++
	} else {
		t.failedChecks++
	}
}

// RecordProducts counts listings found by one check.
func (t *Tracker) RecordProducts(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.productsFound += n
}

// RecordAlert counts one successfully delivered alert.
func (t *Tracker) RecordAlert() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alertsSent++
}

// RecordError appends an error message to the bounded recent-error ring.
func (t *Tracker) RecordError(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalErrors++
	if len(t.recentErrors) < maxRecentErrors {
		t.recentErrors = append(t.recentErrors, msg)
		return
	}
	t.recentErrors[t.next] = msg
	t.next = (t.next + 1) % maxRecentErrors
}

// CycleFinished stamps the completion time of a check cycle.
func (t *Tracker) CycleFinished(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastCheck = &at
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() domain.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := domain.Stats{
		Running:          t.running,
		TotalChecks:      t.totalChecks,
		SuccessfulChecks: t.successfulChecks,
		FailedChecks:     t.failedChecks,
		ProductsFound:    t.productsFound,
		AlertsSent:       t.alertsSent,
		TotalErrors:      t.totalErrors,
	}
	if t.lastCheck != nil {
		lc := *t.lastCheck
		s.LastCheck = &lc
	}

	// oldest first
	if len(t.recentErrors) == maxRecentErrors {
		s.RecentErrors = append(s.RecentErrors, t.recentErrors[t.next:]...)
		s.RecentErrors = append(s.RecentErrors, t.recentErrors[:t.next]...)
	} else {
		s.RecentErrors = append(s.RecentErrors, t.recentErrors...)
	}
	return s
}
