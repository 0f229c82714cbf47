package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tcg-tools/restock-monitor/internal/metrics"
	"github.com/tcg-tools/restock-monitor/internal/scrape"
	"github.com/tcg-tools/restock-monitor/internal/store"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// watchedCategories is the set of categories every source is checked for.
var watchedCategories = []domain.Category{
	domain.CategoryPokemon,
	domain.CategoryOnePiece,
}

// Monitor owns the periodic check loop. Each cycle fans out one task per
// (source, category) pair, diffs every returned listing against stored
// state, and dispatches the resulting events. Sources never block each
// other; a failing source only marks its own check failed.
type Monitor struct {
	store      store.Store
	scrapers   []scrape.Scraper
	dispatcher *Dispatcher
	stats      *Tracker
	log        *slog.Logger

	checkInterval      time.Duration
	errorRetryInterval time.Duration
	historyRetention   time.Duration
	cleanupEveryCycles int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	cycles int
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithMonitorLogger sets a custom logger.
func WithMonitorLogger(l *slog.Logger) MonitorOption {
	return func(m *Monitor) { m.log = l }
}

// NewMonitor creates a monitor over the given scrapers.
func NewMonitor(
	s store.Store,
	scrapers []scrape.Scraper,
	dispatcher *Dispatcher,
	checkInterval time.Duration,
	errorRetryInterval time.Duration,
	historyRetention time.Duration,
	cleanupEveryCycles int,
	opts ...MonitorOption,
) *Monitor {
	m := &Monitor{
		store:              s,
		scrapers:           scrapers,
		dispatcher:         dispatcher,
		stats:              NewTracker(),
		log:                slog.Default(),
		checkInterval:      checkInterval,
		errorRetryInterval: errorRetryInterval,
		historyRetention:   historyRetention,
		cleanupEveryCycles: cleanupEveryCycles,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stats returns a snapshot of monitor activity.
func (m *Monitor) Stats() domain.Stats {
	return m.stats.Snapshot()
}

// breakerReporter is implemented by scrapers that expose their circuit
// breaker state.
type breakerReporter interface {
	BreakerState() scrape.BreakerState
}

// BreakerStates returns the circuit breaker state per source for scrapers
// that report one.
func (m *Monitor) BreakerStates() map[string]string {
	states := make(map[string]string)
	for _, s := range m.scrapers {
		if r, ok := s.(breakerReporter); ok {
			states[s.Source()] = r.BreakerState().String()
		}
	}
	return states
}

// Start launches the check loop. The first cycle runs immediately rather
// than waiting a full interval. Returns an error if already running.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return fmt.Errorf("monitor already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.stats.SetRunning(true)
	metrics.MonitorRunning.Set(1)

	go m.loop(loopCtx)

	m.log.Info("monitor started",
		"sources", len(m.scrapers), "check_interval", m.checkInterval)
	return nil
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	m.stats.SetRunning(false)
	metrics.MonitorRunning.Set(0)
	m.log.Info("monitor stopped")
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	for {
		interval := m.checkInterval
		if _, err := m.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.log.Error("check cycle failed", "error", err)
			m.stats.RecordError(err.Error())
			interval = m.errorRetryInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// RunOnce executes one full check cycle and returns the events it produced.
// Callable both from the loop and from the manual-check surface.
func (m *Monitor) RunOnce(ctx context.Context) ([]domain.StockEvent, error) {
	start := time.Now()
	metrics.CheckCyclesTotal.Inc()
	m.log.Info("check cycle starting")

	var (
		mu     sync.Mutex
		events []domain.StockEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m.scrapers {
		for _, category := range watchedCategories {
			g.Go(func() error {
				got := m.checkSource(gctx, s, category)
				mu.Lock()
				events = append(events, got...)
				mu.Unlock()
				// source failures are isolated, never abort siblings
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return events, err
	}
	if ctx.Err() != nil {
		return events, ctx.Err()
	}

	m.finishCycle(ctx)
	metrics.CheckCycleDuration.Observe(time.Since(start).Seconds())
	m.log.Info("check cycle complete",
		"events", len(events), "duration", time.Since(start).Round(time.Millisecond))
	return events, nil
}

// checkSource runs one (source, category) check. All errors are absorbed
// into stats and logs.
func (m *Monitor) checkSource(ctx context.Context, s scrape.Scraper, category domain.Category) []domain.StockEvent {
	listings, err := s.Search(ctx, category)
	if err != nil {
		m.stats.RecordCheck(false)
		m.stats.RecordError(fmt.Sprintf("%s/%s: %v", s.Source(), category, err))
		metrics.SourceChecksTotal.WithLabelValues(s.Source(), "error").Inc()
		m.log.Warn("source check failed",
			"source", s.Source(), "category", category, "error", err)
		return nil
	}

	m.stats.RecordCheck(true)
	m.stats.RecordProducts(len(listings))
	metrics.SourceChecksTotal.WithLabelValues(s.Source(), "ok").Inc()

	// listings are processed sequentially so the product upsert for a URL
	// always lands before anything later in the cycle reads it
	var events []domain.StockEvent
	for i := range listings {
		got, err := m.processListing(ctx, &listings[i])
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			m.stats.RecordError(fmt.Sprintf("%s: %v", listings[i].URL, err))
			m.log.Error("processing listing failed",
				"source", s.Source(), "url", listings[i].URL, "error", err)
			continue
		}
		events = append(events, got...)
	}
	return events
}

// processListing diffs one listing, persists the new state, and dispatches
// whatever events the diff produced.
func (m *Monitor) processListing(ctx context.Context, listing *domain.Listing) ([]domain.StockEvent, error) {
	prior, err := m.store.GetProduct(ctx, listing.URL)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading prior state: %w", err)
	}

	events := Diff(listing, prior)

	product := domain.FromListing(listing)
	if err := m.store.UpsertProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("upserting product: %w", err)
	}
	if err := m.store.AppendHistory(ctx, product); err != nil {
		return nil, fmt.Errorf("appending history: %w", err)
	}

	for i := range events {
		sent, err := m.dispatcher.Dispatch(ctx, &events[i])
		if err != nil {
			m.stats.RecordError(fmt.Sprintf("dispatch %s: %v", listing.URL, err))
			m.log.Error("dispatch failed", "url", listing.URL, "error", err)
			continue
		}
		if sent {
			m.stats.RecordAlert()
		}
	}
	return events, nil
}

// finishCycle updates cycle-level stats, gauges, and periodic housekeeping.
func (m *Monitor) finishCycle(ctx context.Context) {
	m.stats.CycleFinished(time.Now())

	if total, inStock, err := m.store.CountProducts(ctx); err == nil {
		metrics.ProductsTracked.Set(float64(total))
		metrics.ProductsInStock.Set(float64(inStock))
	}

	m.mu.Lock()
	m.cycles++
	cleanup := m.cleanupEveryCycles > 0 && m.cycles%m.cleanupEveryCycles == 0
	m.mu.Unlock()

	if cleanup {
		cutoff := time.Now().Add(-m.historyRetention)
		deleted, err := m.store.DeleteHistoryBefore(ctx, cutoff)
		if err != nil {
			m.log.Error("history cleanup failed", "error", err)
			return
		}
		if deleted > 0 {
			m.log.Info("history cleanup complete", "deleted", deleted)
		}
	}
}
