package engine

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcg-tools/restock-monitor/internal/scrape"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

func newTestMonitor(st *fakeStore, nt *fakeNotifier, scrapers ...*fakeScraper) *Monitor {
	log := slog.New(slog.DiscardHandler)
	d := NewDispatcher(st, nt, 5*time.Minute, WithDispatcherLogger(log))

	var ss []scrape.Scraper
	for _, s := range scrapers {
		ss = append(ss, s)
	}
	return NewMonitor(st, ss, d,
		time.Hour, time.Minute, 30*24*time.Hour, 10,
		WithMonitorLogger(log))
}

func eventTypes(events []domain.StockEvent) []domain.AlertType {
	var out []domain.AlertType
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestRunOnceFirstSighting(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{}
	s := &fakeScraper{
		source: "eb_games",
		listings: map[domain.Category][]domain.Listing{
			domain.CategoryPokemon: {testListing("https://example.com/p/1", true, fptr(249.95))},
		},
	}

	m := newTestMonitor(st, nt, s)
	events, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, domain.AlertNew, events[0].Type)
	assert.Equal(t, 1, nt.sentCount())

	// state persisted even when the diff fires
	p, err := st.GetProduct(context.Background(), "https://example.com/p/1")
	require.NoError(t, err)
	assert.True(t, p.InStock)
	assert.Equal(t, 1, st.historyCount())

	// two watched categories, one source
	assert.Equal(t, 2, s.calls)
}

func TestRunOnceStockCycle(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{}
	s := &fakeScraper{source: "eb_games"}
	m := newTestMonitor(st, nt, s)
	ctx := context.Background()
	url := "https://example.com/p/1"

	set := func(inStock bool, price float64) {
		s.listings = map[domain.Category][]domain.Listing{
			domain.CategoryPokemon: {testListing(url, inStock, fptr(price))},
		}
	}

	// cycle 1: first sighting, in stock
	set(true, 249.95)
	events, err := m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AlertType{domain.AlertNew}, eventTypes(events))

	// cycle 2: unchanged, no events
	events, err = m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	// cycle 3: sold out
	set(false, 249.95)
	events, err = m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AlertType{domain.AlertOutOfStock}, eventTypes(events))

	// cycle 4: restocked at a lower price, both events fire
	set(true, 219.00)
	events, err = m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t,
		[]domain.AlertType{domain.AlertInStock, domain.AlertPriceChange},
		eventTypes(events))

	// every cycle appended history regardless of events
	assert.Equal(t, 4, st.historyCount())
}

func TestRunOnceSourceFailureIsIsolated(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{}
	broken := &fakeScraper{source: "kmart", err: fmt.Errorf("status 503")}
	healthy := &fakeScraper{
		source: "eb_games",
		listings: map[domain.Category][]domain.Listing{
			domain.CategoryPokemon: {testListing("https://example.com/p/1", true, fptr(249.95))},
		},
	}

	m := newTestMonitor(st, nt, broken, healthy)
	events, err := m.RunOnce(context.Background())
	require.NoError(t, err, "a failing source never fails the cycle")
	require.Len(t, events, 1)

	stats := m.Stats()
	assert.Equal(t, 4, stats.TotalChecks)
	assert.Equal(t, 2, stats.SuccessfulChecks)
	assert.Equal(t, 2, stats.FailedChecks)
	assert.Equal(t, 2, stats.TotalErrors)
	assert.Contains(t, stats.RecentErrors[0], "kmart")
}

func TestRunOnceRecordsStats(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{}
	s := &fakeScraper{
		source: "big_w",
		listings: map[domain.Category][]domain.Listing{
			domain.CategoryPokemon: {
				testListing("https://example.com/p/1", true, fptr(249.95)),
				testListing("https://example.com/p/2", false, fptr(139.00)),
			},
			domain.CategoryOnePiece: {
				testListing("https://example.com/p/3", true, nil),
			},
		},
	}

	m := newTestMonitor(st, nt, s)
	_, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, 3, stats.ProductsFound)
	assert.Equal(t, 2, stats.AlertsSent)
	require.NotNil(t, stats.LastCheck)
	assert.WithinDuration(t, time.Now(), *stats.LastCheck, 5*time.Second)
}

func TestRunOnceDeliveryFailureQueuesAndContinues(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{failures: 1}
	s := &fakeScraper{
		source: "eb_games",
		listings: map[domain.Category][]domain.Listing{
			domain.CategoryPokemon: {
				testListing("https://example.com/p/1", true, fptr(249.95)),
				testListing("https://example.com/p/2", true, fptr(189.00)),
			},
		},
	}

	m := newTestMonitor(st, nt, s)
	events, err := m.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	// one delivery failed into the queue, the other went out
	assert.Equal(t, 1, nt.sentCount())
	assert.Len(t, st.failedEntries(), 1)
	assert.Equal(t, 1, m.Stats().AlertsSent)
}

func TestRunOnceHistoryCleanup(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{}
	s := &fakeScraper{
		source: "eb_games",
		listings: map[domain.Category][]domain.Listing{
			domain.CategoryPokemon: {testListing("https://example.com/p/1", false, fptr(249.95))},
		},
	}

	log := slog.New(slog.DiscardHandler)
	d := NewDispatcher(st, nt, 5*time.Minute, WithDispatcherLogger(log))
	m := NewMonitor(st, []scrape.Scraper{s}, d,
		time.Hour, time.Minute, 30*24*time.Hour, 2,
		WithMonitorLogger(log))

	// a stale row from six weeks ago
	old := testListing("https://example.com/p/old", false, nil)
	oldProduct := domain.FromListing(&old)
	oldProduct.LastChecked = time.Now().Add(-42 * 24 * time.Hour)
	require.NoError(t, st.AppendHistory(context.Background(), oldProduct))

	ctx := context.Background()
	_, err := m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.historyCount(), "cleanup skipped on the first cycle")

	_, err = m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.historyCount(), "only the stale row was deleted")
}

func TestMonitorStartStop(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{}
	s := &fakeScraper{
		source: "eb_games",
		listings: map[domain.Category][]domain.Listing{
			domain.CategoryPokemon: {testListing("https://example.com/p/1", true, fptr(249.95))},
		},
	}

	m := newTestMonitor(st, nt, s)
	require.NoError(t, m.Start(context.Background()))
	assert.Error(t, m.Start(context.Background()), "double start is rejected")

	// the first cycle runs immediately, not after a full interval
	require.Eventually(t, func() bool {
		return m.Stats().TotalChecks >= 2
	}, 2*time.Second, 10*time.Millisecond)

	m.Stop()
	assert.False(t, m.Stats().Running)

	// idempotent
	m.Stop()

	// restart works after a clean stop
	require.NoError(t, m.Start(context.Background()))
	m.Stop()
}
