package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tcg-tools/restock-monitor/internal/notify"
	"github.com/tcg-tools/restock-monitor/internal/store"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	history  []domain.HistoryEntry
	alerts   []domain.StockEvent
	failed   []domain.FailedDelivery
	tracked  map[string]domain.TrackedProduct
	nextID   int64
	now      func() time.Time

	upsertErr error
	recentErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]domain.Product),
		tracked:  make(map[string]domain.TrackedProduct),
		now:      time.Now,
	}
}

func (f *fakeStore) UpsertProduct(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.products[p.URL] = *p
	return nil
}

func (f *fakeStore) GetProduct(_ context.Context, url string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[url]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (f *fakeStore) ListProducts(_ context.Context, _ *store.ProductQuery) ([]domain.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeStore) CountProducts(_ context.Context) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inStock := 0
	for _, p := range f.products {
		if p.InStock {
			inStock++
		}
	}
	return len(f.products), inStock, nil
}

func (f *fakeStore) AppendHistory(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, domain.HistoryEntry{
		ProductURL: p.URL,
		Retailer:   p.Retailer,
		InStock:    p.InStock,
		Price:      p.Price,
		RecordedAt: p.LastChecked,
	})
	return nil
}

func (f *fakeStore) DeleteHistoryBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []domain.HistoryEntry
	var deleted int64
	for _, h := range f.history {
		if h.RecordedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, h)
	}
	f.history = kept
	return deleted, nil
}

func (f *fakeStore) InsertAlert(_ context.Context, e *domain.StockEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, *e)
	return nil
}

func (f *fakeStore) WasRecentlyAlerted(_ context.Context, url string, cooldown time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recentErr != nil {
		return false, f.recentErr
	}
	cutoff := f.now().Add(-cooldown)
	for _, a := range f.alerts {
		if a.Product.URL == url && !a.CreatedAt.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CountRecentAlerts(_ context.Context, window time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := f.now().Add(-window)
	count := 0
	for _, a := range f.alerts {
		if a.CreatedAt.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) InsertFailedDelivery(_ context.Context, fd *domain.FailedDelivery) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *fd
	cp.ID = f.nextID
	f.failed = append(f.failed, cp)
	return cp.ID, nil
}

func (f *fakeStore) ListRetryable(_ context.Context, maxRetries int, retryDelay time.Duration) ([]domain.FailedDelivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := f.now().Add(-retryDelay)
	var out []domain.FailedDelivery
	for _, fd := range f.failed {
		if fd.Resolved || fd.RetryCount >= maxRetries {
			continue
		}
		if fd.LastRetryAt != nil && !fd.LastRetryAt.Before(cutoff) {
			continue
		}
		out = append(out, fd)
	}
	return out, nil
}

func (f *fakeStore) ListFailedDeliveries(_ context.Context, limit int) ([]domain.FailedDelivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FailedDelivery
	for _, fd := range f.failed {
		if fd.Resolved {
			continue
		}
		out = append(out, fd)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) IncrementRetry(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.failed {
		if f.failed[i].ID == id {
			f.failed[i].RetryCount++
			now := f.now()
			f.failed[i].LastRetryAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) ResolveFailedDelivery(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.failed {
		if f.failed[i].ID == id {
			f.failed[i].Resolved = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) DLQStats(_ context.Context, maxRetries int) (*domain.DLQStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.DLQStats{}
	for _, fd := range f.failed {
		if fd.Resolved {
			stats.Resolved++
			continue
		}
		stats.Pending++
		if fd.RetryCount >= maxRetries {
			stats.Exhausted++
		}
	}
	stats.Total = stats.Pending + stats.Resolved
	return stats, nil
}

func (f *fakeStore) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []domain.FailedDelivery
	var deleted int64
	for _, fd := range f.failed {
		if fd.Resolved && fd.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, fd)
	}
	f.failed = kept
	return deleted, nil
}

func (f *fakeStore) AddTracked(_ context.Context, t *domain.TrackedProduct) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked[t.URL] = *t
	return nil
}

func (f *fakeStore) ListTracked(_ context.Context) ([]domain.TrackedProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TrackedProduct
	for _, t := range f.tracked {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) RemoveTracked(_ context.Context, url string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tracked[url]
	delete(f.tracked, url)
	return ok, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Ping(context.Context) error    { return nil }

func (f *fakeStore) alertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

func (f *fakeStore) failedEntries() []domain.FailedDelivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.FailedDelivery(nil), f.failed...)
}

func (f *fakeStore) historyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history)
}

// fakeNotifier records sent payloads and fails a configurable number of
// times before succeeding.
type fakeNotifier struct {
	mu       sync.Mutex
	sent     []*notify.AlertPayload
	failures int
}

func (n *fakeNotifier) SendAlert(_ context.Context, p *notify.AlertPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failures > 0 {
		n.failures--
		return fmt.Errorf("webhook unavailable")
	}
	n.sent = append(n.sent, p)
	return nil
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// fakeScraper returns the scripted listings for its source, or an error.
type fakeScraper struct {
	source   string
	listings map[domain.Category][]domain.Listing
	err      error

	mu    sync.Mutex
	calls int
}

func (s *fakeScraper) Source() string { return s.source }
func (s *fakeScraper) Name() string   { return s.source }

func (s *fakeScraper) Search(_ context.Context, category domain.Category) ([]domain.Listing, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.listings[category], nil
}

func testListing(url string, inStock bool, price *float64) domain.Listing {
	return domain.Listing{
		Name:       "Pokemon TCG Surging Sparks Booster Box",
		URL:        url,
		Retailer:   "eb_games",
		InStock:    inStock,
		Price:      price,
		Category:   domain.CategoryPokemon,
		SetName:    "Surging Sparks",
		ObservedAt: time.Now(),
	}
}

func fptr(v float64) *float64 { return &v }
