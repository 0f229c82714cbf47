package engine

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

func newTestRetryManager(st *fakeStore, nt *fakeNotifier) *RetryManager {
	return NewRetryManager(st, nt, 3, 5*time.Minute, slog.New(slog.DiscardHandler))
}

func queueFailure(t *testing.T, st *fakeStore, url string) int64 {
	t.Helper()
	id, err := st.InsertFailedDelivery(context.Background(), &domain.FailedDelivery{
		ProductURL:   url,
		AlertType:    domain.AlertInStock,
		ErrorMessage: "webhook unavailable",
		CreatedAt:    st.now(),
	})
	require.NoError(t, err)
	return id
}

func storeProduct(t *testing.T, st *fakeStore, url string) {
	t.Helper()
	l := testListing(url, true, fptr(249.95))
	require.NoError(t, st.UpsertProduct(context.Background(), domain.FromListing(&l)))
}

func TestProcessRetriesResolvesOnSuccess(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{}
	url := "https://example.com/p/1"
	storeProduct(t, st, url)
	queueFailure(t, st, url)

	resolved, failed, err := newTestRetryManager(st, nt).ProcessRetries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 1, nt.sentCount())

	entries := st.failedEntries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Resolved)
	assert.Equal(t, 0, entries[0].RetryCount)
}

func TestProcessRetriesFailsThenSucceeds(t *testing.T) {
	st := newFakeStore()
	base := time.Now()
	clock := base
	st.now = func() time.Time { return clock }

	nt := &fakeNotifier{failures: 2}
	url := "https://example.com/p/1"
	storeProduct(t, st, url)
	queueFailure(t, st, url)

	m := newTestRetryManager(st, nt)
	ctx := context.Background()

	// two failing passes, each advancing past the retry delay
	for pass := 0; pass < 2; pass++ {
		resolved, failed, err := m.ProcessRetries(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, resolved)
		assert.Equal(t, 1, failed)
		clock = clock.Add(6 * time.Minute)
	}

	entries := st.failedEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].RetryCount)
	assert.False(t, entries[0].Resolved)

	// third pass delivers
	resolved, failed, err := m.ProcessRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.Equal(t, 0, failed)
	assert.True(t, st.failedEntries()[0].Resolved)
}

func TestProcessRetriesHonorsRetryDelay(t *testing.T) {
	st := newFakeStore()
	base := time.Now()
	clock := base
	st.now = func() time.Time { return clock }

	nt := &fakeNotifier{failures: 1}
	url := "https://example.com/p/1"
	storeProduct(t, st, url)
	queueFailure(t, st, url)

	m := newTestRetryManager(st, nt)
	ctx := context.Background()

	_, failed, err := m.ProcessRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	// only a minute later the entry is still cooling off
	clock = clock.Add(time.Minute)
	resolved, failed, err := m.ProcessRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, resolved)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 0, nt.sentCount())

	// past the delay it goes out
	clock = clock.Add(5 * time.Minute)
	resolved, _, err = m.ProcessRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
}

func TestProcessRetriesStopsAtCeiling(t *testing.T) {
	st := newFakeStore()
	base := time.Now()
	clock := base
	st.now = func() time.Time { return clock }

	nt := &fakeNotifier{failures: 10}
	url := "https://example.com/p/1"
	storeProduct(t, st, url)
	queueFailure(t, st, url)

	m := newTestRetryManager(st, nt)
	ctx := context.Background()

	for pass := 0; pass < 5; pass++ {
		_, _, err := m.ProcessRetries(ctx)
		require.NoError(t, err)
		clock = clock.Add(6 * time.Minute)
	}

	// exactly maxRetries attempts were made, then the entry went quiet
	entries := st.failedEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].RetryCount)
	assert.False(t, entries[0].Resolved, "exhausted entries are kept, not resolved")

	stats, err := st.DLQStats(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Exhausted)
	assert.Equal(t, 1, stats.Pending)
}

func TestProcessRetriesResolvesOrphanedEntries(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{}
	queueFailure(t, st, "https://example.com/p/gone")

	resolved, failed, err := newTestRetryManager(st, nt).ProcessRetries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 0, nt.sentCount(), "no product left to announce")
	assert.True(t, st.failedEntries()[0].Resolved)
}

func TestProcessRetriesEmptyQueue(t *testing.T) {
	st := newFakeStore()
	resolved, failed, err := newTestRetryManager(st, &fakeNotifier{}).ProcessRetries(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resolved)
	assert.Zero(t, failed)
}

func TestProcessRetriesStopsOnCanceledContext(t *testing.T) {
	st := newFakeStore()
	nt := &fakeNotifier{}
	for i := 0; i < 3; i++ {
		url := "https://example.com/p/" + string(rune('a'+i))
		storeProduct(t, st, url)
		queueFailure(t, st, url)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolved, failed, err := newTestRetryManager(st, nt).ProcessRetries(ctx)
	require.NoError(t, err)
	assert.Zero(t, resolved)
	assert.Zero(t, failed)
	assert.Equal(t, 0, nt.sentCount())
}
