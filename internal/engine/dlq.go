package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tcg-tools/restock-monitor/internal/metrics"
	"github.com/tcg-tools/restock-monitor/internal/notify"
	"github.com/tcg-tools/restock-monitor/internal/store"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// RetryManager drains the dead-letter queue. Each pass re-delivers every
// eligible entry; entries whose product has since disappeared are resolved
// without a send, and entries that keep failing climb toward the retry
// ceiling where they stay for operator inspection.
type RetryManager struct {
	store      store.Store
	notifier   notify.Notifier
	maxRetries int
	retryDelay time.Duration
	log        *slog.Logger
	nowFunc    func() time.Time
}

// NewRetryManager creates a retry manager with the given retry ceiling and
// minimum delay between retries of one entry.
func NewRetryManager(s store.Store, n notify.Notifier, maxRetries int, retryDelay time.Duration, log *slog.Logger) *RetryManager {
	return &RetryManager{
		store:      s,
		notifier:   n,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		log:        log,
		nowFunc:    time.Now,
	}
}

// ProcessRetries runs one retry pass, returning how many entries were
// resolved and how many failed again.
func (m *RetryManager) ProcessRetries(ctx context.Context) (resolved, failed int, err error) {
	entries, err := m.store.ListRetryable(ctx, m.maxRetries, m.retryDelay)
	if err != nil {
		return 0, 0, fmt.Errorf("listing retryable deliveries: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if m.retryOne(ctx, &entry) {
			resolved++
		} else {
			failed++
		}
	}

	if len(entries) > 0 {
		m.log.Info("dlq retry pass complete",
			"eligible", len(entries), "resolved", resolved, "failed", failed)
	}

	m.updateDepth(ctx)
	return resolved, failed, nil
}

// retryOne re-delivers a single entry, reporting whether it was resolved.
func (m *RetryManager) retryOne(ctx context.Context, entry *domain.FailedDelivery) bool {
	product, err := m.store.GetProduct(ctx, entry.ProductURL)
	if errors.Is(err, store.ErrNotFound) {
		// product gone, nothing left to announce
		if err := m.store.ResolveFailedDelivery(ctx, entry.ID); err != nil {
			m.log.Error("resolving orphaned dlq entry", "id", entry.ID, "error", err)
			return false
		}
		metrics.DLQRetriesTotal.WithLabelValues("orphaned").Inc()
		return true
	}
	if err != nil {
		m.log.Error("loading product for dlq retry", "id", entry.ID, "error", err)
		return false
	}

	event := &domain.StockEvent{
		Product:   product,
		Type:      entry.AlertType,
		CreatedAt: m.nowFunc(),
	}

	if sendErr := m.notifier.SendAlert(ctx, notify.PayloadFromEvent(event)); sendErr != nil {
		if err := m.store.IncrementRetry(ctx, entry.ID); err != nil {
			m.log.Error("incrementing dlq retry count", "id", entry.ID, "error", err)
		}
		metrics.DLQRetriesTotal.WithLabelValues("failed").Inc()
		m.log.Debug("dlq retry failed",
			"id", entry.ID, "url", entry.ProductURL, "retries", entry.RetryCount+1, "error", sendErr)
		return false
	}

	if err := m.store.ResolveFailedDelivery(ctx, entry.ID); err != nil {
		m.log.Error("resolving dlq entry", "id", entry.ID, "error", err)
		return false
	}
	metrics.DLQRetriesTotal.WithLabelValues("resolved").Inc()
	return true
}

func (m *RetryManager) updateDepth(ctx context.Context) {
	stats, err := m.store.DLQStats(ctx, m.maxRetries)
	if err != nil {
		return
	}
	metrics.DLQDepth.Set(float64(stats.Pending))
}
