package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tcg-tools/restock-monitor/internal/metrics"
	"github.com/tcg-tools/restock-monitor/internal/notify"
	"github.com/tcg-tools/restock-monitor/internal/store"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// Dispatcher delivers stock events through the cooldown gate. Suppressed
// events are dropped silently; delivery failures land in the dead-letter
// queue instead of propagating.
type Dispatcher struct {
	store    store.Store
	notifier notify.Notifier
	cooldown time.Duration
	log      *slog.Logger
	nowFunc  func() time.Time
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets a custom logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// NewDispatcher creates a dispatcher with the given alert cooldown window.
func NewDispatcher(s store.Store, n notify.Notifier, cooldown time.Duration, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:    s,
		notifier: n,
		cooldown: cooldown,
		log:      slog.Default(),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs one event through cooldown, audit log, and delivery. The
// returned bool reports whether a notification actually went out. The
// cooldown window is shared across all alert types for a product: any recent
// alert for the URL suppresses the next, whatever its type.
func (d *Dispatcher) Dispatch(ctx context.Context, e *domain.StockEvent) (bool, error) {
	recent, err := d.store.WasRecentlyAlerted(ctx, e.Product.URL, d.cooldown)
	if err != nil {
		return false, fmt.Errorf("cooldown check: %w", err)
	}
	if recent {
		metrics.AlertsSuppressedTotal.Inc()
		d.log.Debug("alert suppressed by cooldown",
			"url", e.Product.URL, "type", e.Type)
		return false, nil
	}

	if err := d.store.InsertAlert(ctx, e); err != nil {
		return false, fmt.Errorf("persisting alert: %w", err)
	}

	start := d.nowFunc()
	sendErr := d.notifier.SendAlert(ctx, notify.PayloadFromEvent(e))
	metrics.AlertSendDuration.Observe(time.Since(start).Seconds())

	if sendErr == nil {
		metrics.AlertsSentTotal.Inc()
		return true, nil
	}

	metrics.AlertsFailedTotal.Inc()
	d.log.Warn("alert delivery failed, queued for retry",
		"url", e.Product.URL, "type", e.Type, "error", sendErr)

	entry := &domain.FailedDelivery{
		ProductURL:   e.Product.URL,
		AlertType:    e.Type,
		ErrorMessage: sendErr.Error(),
		CreatedAt:    d.nowFunc(),
	}
	if _, err := d.store.InsertFailedDelivery(ctx, entry); err != nil {
		return false, fmt.Errorf("queueing failed delivery: %w", err)
	}
	return false, nil
}
