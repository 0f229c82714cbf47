// Package store defines the datastore abstraction for the restock monitor.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables fake-based testing without a running database.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ProductQuery defines optional filters for product queries.
type ProductQuery struct {
	Retailer *string
	Category *string
	InStock  *bool
	Limit    int // default 50
	Offset   int
	OrderBy  string // "last_checked", "name", "price"
}

// Store defines all data access operations for the restock monitor.
type Store interface {
	// Products
	UpsertProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, url string) (*domain.Product, error)
	ListProducts(ctx context.Context, opts *ProductQuery) ([]domain.Product, int, error)
	CountProducts(ctx context.Context) (total int, inStock int, err error)

	// Stock history
	AppendHistory(ctx context.Context, p *domain.Product) error
	DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Alerts
	InsertAlert(ctx context.Context, e *domain.StockEvent) error
	WasRecentlyAlerted(ctx context.Context, url string, cooldown time.Duration) (bool, error)
	CountRecentAlerts(ctx context.Context, window time.Duration) (int, error)

	// Dead-letter queue
	InsertFailedDelivery(ctx context.Context, f *domain.FailedDelivery) (int64, error)
	ListRetryable(ctx context.Context, maxRetries int, retryDelay time.Duration) ([]domain.FailedDelivery, error)
	ListFailedDeliveries(ctx context.Context, limit int) ([]domain.FailedDelivery, error)
	IncrementRetry(ctx context.Context, id int64) error
	ResolveFailedDelivery(ctx context.Context, id int64) error
	DLQStats(ctx context.Context, maxRetries int) (*domain.DLQStats, error)
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Tracked products
	AddTracked(ctx context.Context, t *domain.TrackedProduct) error
	ListTracked(ctx context.Context) ([]domain.TrackedProduct, error)
	RemoveTracked(ctx context.Context, url string) (bool, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
