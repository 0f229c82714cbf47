package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresOption adjusts the connection pool configuration.
type PostgresOption func(*pgxpool.Config)

// WithPoolSize caps the connection pool at n connections. Non-positive
// values keep the default.
func WithPoolSize(n int) PostgresOption {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = int32(n)
		}
	}
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, opts ...PostgresOption) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// UpsertProduct inserts or replaces the last-known state for a product URL.
func (s *PostgresStore) UpsertProduct(ctx context.Context, p *domain.Product) error {
	args := pgx.NamedArgs{
		"url":          p.URL,
		"name":         p.Name,
		"retailer":     p.Retailer,
		"in_stock":     p.InStock,
		"price":        p.Price,
		"category":     string(p.Category),
		"set_name":     p.SetName,
		"image_url":    p.ImageURL,
		"last_checked": p.LastChecked,
	}

	if _, err := s.pool.Exec(ctx, queryUpsertProduct, args); err != nil {
		return fmt.Errorf("upserting product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by URL. Returns ErrNotFound when the URL has
// never been observed.
func (s *PostgresStore) GetProduct(ctx context.Context, url string) (*domain.Product, error) {
	p := &domain.Product{}
	err := scanProduct(s.pool.QueryRow(ctx, queryGetProduct, url), p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return p, nil
}

// ListProducts queries products with optional filters, returning results and
// total count.
func (s *PostgresStore) ListProducts(
	ctx context.Context,
	opts *ProductQuery,
) ([]domain.Product, int, error) {
	dataSQL, countSQL, args := opts.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating products: %w", err)
	}

	return products, total, nil
}

// CountProducts returns total and in-stock product counts.
func (s *PostgresStore) CountProducts(ctx context.Context) (int, int, error) {
	var total, inStock int
	if err := s.pool.QueryRow(ctx, queryCountProducts).Scan(&total, &inStock); err != nil {
		return 0, 0, fmt.Errorf("counting products: %w", err)
	}
	return total, inStock, nil
}

// AppendHistory records one stock history row for the product's current state.
func (s *PostgresStore) AppendHistory(ctx context.Context, p *domain.Product) error {
	args := pgx.NamedArgs{
		"product_url": p.URL,
		"retailer":    p.Retailer,
		"in_stock":    p.InStock,
		"price":       p.Price,
		"recorded_at": p.LastChecked,
	}

	if _, err := s.pool.Exec(ctx, queryAppendHistory, args); err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// DeleteHistoryBefore removes history rows older than the cutoff, returning
// the number deleted.
func (s *PostgresStore) DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, queryDeleteHistoryBefore, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertAlert records a dispatched stock event in the alert audit log.
func (s *PostgresStore) InsertAlert(ctx context.Context, e *domain.StockEvent) error {
	args := pgx.NamedArgs{
		"product_url": e.Product.URL,
		"alert_type":  string(e.Type),
		"old_price":   e.PreviousPrice,
		"new_price":   e.Product.Price,
		"created_at":  e.CreatedAt,
	}

	if _, err := s.pool.Exec(ctx, queryInsertAlert, args); err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	return nil
}

// WasRecentlyAlerted reports whether any alert for the URL exists inside the
// cooldown window. The boundary is inclusive: an alert created exactly at
// now minus the cooldown still suppresses.
func (s *PostgresStore) WasRecentlyAlerted(ctx context.Context, url string, cooldown time.Duration) (bool, error) {
	cutoff := time.Now().Add(-cooldown)

	var exists bool
	if err := s.pool.QueryRow(ctx, queryWasRecentlyAlerted, url, cutoff).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking recent alerts: %w", err)
	}
	return exists, nil
}

// CountRecentAlerts returns the number of alerts created inside the window.
func (s *PostgresStore) CountRecentAlerts(ctx context.Context, window time.Duration) (int, error) {
	cutoff := time.Now().Add(-window)

	var count int
	if err := s.pool.QueryRow(ctx, queryCountRecentAlerts, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting recent alerts: %w", err)
	}
	return count, nil
}

// InsertFailedDelivery adds a failed notification to the dead-letter queue.
func (s *PostgresStore) InsertFailedDelivery(ctx context.Context, f *domain.FailedDelivery) (int64, error) {
	args := pgx.NamedArgs{
		"product_url":   f.ProductURL,
		"alert_type":    string(f.AlertType),
		"error_message": f.ErrorMessage,
		"created_at":    f.CreatedAt,
	}

	var id int64
	if err := s.pool.QueryRow(ctx, queryInsertFailedDelivery, args).Scan(&id); err != nil {
		return 0, fmt.Errorf("inserting failed delivery: %w", err)
	}
	return id, nil
}

// ListRetryable returns unresolved entries below the retry ceiling whose last
// retry, if any, is older than the retry delay. Oldest first.
func (s *PostgresStore) ListRetryable(ctx context.Context, maxRetries int, retryDelay time.Duration) ([]domain.FailedDelivery, error) {
	cutoff := time.Now().Add(-retryDelay)

	rows, err := s.pool.Query(ctx, queryListRetryable, maxRetries, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying retryable deliveries: %w", err)
	}
	return scanFailedDeliveries(rows)
}

// ListFailedDeliveries returns unresolved entries, newest first.
func (s *PostgresStore) ListFailedDeliveries(ctx context.Context, limit int) ([]domain.FailedDelivery, error) {
	rows, err := s.pool.Query(ctx, queryListFailedDeliveries, limit)
	if err != nil {
		return nil, fmt.Errorf("querying failed deliveries: %w", err)
	}
	return scanFailedDeliveries(rows)
}

func scanFailedDeliveries(rows pgx.Rows) ([]domain.FailedDelivery, error) {
	defer rows.Close()

	var entries []domain.FailedDelivery
	for rows.Next() {
		var f domain.FailedDelivery
		var alertType string
		if err := rows.Scan(
			&f.ID, &f.ProductURL, &alertType, &f.ErrorMessage,
			&f.RetryCount, &f.LastRetryAt, &f.Resolved, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning failed delivery: %w", err)
		}
		f.AlertType = domain.AlertType(alertType)
		entries = append(entries, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating failed deliveries: %w", err)
	}

	return entries, nil
}

// IncrementRetry bumps the retry count and stamps the retry time.
func (s *PostgresStore) IncrementRetry(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, queryIncrementRetry, id); err != nil {
		return fmt.Errorf("incrementing retry: %w", err)
	}
	return nil
}

// ResolveFailedDelivery marks a dead-letter entry as delivered.
func (s *PostgresStore) ResolveFailedDelivery(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, queryResolveFailedDelivery, id); err != nil {
		return fmt.Errorf("resolving failed delivery: %w", err)
	}
	return nil
}

// DLQStats returns dead-letter queue occupancy counts. Entries at or above
// the retry ceiling count as exhausted.
func (s *PostgresStore) DLQStats(ctx context.Context, maxRetries int) (*domain.DLQStats, error) {
	stats := &domain.DLQStats{}
	err := s.pool.QueryRow(ctx, queryDLQStats, maxRetries).Scan(
		&stats.Pending, &stats.Resolved, &stats.Exhausted,
	)
	if err != nil {
		return nil, fmt.Errorf("querying dlq stats: %w", err)
	}
	stats.Total = stats.Pending + stats.Resolved
	return stats, nil
}

// DeleteResolvedBefore removes resolved entries older than the cutoff.
func (s *PostgresStore) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, queryDeleteResolvedBefore, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting resolved deliveries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AddTracked inserts or refreshes a user-tracked product URL.
func (s *PostgresStore) AddTracked(ctx context.Context, t *domain.TrackedProduct) error {
	args := pgx.NamedArgs{
		"url":      t.URL,
		"name":     t.Name,
		"retailer": t.Retailer,
		"added_by": t.AddedBy,
		"added_at": t.AddedAt,
	}

	if _, err := s.pool.Exec(ctx, queryAddTracked, args); err != nil {
		return fmt.Errorf("adding tracked product: %w", err)
	}
	return nil
}

// ListTracked returns all user-tracked products, newest first.
func (s *PostgresStore) ListTracked(ctx context.Context) ([]domain.TrackedProduct, error) {
	rows, err := s.pool.Query(ctx, queryListTracked)
	if err != nil {
		return nil, fmt.Errorf("querying tracked products: %w", err)
	}
	defer rows.Close()

	var tracked []domain.TrackedProduct
	for rows.Next() {
		var t domain.TrackedProduct
		if err := rows.Scan(&t.URL, &t.Name, &t.Retailer, &t.AddedBy, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning tracked product: %w", err)
		}
		tracked = append(tracked, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tracked products: %w", err)
	}

	return tracked, nil
}

// RemoveTracked deletes a tracked URL, reporting whether it existed.
func (s *PostgresStore) RemoveTracked(ctx context.Context, url string) (bool, error) {
	tag, err := s.pool.Exec(ctx, queryRemoveTracked, url)
	if err != nil {
		return false, fmt.Errorf("removing tracked product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// scanProduct scans a product row from either QueryRow or Query results.
func scanProduct(row pgx.Row, p *domain.Product) error {
	var category string
	err := row.Scan(
		&p.URL, &p.Name, &p.Retailer, &p.InStock, &p.Price,
		&category, &p.SetName, &p.ImageURL, &p.LastChecked,
	)
	if err != nil {
		return err
	}
	p.Category = domain.Category(category)
	return nil
}
