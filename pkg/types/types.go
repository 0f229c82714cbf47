// Package domain defines the core business types for the restock monitor.
package domain

import (
	"fmt"
	"time"
)

// Category represents the trading-card game a product belongs to.
type Category string

// Category constants.
const (
	CategoryPokemon  Category = "pokemon"
	CategoryOnePiece Category = "one_piece"
	CategoryUnknown  Category = "unknown"
)

// AlertType classifies a stock-change event.
type AlertType string

// Alert type constants.
const (
	AlertNew         AlertType = "new"
	AlertInStock     AlertType = "in_stock"
	AlertOutOfStock  AlertType = "out_of_stock"
	AlertPriceChange AlertType = "price_change"
)

// Listing is a single product observation as scraped this cycle. It is
// ephemeral: produced by a source adapter, consumed immediately by the diff
// engine, never stored as-is.
type Listing struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Retailer   string    `json:"retailer"`
	InStock    bool      `json:"in_stock"`
	Price      *float64  `json:"price,omitempty"`
	Category   Category  `json:"category"`
	SetName    string    `json:"set_name,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// Product is the persisted last-known state for a URL. One row per distinct
// URL; replaced wholesale on every successful observation, never deleted.
type Product struct {
	URL         string    `json:"url"          db:"url"`
	Name        string    `json:"name"         db:"name"`
	Retailer    string    `json:"retailer"     db:"retailer"`
	InStock     bool      `json:"in_stock"     db:"in_stock"`
	Price       *float64  `json:"price,omitempty" db:"price"`
	Category    Category  `json:"category"     db:"category"`
	SetName     string    `json:"set_name"     db:"set_name"`
	ImageURL    string    `json:"image_url"    db:"image_url"`
	LastChecked time.Time `json:"last_checked" db:"last_checked"`
}

// DisplayPrice formats the price for human-facing output.
func (p *Product) DisplayPrice() string {
	if p.Price == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *p.Price)
}

// FromListing builds the Product state a listing observation implies.
func FromListing(l *Listing) *Product {
	return &Product{
		URL:         l.URL,
		Name:        l.Name,
		Retailer:    l.Retailer,
		InStock:     l.InStock,
		Price:       l.Price,
		Category:    l.Category,
		SetName:     l.SetName,
		ImageURL:    l.ImageURL,
		LastChecked: l.ObservedAt,
	}
}

// HistoryEntry is one append-only row of the stock history time series.
type HistoryEntry struct {
	ID         int64     `json:"id"          db:"id"`
	ProductURL string    `json:"product_url" db:"product_url"`
	Retailer   string    `json:"retailer"    db:"retailer"`
	InStock    bool      `json:"in_stock"    db:"in_stock"`
	Price      *float64  `json:"price,omitempty" db:"price"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// StockEvent is a typed stock-change event produced by the diff engine.
// Persisted on emission as the alert audit log and the basis for cooldown
// checks.
type StockEvent struct {
	Product       *Product  `json:"product"`
	Type          AlertType `json:"type"`
	PreviousPrice *float64  `json:"previous_price,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsRestock reports whether the event is a back-in-stock transition.
func (e *StockEvent) IsRestock() bool {
	return e.Type == AlertInStock
}

// FailedDelivery is a dead-letter queue entry for a notification that could
// not be delivered. RetryCount reaching the retry ceiling with Resolved still
// false marks the entry exhausted: kept for operator inspection, never
// retried again.
type FailedDelivery struct {
	ID           int64      `json:"id"            db:"id"`
	ProductURL   string     `json:"product_url"   db:"product_url"`
	AlertType    AlertType  `json:"alert_type"    db:"alert_type"`
	ErrorMessage string     `json:"error_message" db:"error_message"`
	RetryCount   int        `json:"retry_count"   db:"retry_count"`
	LastRetryAt  *time.Time `json:"last_retry_at,omitempty" db:"last_retry_at"`
	Resolved     bool       `json:"resolved"      db:"resolved"`
	CreatedAt    time.Time  `json:"created_at"    db:"created_at"`
}

// DLQStats summarizes dead-letter queue occupancy.
type DLQStats struct {
	Pending   int `json:"pending"`
	Resolved  int `json:"resolved"`
	Exhausted int `json:"exhausted"`
	Total     int `json:"total"`
}

// TrackedProduct is a product URL a user asked the monitor to watch.
type TrackedProduct struct {
	URL      string    `json:"url"      db:"url"`
	Name     string    `json:"name"     db:"name"`
	Retailer string    `json:"retailer" db:"retailer"`
	AddedBy  string    `json:"added_by" db:"added_by"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`
}

// Stats is a read-only snapshot of monitor activity for the status surface.
type Stats struct {
	Running          bool       `json:"running"`
	TotalChecks      int        `json:"total_checks"`
	SuccessfulChecks int        `json:"successful_checks"`
	FailedChecks     int        `json:"failed_checks"`
	ProductsFound    int        `json:"products_found"`
	AlertsSent       int        `json:"alerts_sent"`
	LastCheck        *time.Time `json:"last_check,omitempty"`
	RecentErrors     []string   `json:"recent_errors,omitempty"`
	TotalErrors      int        `json:"total_errors"`
}

// SourceConfig describes one retailer source.
type SourceConfig struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	Enabled bool   `json:"enabled"`
}
