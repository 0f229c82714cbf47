package main

import "errors"

// KnownMetrics is the set of metric names exported by restock-monitor
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"restock_http_request_duration_seconds": true,
	"restock_http_requests_total":           true,

	// Health metrics.
	"restock_healthz_up": true,
	"restock_readyz_up":  true,

	// Monitor cycle metrics.
	"restock_check_cycles_total":           true,
	"restock_check_cycle_duration_seconds": true,
	"restock_source_checks_total":          true,
	"restock_monitor_running":              true,

	// Inventory metrics.
	"restock_products_tracked":  true,
	"restock_products_in_stock": true,

	// Scrape metrics.
	"restock_fetches_total":       true,
	"restock_scrape_errors_total": true,
	"restock_breaker_state":       true,

	// Alert metrics.
	"restock_alerts_sent_total":           true,
	"restock_alerts_suppressed_total":     true,
	"restock_alerts_failed_total":         true,
	"restock_alert_send_duration_seconds": true,

	// DLQ metrics.
	"restock_dlq_depth":         true,
	"restock_dlq_retries_total": true,

	// Recording rules.
	"restock:http_requests:rate5m": true,
	"restock:http_errors:rate5m":   true,
	"restock:fetches:rate5m":       true,
	"restock:scrape_errors:rate5m": true,
	"restock:alerts_sent:rate5m":   true,
	"restock:alerts_failed:rate5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
