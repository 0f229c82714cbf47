package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// FetchRate returns a timeseries panel showing page fetches per minute
// broken out by retailer.
func FetchRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fetches / min").
		Description("Rate of page fetches per minute by retailer").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`restock:fetches:rate5m * 60`, "{{source}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ScrapeErrors returns a timeseries panel showing scrape errors per minute
// broken out by retailer.
func ScrapeErrors() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Scrape Errors / min").
		Description("Rate of scrape errors per minute by retailer").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`restock:scrape_errors:rate5m * 60`, "{{source}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.1, 1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CycleDuration returns a timeseries panel showing the p95 check cycle
// duration.
func CycleDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cycle Duration (p95)").
		Description("95th percentile check cycle duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(restock_check_cycle_duration_seconds_bucket{job="restock-monitor"}[5m])) by (le))`,
			"p95",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// BreakerState returns a timeseries panel showing circuit breaker state
// per retailer.
func BreakerState() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Circuit Breakers").
		Description("Circuit breaker state by retailer (0 = closed, 1 = open)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(FullWidth).
		WithTarget(PromQuery(`restock_breaker_state{job="restock-monitor"}`, "{{source}}", "A")).
		FillOpacity(30).
		LineWidth(2).
		Legend(TableLegend("last")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenYellowRed(0.5, 1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}
