package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// AlertsRate returns a timeseries panel showing the rate of stock alerts sent.
func AlertsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Alerts Sent Rate").
		Description("Rate of stock alerts sent per second").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`restock:alerts_sent:rate5m`, "alerts/s", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// AlertFailures returns a stat panel showing failed alert deliveries in the
// past 24 hours.
func AlertFailures() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Delivery Failures (24h)").
		Description("Failed alert deliveries in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`increase(restock_alerts_failed_total{job="restock-monitor"}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// DLQDepth returns a timeseries panel showing the number of pending entries
// in the failed delivery queue.
func DLQDepth() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("DLQ Depth").
		Description("Pending entries in the failed delivery queue").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`restock_dlq_depth{job="restock-monitor"}`, "pending", "A")).
		FillOpacity(20).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(1, 10)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// DLQRetries returns a timeseries panel showing DLQ retry outcomes.
func DLQRetries() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("DLQ Retries").
		Description("DLQ retry attempts per minute by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(FullWidth).
		WithTarget(PromQuery(
			`sum(rate(restock_dlq_retries_total{job="restock-monitor"}[5m])) by (outcome) * 60`,
			"{{outcome}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
