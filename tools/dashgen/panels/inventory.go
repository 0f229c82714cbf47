package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ProductsTracked returns a stat panel showing the number of products being
// tracked.
func ProductsTracked() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Products Tracked").
		Description("Total products under observation").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`restock_products_tracked{job="restock-monitor"}`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// ProductsInStock returns a timeseries panel showing the in-stock product
// count over time.
func ProductsInStock() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("In Stock").
		Description("Products currently in stock").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(18).
		WithTarget(PromQuery(`restock_products_in_stock{job="restock-monitor"}`, "in stock", "A")).
		FillOpacity(20).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
