// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/tcg-tools/restock-monitor/tools/dashgen/panels"
)

// BuildOverview constructs the Restock Monitor overview dashboard with all
// metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Restock Monitor Overview").
		Uid("restock-overview").
		Tags([]string{"restock", "restock-monitor"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.MonitorRunningStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Scraping.
	b.WithRow(dashboard.NewRowBuilder("Scraping").
		WithPanel(panels.FetchRate()).
		WithPanel(panels.ScrapeErrors()).
		WithPanel(panels.CycleDuration()).
		WithPanel(panels.BreakerState()))

	// Row 4: Inventory.
	b.WithRow(dashboard.NewRowBuilder("Inventory").
		WithPanel(panels.ProductsTracked()).
		WithPanel(panels.ProductsInStock()))

	// Row 5: Alerts & DLQ.
	b.WithRow(dashboard.NewRowBuilder("Alerts & DLQ").
		WithPanel(panels.AlertsRate()).
		WithPanel(panels.AlertFailures()).
		WithPanel(panels.DLQDepth()).
		WithPanel(panels.DLQRetries()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
