// Package validate checks generated dashboards against the set of metrics
// the service actually exports, catching typos and stale metric names
// before they ship to Grafana.
package validate

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/prometheus/prometheus/promql/parser"
)

// Result collects validation errors and warnings for one dashboard.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation produced no errors.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

// Dashboard parses every Prometheus query expression in the dashboard and
// verifies that each metric selector references a known metric name.
// Histogram _bucket, _sum, and _count series resolve to their base metric.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var result Result
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			for _, inner := range p.RowPanel.Panels {
				checkPanel(inner, known, &result)
			}
		}
		if p.Panel != nil {
			checkPanel(*p.Panel, known, &result)
		}
	}
	return result
}

func checkPanel(p dashboard.Panel, known map[string]bool, result *Result) {
	title := "untitled"
	if p.Title != nil {
		title = *p.Title
	}
	for _, target := range p.Targets {
		q, ok := target.(prometheus.Dataquery)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("panel %q: non-Prometheus target %T", title, target))
			continue
		}
		checkExpr(title, q.Expr, known, result)
	}
}

func checkExpr(panel, expr string, known map[string]bool, result *Result) {
	ast, err := parser.ParseExpr(expr)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("panel %q: invalid PromQL %q: %v", panel, expr, err))
		return
	}
	parser.Inspect(ast, func(node parser.Node, _ []parser.Node) error {
		vs, ok := node.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !known[vs.Name] && !known[baseMetric(vs.Name)] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("panel %q: unknown metric %q", panel, vs.Name))
		}
		return nil
	})
}

func baseMetric(name string) string {
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}
