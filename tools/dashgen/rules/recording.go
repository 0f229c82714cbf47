package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "restock-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "restock-recording",
					Rules: []Rule{
						{
							Record: "restock:http_requests:rate5m",
							Expr:   `sum(rate(restock_http_requests_total[5m]))`,
						},
						{
							Record: "restock:http_errors:rate5m",
							Expr:   `sum(rate(restock_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "restock:fetches:rate5m",
							Expr:   `sum(rate(restock_fetches_total[5m])) by (source)`,
						},
						{
							Record: "restock:scrape_errors:rate5m",
							Expr:   `rate(restock_scrape_errors_total[5m])`,
						},
						{
							Record: "restock:alerts_sent:rate5m",
							Expr:   `sum(rate(restock_alerts_sent_total[5m]))`,
						},
						{
							Record: "restock:alerts_failed:rate5m",
							Expr:   `sum(rate(restock_alerts_failed_total[5m]))`,
						},
					},
				},
			},
		},
	}
}
