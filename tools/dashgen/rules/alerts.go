package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// restock-monitor operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "restock-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "restock-alerts",
					Rules: []Rule{
						{
							Alert: "RestockMonitorDown",
							Expr:  `absent(up{job="restock-monitor"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Restock Monitor is down",
								"description": "The restock-monitor job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "RestockReadinessDown",
							Expr:  `restock_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Restock Monitor readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes. The database is likely unreachable.",
							},
						},
						{
							Alert: "RestockMonitorLoopStopped",
							Expr:  `restock_monitor_running == 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Restock check loop is not running",
								"description": "The background check loop has been stopped for more than 5 minutes. No retailers are being monitored.",
							},
						},
						{
							Alert: "RestockHighErrorRate",
							Expr:  `restock:http_errors:rate5m / restock:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on Restock Monitor",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "RestockScrapeErrors",
							Expr:  `restock:scrape_errors:rate5m > 0`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Scrape errors detected",
								"description": "One or more retailer scrapers have been producing errors for more than 10 minutes.",
							},
						},
						{
							Alert: "RestockBreakerOpen",
							Expr:  `restock_breaker_state == 1`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Retailer circuit breaker open",
								"description": "A retailer circuit breaker has been open for more than 15 minutes. That retailer is not being checked.",
							},
						},
						{
							Alert: "RestockAlertDeliveryFailures",
							Expr:  `increase(restock_alerts_failed_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Alert delivery failures detected",
								"description": "One or more stock alerts (Discord webhooks) have failed to send and been queued for retry.",
							},
						},
						{
							Alert: "RestockDLQBacklog",
							Expr:  `restock_dlq_depth > 10`,
							For:   "30m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Failed delivery queue is backing up",
								"description": "More than 10 failed alert deliveries have been pending retry for over 30 minutes.",
							},
						},
					},
				},
			},
		},
	}
}
