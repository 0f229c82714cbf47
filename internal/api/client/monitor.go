package client

import (
	"context"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// Status is the monitor status the API reports.
type Status struct {
	domain.Stats
	ProductsTracked int               `json:"products_tracked"`
	ProductsInStock int               `json:"products_in_stock"`
	AlertsLast24h   int               `json:"alerts_last_24h"`
	Breakers        map[string]string `json:"breakers"`
}

// CheckResult is the outcome of a manual check.
type CheckResult struct {
	Status string              `json:"status"`
	Events []domain.StockEvent `json:"events"`
}

// GetStatus returns the monitor status.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.get(ctx, "/api/v1/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RunCheck triggers one full check cycle and returns the events it produced.
func (c *Client) RunCheck(ctx context.Context) (*CheckResult, error) {
	var r CheckResult
	if err := c.post(ctx, "/api/v1/check", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
