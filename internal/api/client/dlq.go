package client

import (
	"context"
	"fmt"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// RetryPassResult is the outcome of a manual dead-letter retry pass.
type RetryPassResult struct {
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// DLQPage is one page of unresolved dead-letter entries.
type DLQPage struct {
	Entries []domain.FailedDelivery `json:"entries"`
	Count   int                     `json:"count"`
}

// ListDLQ returns unresolved dead-letter entries, newest first.
func (c *Client) ListDLQ(ctx context.Context, limit int) (*DLQPage, error) {
	path := "/api/v1/dlq"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var page DLQPage
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetDLQStats returns dead-letter queue occupancy counts.
func (c *Client) GetDLQStats(ctx context.Context) (*domain.DLQStats, error) {
	var stats domain.DLQStats
	if err := c.get(ctx, "/api/v1/dlq/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RunDLQRetry triggers one dead-letter retry pass.
func (c *Client) RunDLQRetry(ctx context.Context) (*RetryPassResult, error) {
	var r RetryPassResult
	if err := c.post(ctx, "/api/v1/dlq/retry", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
