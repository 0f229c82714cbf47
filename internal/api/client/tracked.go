package client

import (
	"context"
	"net/url"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// trackedRequest contains only the fields the API accepts for adding a watch.
type trackedRequest struct {
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	Retailer string `json:"retailer,omitempty"`
	AddedBy  string `json:"added_by,omitempty"`
}

// trackedPage is the list response envelope.
type trackedPage struct {
	Tracked []domain.TrackedProduct `json:"tracked"`
	Total   int                     `json:"total"`
}

// ListTracked returns all tracked products.
func (c *Client) ListTracked(ctx context.Context) ([]domain.TrackedProduct, error) {
	var page trackedPage
	if err := c.get(ctx, "/api/v1/tracked", &page); err != nil {
		return nil, err
	}
	return page.Tracked, nil
}

// AddTracked adds a product URL to the watch list.
func (c *Client) AddTracked(ctx context.Context, t *domain.TrackedProduct) (*domain.TrackedProduct, error) {
	req := trackedRequest{
		URL:      t.URL,
		Name:     t.Name,
		Retailer: t.Retailer,
		AddedBy:  t.AddedBy,
	}

	var added domain.TrackedProduct
	if err := c.post(ctx, "/api/v1/tracked", req, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

// RemoveTracked removes a product URL from the watch list.
func (c *Client) RemoveTracked(ctx context.Context, productURL string) error {
	path := "/api/v1/tracked?url=" + url.QueryEscape(productURL)
	return c.del(ctx, path, nil)
}
