package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// ProductFilter holds optional filters for listing products.
type ProductFilter struct {
	Retailer string
	Category string
	InStock  *bool
	Limit    int
	Offset   int
	OrderBy  string
}

// ProductPage is one page of product results.
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ListProducts returns products matching the filter.
func (c *Client) ListProducts(ctx context.Context, f *ProductFilter) (*ProductPage, error) {
	q := url.Values{}
	if f != nil {
		if f.Retailer != "" {
			q.Set("retailer", f.Retailer)
		}
		if f.Category != "" {
			q.Set("category", f.Category)
		}
		if f.InStock != nil {
			q.Set("in_stock", strconv.FormatBool(*f.InStock))
		}
		if f.Limit > 0 {
			q.Set("limit", strconv.Itoa(f.Limit))
		}
		if f.Offset > 0 {
			q.Set("offset", strconv.Itoa(f.Offset))
		}
		if f.OrderBy != "" {
			q.Set("order_by", f.OrderBy)
		}
	}

	path := "/api/v1/products"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var page ProductPage
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct returns the last-known state for a product URL.
func (c *Client) GetProduct(ctx context.Context, productURL string) (*domain.Product, error) {
	var p domain.Product
	path := "/api/v1/products/lookup?url=" + url.QueryEscape(productURL)
	if err := c.get(ctx, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
