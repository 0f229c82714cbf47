package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tcg-tools/restock-monitor/internal/store"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// ProductReader is the slice of the store the products surface needs.
type ProductReader interface {
	GetProduct(ctx context.Context, url string) (*domain.Product, error)
	ListProducts(ctx context.Context, opts *store.ProductQuery) ([]domain.Product, int, error)
}

// ProductsHandler handles product query endpoints.
type ProductsHandler struct {
	store ProductReader
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(s ProductReader) *ProductsHandler {
	return &ProductsHandler{store: s}
}

// --- Input/Output types ---

// ListProductsInput is the input for listing products with optional filters.
type ListProductsInput struct {
	Retailer string `query:"retailer" doc:"Filter by retailer key"                enum:"eb_games,jb_hifi,target_au,big_w,kmart,"`
	Category string `query:"category" doc:"Filter by trading-card game"          enum:"pokemon,one_piece,unknown,"`
	InStock  string `query:"in_stock" doc:"Filter by availability (true/false)"  enum:"true,false,"`
	Limit    int    `query:"limit"    doc:"Number of results (default 50)"       minimum:"1" maximum:"500"`
	Offset   int    `query:"offset"   doc:"Pagination offset"                    minimum:"0"`
	OrderBy  string `query:"order_by" doc:"Sort field"                           enum:"last_checked,name,price,"`
}

// ListProductsOutput is the response for listing products.
type ListProductsOutput struct {
	Body struct {
		Products []domain.Product `json:"products"`
		Total    int              `json:"total"`
		Limit    int              `json:"limit"`
		Offset   int              `json:"offset"`
	}
}

// GetProductInput is the input for getting a single product.
type GetProductInput struct {
	URL string `query:"url" required:"true" doc:"Product page URL"`
}

// GetProductOutput is the response for getting a single product.
type GetProductOutput struct {
	Body domain.Product
}

// --- Handlers ---

// ListProducts returns products with optional filters for retailer, category,
// availability, and pagination.
func (h *ProductsHandler) ListProducts(
	ctx context.Context,
	input *ListProductsInput,
) (*ListProductsOutput, error) {
	q := &store.ProductQuery{
		Offset:  input.Offset,
		OrderBy: input.OrderBy,
	}

	if input.Retailer != "" {
		q.Retailer = &input.Retailer
	}

	if input.Category != "" {
		q.Category = &input.Category
	}

	if input.InStock != "" {
		inStock := input.InStock == "true"
		q.InStock = &inStock
	}

	if input.Limit != 0 {
		q.Limit = input.Limit
	}

	products, total, err := h.store.ListProducts(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("product query failed: " + err.Error())
	}

	resp := &ListProductsOutput{}
	resp.Body.Products = products
	resp.Body.Total = total
	resp.Body.Limit = q.Limit
	resp.Body.Offset = q.Offset

	return resp, nil
}

// GetProduct returns a single product by URL.
func (h *ProductsHandler) GetProduct(
	ctx context.Context,
	input *GetProductInput,
) (*GetProductOutput, error) {
	product, err := h.store.GetProduct(ctx, input.URL)
	if errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error404NotFound("product not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("product lookup failed: " + err.Error())
	}

	return &GetProductOutput{Body: *product}, nil
}

// RegisterProductRoutes registers product endpoints with the Huma API.
func RegisterProductRoutes(api huma.API, h *ProductsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Description: "Returns tracked products with optional filters for retailer, category, availability, and pagination.",
		Tags:        []string{"products"},
	}, h.ListProducts)

	huma.Register(api, huma.Operation{
		OperationID: "get-product",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/lookup",
		Summary:     "Get a product by URL",
		Description: "Returns the last-known state for a single product URL.",
		Tags:        []string{"products"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetProduct)
}
