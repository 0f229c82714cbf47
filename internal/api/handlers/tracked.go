package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// TrackedStore is the slice of the store the tracked-products surface needs.
type TrackedStore interface {
	AddTracked(ctx context.Context, t *domain.TrackedProduct) error
	ListTracked(ctx context.Context) ([]domain.TrackedProduct, error)
	RemoveTracked(ctx context.Context, url string) (bool, error)
}

// TrackedHandler handles tracked-product endpoints.
type TrackedHandler struct {
	store   TrackedStore
	nowFunc func() time.Time
}

// NewTrackedHandler creates a new TrackedHandler.
func NewTrackedHandler(s TrackedStore) *TrackedHandler {
	return &TrackedHandler{store: s, nowFunc: time.Now}
}

// --- Input/Output types ---

// ListTrackedOutput is the response for listing tracked products.
type ListTrackedOutput struct {
	Body struct {
		Tracked []domain.TrackedProduct `json:"tracked"`
		Total   int                     `json:"total"`
	}
}

// AddTrackedInput is the input for adding a tracked product.
type AddTrackedInput struct {
	Body struct {
		URL      string `json:"url"      required:"true" format:"uri" doc:"Product page URL"`
		Name     string `json:"name"     doc:"Display name"`
		Retailer string `json:"retailer" doc:"Retailer key"`
		AddedBy  string `json:"added_by" doc:"Who asked for the watch"`
	}
}

// AddTrackedOutput is the response for adding a tracked product.
type AddTrackedOutput struct {
	Body domain.TrackedProduct
}

// RemoveTrackedInput is the input for removing a tracked product.
type RemoveTrackedInput struct {
	URL string `query:"url" required:"true" doc:"Product page URL"`
}

// RemoveTrackedOutput is the response for removing a tracked product.
type RemoveTrackedOutput struct {
	Body StatusResponse
}

// --- Handlers ---

// ListTracked returns all tracked products.
func (h *TrackedHandler) ListTracked(ctx context.Context, _ *struct{}) (*ListTrackedOutput, error) {
	tracked, err := h.store.ListTracked(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("tracked query failed: " + err.Error())
	}

	resp := &ListTrackedOutput{}
	resp.Body.Tracked = tracked
	if resp.Body.Tracked == nil {
		resp.Body.Tracked = []domain.TrackedProduct{}
	}
	resp.Body.Total = len(tracked)
	return resp, nil
}

// AddTracked adds a product URL to the watch list.
func (h *TrackedHandler) AddTracked(ctx context.Context, input *AddTrackedInput) (*AddTrackedOutput, error) {
	t := &domain.TrackedProduct{
		URL:      input.Body.URL,
		Name:     input.Body.Name,
		Retailer: input.Body.Retailer,
		AddedBy:  input.Body.AddedBy,
		AddedAt:  h.nowFunc(),
	}

	if err := h.store.AddTracked(ctx, t); err != nil {
		return nil, huma.Error500InternalServerError("adding tracked product failed: " + err.Error())
	}

	return &AddTrackedOutput{Body: *t}, nil
}

// RemoveTracked removes a product URL from the watch list.
func (h *TrackedHandler) RemoveTracked(ctx context.Context, input *RemoveTrackedInput) (*RemoveTrackedOutput, error) {
	removed, err := h.store.RemoveTracked(ctx, input.URL)
	if err != nil {
		return nil, huma.Error500InternalServerError("removing tracked product failed: " + err.Error())
	}
	if !removed {
		return nil, huma.Error404NotFound("tracked product not found")
	}

	resp := &RemoveTrackedOutput{}
	resp.Body.Status = "removed"
	return resp, nil
}

// RegisterTrackedRoutes registers tracked-product endpoints with the Huma API.
func RegisterTrackedRoutes(api huma.API, h *TrackedHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tracked",
		Method:      http.MethodGet,
		Path:        "/api/v1/tracked",
		Summary:     "List tracked products",
		Description: "Returns every product URL on the watch list.",
		Tags:        []string{"tracked"},
	}, h.ListTracked)

	huma.Register(api, huma.Operation{
		OperationID: "add-tracked",
		Method:      http.MethodPost,
		Path:        "/api/v1/tracked",
		Summary:     "Add a tracked product",
		Description: "Adds a product URL to the watch list.",
		Tags:        []string{"tracked"},
	}, h.AddTracked)

	huma.Register(api, huma.Operation{
		OperationID: "remove-tracked",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tracked",
		Summary:     "Remove a tracked product",
		Description: "Removes a product URL from the watch list.",
		Tags:        []string{"tracked"},
		Errors:      []int{http.StatusNotFound},
	}, h.RemoveTracked)
}
