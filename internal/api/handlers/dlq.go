package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// DLQReader reports dead-letter queue occupancy and contents.
type DLQReader interface {
	DLQStats(ctx context.Context, maxRetries int) (*domain.DLQStats, error)
	ListFailedDeliveries(ctx context.Context, limit int) ([]domain.FailedDelivery, error)
}

// RetryRunner runs one dead-letter retry pass on demand.
type RetryRunner interface {
	ProcessRetries(ctx context.Context) (resolved, failed int, err error)
}

// DLQHandler handles dead-letter queue endpoints.
type DLQHandler struct {
	store      DLQReader
	retry      RetryRunner
	maxRetries int
}

// NewDLQHandler creates a new DLQHandler.
func NewDLQHandler(s DLQReader, r RetryRunner, maxRetries int) *DLQHandler {
	return &DLQHandler{store: s, retry: r, maxRetries: maxRetries}
}

// DLQStatsOutput is the response for GET /api/v1/dlq/stats.
type DLQStatsOutput struct {
	Body domain.DLQStats
}

// ListDLQInput holds query parameters for GET /api/v1/dlq.
type ListDLQInput struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"500" doc:"Maximum entries to return"`
}

// ListDLQOutput is the response for GET /api/v1/dlq.
type ListDLQOutput struct {
	Body struct {
		Entries []domain.FailedDelivery `json:"entries"`
		Count   int                     `json:"count"`
	}
}

// RetryPassOutput is the response for POST /api/v1/dlq/retry.
type RetryPassOutput struct {
	Body struct {
		Resolved int `json:"resolved" doc:"Entries delivered or resolved this pass"`
		Failed   int `json:"failed"   doc:"Entries that failed again this pass"`
	}
}

// GetStats returns dead-letter queue occupancy counts.
func (h *DLQHandler) GetStats(ctx context.Context, _ *struct{}) (*DLQStatsOutput, error) {
	stats, err := h.store.DLQStats(ctx, h.maxRetries)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get dlq stats")
	}
	return &DLQStatsOutput{Body: *stats}, nil
}

// List returns unresolved dead-letter entries, newest first.
func (h *DLQHandler) List(ctx context.Context, input *ListDLQInput) (*ListDLQOutput, error) {
	entries, err := h.store.ListFailedDeliveries(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list dlq entries")
	}
	if entries == nil {
		entries = []domain.FailedDelivery{}
	}

	resp := &ListDLQOutput{}
	resp.Body.Entries = entries
	resp.Body.Count = len(entries)
	return resp, nil
}

// RetryPass runs one retry pass over eligible entries.
func (h *DLQHandler) RetryPass(ctx context.Context, _ *struct{}) (*RetryPassOutput, error) {
	resolved, failed, err := h.retry.ProcessRetries(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("retry pass failed: " + err.Error())
	}

	resp := &RetryPassOutput{}
	resp.Body.Resolved = resolved
	resp.Body.Failed = failed
	return resp, nil
}

// RegisterDLQRoutes registers dead-letter queue endpoints with the Huma API.
func RegisterDLQRoutes(api huma.API, h *DLQHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-dlq",
		Method:      http.MethodGet,
		Path:        "/api/v1/dlq",
		Summary:     "List dead-letter entries",
		Description: "Returns unresolved failed alert deliveries, newest first.",
		Tags:        []string{"dlq"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-dlq-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/dlq/stats",
		Summary:     "Get dead-letter queue stats",
		Description: "Returns pending, resolved, and exhausted entry counts.",
		Tags:        []string{"dlq"},
	}, h.GetStats)

	huma.Register(api, huma.Operation{
		OperationID: "run-dlq-retry",
		Method:      http.MethodPost,
		Path:        "/api/v1/dlq/retry",
		Summary:     "Run a dead-letter retry pass",
		Description: "Re-delivers every eligible failed notification immediately.",
		Tags:        []string{"dlq"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.RetryPass)
}
