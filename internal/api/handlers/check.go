package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// CheckRunner runs one full check cycle on demand.
type CheckRunner interface {
	RunOnce(ctx context.Context) ([]domain.StockEvent, error)
}

// CheckHandler handles manual check trigger requests.
type CheckHandler struct {
	runner CheckRunner
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(r CheckRunner) *CheckHandler {
	return &CheckHandler{runner: r}
}

// CheckOutput is the response body for the check endpoint.
type CheckOutput struct {
	Body struct {
		Status string              `json:"status" example:"check completed" doc:"Check status"`
		Events []domain.StockEvent `json:"events" doc:"Stock events the cycle produced"`
	}
}

// Check runs one full check cycle across all sources and returns the events
// it produced.
func (h *CheckHandler) Check(ctx context.Context, _ *struct{}) (*CheckOutput, error) {
	events, err := h.runner.RunOnce(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("check failed: " + err.Error())
	}

	resp := &CheckOutput{}
	resp.Body.Status = "check completed"
	resp.Body.Events = events
	if resp.Body.Events == nil {
		resp.Body.Events = []domain.StockEvent{}
	}
	return resp, nil
}

// RegisterCheckRoutes registers the manual check endpoint with the Huma API.
func RegisterCheckRoutes(api huma.API, h *CheckHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-check",
		Method:      http.MethodPost,
		Path:        "/api/v1/check",
		Summary:     "Trigger a manual check",
		Description: "Runs one full check cycle: scrape every enabled source, " +
			"diff against stored state, and dispatch alerts.",
		Tags:   []string{"monitor"},
		Errors: []int{http.StatusInternalServerError},
	}, h.Check)
}
