package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// StatsProvider reports monitor activity and per-source breaker states.
type StatsProvider interface {
	Stats() domain.Stats
	BreakerStates() map[string]string
}

// ProductCounter reports tracked product and recent alert totals.
type ProductCounter interface {
	CountProducts(ctx context.Context) (total int, inStock int, err error)
	CountRecentAlerts(ctx context.Context, window time.Duration) (int, error)
}

// StatusHandler handles GET /api/v1/status.
type StatusHandler struct {
	monitor StatsProvider
	store   ProductCounter
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(monitor StatsProvider, store ProductCounter) *StatusHandler {
	return &StatusHandler{monitor: monitor, store: store}
}

// StatusOutput is the response for GET /api/v1/status.
type StatusOutput struct {
	Body struct {
		domain.Stats
		ProductsTracked int               `json:"products_tracked"`
		ProductsInStock int               `json:"products_in_stock"`
		AlertsLast24h   int               `json:"alerts_last_24h"`
		Breakers        map[string]string `json:"breakers"`
	}
}

// GetStatus returns a snapshot of monitor activity and product totals.
func (h *StatusHandler) GetStatus(ctx context.Context, _ *struct{}) (*StatusOutput, error) {
	total, inStock, err := h.store.CountProducts(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to count products")
	}

	recent, err := h.store.CountRecentAlerts(ctx, 24*time.Hour)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to count recent alerts")
	}

	resp := &StatusOutput{}
	resp.Body.Stats = h.monitor.Stats()
	resp.Body.ProductsTracked = total
	resp.Body.ProductsInStock = inStock
	resp.Body.AlertsLast24h = recent
	resp.Body.Breakers = h.monitor.BreakerStates()
	return resp, nil
}

// RegisterStatusRoutes registers the status route on the Huma API.
func RegisterStatusRoutes(api huma.API, h *StatusHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Get monitor status",
		Description: "Returns check counters, recent errors, breaker states, and product totals.",
		Tags:        []string{"monitor"},
	}, h.GetStatus)
}
