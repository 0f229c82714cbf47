package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcg-tools/restock-monitor/internal/api/handlers"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

type mockStatsProvider struct {
	stats    domain.Stats
	breakers map[string]string
}

func (m *mockStatsProvider) Stats() domain.Stats { return m.stats }

func (m *mockStatsProvider) BreakerStates() map[string]string { return m.breakers }

type mockProductCounter struct {
	total   int
	inStock int
	recent  int
	err     error
}

func (m *mockProductCounter) CountProducts(_ context.Context) (int, int, error) {
	return m.total, m.inStock, m.err
}

func (m *mockProductCounter) CountRecentAlerts(_ context.Context, _ time.Duration) (int, error) {
	return m.recent, m.err
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	lastCheck := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	monitor := &mockStatsProvider{
		stats: domain.Stats{
			Running:          true,
			TotalChecks:      120,
			SuccessfulChecks: 118,
			FailedChecks:     2,
			AlertsSent:       7,
			LastCheck:        &lastCheck,
		},
		breakers: map[string]string{"eb_games": "closed", "kmart": "open"},
	}

	h := handlers.NewStatusHandler(monitor, &mockProductCounter{total: 42, inStock: 9, recent: 3})

	_, api := humatest.New(t)
	handlers.RegisterStatusRoutes(api, h)

	resp := api.Get("/api/v1/status")
	require.Equal(t, http.StatusOK, resp.Code)

	body := resp.Body.String()
	assert.Contains(t, body, `"running":true`)
	assert.Contains(t, body, `"total_checks":120`)
	assert.Contains(t, body, `"alerts_sent":7`)
	assert.Contains(t, body, `"products_tracked":42`)
	assert.Contains(t, body, `"products_in_stock":9`)
	assert.Contains(t, body, `"alerts_last_24h":3`)
	assert.Contains(t, body, `"kmart":"open"`)
}

func TestGetStatus_StoreError(t *testing.T) {
	t.Parallel()

	h := handlers.NewStatusHandler(&mockStatsProvider{}, &mockProductCounter{err: assert.AnError})

	_, api := humatest.New(t)
	handlers.RegisterStatusRoutes(api, h)

	resp := api.Get("/api/v1/status")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
}
