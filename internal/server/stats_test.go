package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ArkMaster123/arkagentic/config"
	"github.com/ArkMaster123/arkagentic/internal/agent/telemetry"
)

func TestStatsEndpoint(t *testing.T) {
	tel := telemetry.NewTelemetry(config.TelemetryConfig{Enabled: true, CostTracking: true})
	tel.RecordQuery(telemetry.QueryEvent{
		Agent:        "maven",
		Model:        "anthropic/claude-3.5-haiku",
		Duration:     120 * time.Millisecond,
		Success:      true,
		Cost:         0.0042,
		InputTokens:  100,
		OutputTokens: 50,
	})

	e := echo.New()
	h := &StatsHandler{Telemetry: tel}
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	if err := h.stats(e.NewContext(req, rec)); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalCost < 0.0042 {
		t.Errorf("total_cost = %v", resp.TotalCost)
	}
	if resp.TotalTokens < 150 {
		t.Errorf("total_tokens = %v", resp.TotalTokens)
	}
	if resp.RunsByAgent["maven"] < 1 {
		t.Errorf("runs_by_agent = %v", resp.RunsByAgent)
	}
	if resp.CostByModel["anthropic/claude-3.5-haiku"] < 0.0042 {
		t.Errorf("cost_by_model = %v", resp.CostByModel)
	}
}
