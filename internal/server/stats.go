package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArkMaster123/arkagentic/internal/agent/telemetry"
)

// StatsHandler exposes the accumulated LLM spend and usage counters.
// Prometheus has the same numbers as time series; this endpoint is the
// cheap human-readable snapshot.
type StatsHandler struct {
	Telemetry *telemetry.Telemetry
}

func (h *StatsHandler) Register(e *echo.Echo) {
	e.GET("/stats", h.stats)
}

func (h *StatsHandler) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, StatsResponse{
		TotalCost:   h.Telemetry.TotalCost(),
		TotalTokens: h.Telemetry.TotalTokens(),
		CostByModel: h.Telemetry.CostByModel(),
		RunsByAgent: h.Telemetry.RunsByAgent(),
	})
}
