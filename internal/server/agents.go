package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArkMaster123/arkagentic/internal/agent"
	"github.com/ArkMaster123/arkagentic/internal/persona"
)

// AgentsHandler exposes the persona roster and the model catalog.
type AgentsHandler struct{}

func (h *AgentsHandler) Register(e *echo.Echo) {
	e.GET("/agents", h.listAgents)
	e.GET("/agents/:id", h.getAgent)
	e.GET("/models", h.listModels)
}

func (h *AgentsHandler) listAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, persona.All())
}

func (h *AgentsHandler) getAgent(c echo.Context) error {
	p, ok := persona.Lookup(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown agent")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AgentsHandler) listModels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"default": agent.Default(),
		"models":  agent.Models(),
	})
}
