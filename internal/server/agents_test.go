package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ArkMaster123/arkagentic/internal/agent"
	"github.com/ArkMaster123/arkagentic/internal/persona"
)

func TestListAgents(t *testing.T) {
	e := echo.New()
	h := &AgentsHandler{}

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	rec := httptest.NewRecorder()

	if err := h.listAgents(e.NewContext(req, rec)); err != nil {
		t.Fatalf("listAgents: %v", err)
	}

	var roster []persona.Persona
	if err := json.Unmarshal(rec.Body.Bytes(), &roster); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(roster) != 6 {
		t.Fatalf("expected 6 agents got %d", len(roster))
	}
	for _, p := range roster {
		if p.ID == "" || p.Name == "" || p.Role == "" {
			t.Fatalf("incomplete persona: %+v", p)
		}
	}
}

func TestGetAgentUnknown(t *testing.T) {
	e := echo.New()
	h := &AgentsHandler{}

	req := httptest.NewRequest(http.MethodGet, "/agents/oracle", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("oracle")

	err := h.getAgent(ctx)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %v", err)
	}
}

func TestListModelsIncludesDefault(t *testing.T) {
	e := echo.New()
	h := &AgentsHandler{}

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	rec := httptest.NewRecorder()

	if err := h.listModels(e.NewContext(req, rec)); err != nil {
		t.Fatalf("listModels: %v", err)
	}

	var resp struct {
		Default string            `json:"default"`
		Models  []agent.ModelInfo `json:"models"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Default != agent.DefaultModel {
		t.Fatalf("expected default %q got %q", agent.DefaultModel, resp.Default)
	}
	found := false
	for _, m := range resp.Models {
		if m.ID == agent.DefaultModel {
			found = true
		}
	}
	if !found {
		t.Fatalf("default model missing from catalog")
	}
}
