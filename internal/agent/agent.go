package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ArkMaster123/arkagentic/internal/persona"
	"github.com/ArkMaster123/arkagentic/internal/tools"
)

// Agent binds a persona to a model, a provider, and a tool belt.
type Agent struct {
	Persona  persona.Persona
	Model    ModelInfo
	provider Provider
	tools    []tools.Tool
	logger   *log.Logger
	onTool   func(name string, err error)
}

// Respond runs a blocking completion for the query and returns the
// text plus token usage.
func (a *Agent) Respond(ctx context.Context, query string, onTool func(name string)) (string, int64, int64, error) {
	messages := a.buildMessages(ctx, query, onTool)
	return a.provider.Generate(ctx, messages, a.Model.ID)
}

// RespondStream runs a streaming completion, forwarding content deltas
// to onDelta as they arrive.
func (a *Agent) RespondStream(ctx context.Context, query string, onTool func(name string), onDelta func(delta string)) (string, error) {
	messages := a.buildMessages(ctx, query, onTool)
	return a.provider.Stream(ctx, messages, a.Model.ID, onDelta)
}

// buildMessages assembles the chat, running any relevant tools first
// and folding their output into the system context. Tool failures are
// logged and skipped; the agent still answers.
func (a *Agent) buildMessages(ctx context.Context, query string, onTool func(name string)) []Message {
	system := a.Persona.SystemPrompt

	var toolCtx strings.Builder
	for _, t := range a.tools {
		if !t.Relevant(query) {
			continue
		}
		if onTool != nil {
			onTool(t.Name())
		}
		out, err := t.Invoke(ctx, query)
		if a.onTool != nil {
			a.onTool(t.Name(), err)
		}
		if err != nil {
			a.logger.Printf("tool %s failed: %v", t.Name(), err)
			continue
		}
		toolCtx.WriteString(out)
		toolCtx.WriteString("\n\n")
	}
	if toolCtx.Len() > 0 {
		system = fmt.Sprintf("%s\n\n## TOOL CONTEXT\n%s", system, strings.TrimSpace(toolCtx.String()))
	}

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: query},
	}
}
