package agent

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/ArkMaster123/arkagentic/config"
	"github.com/ArkMaster123/arkagentic/internal/persona"
)

// SwarmResult is the outcome of one collaborative run.
type SwarmResult struct {
	FinalText string
	History   []string
	Status    string
}

// SwarmEngine runs a query through the full agent team.
type SwarmEngine interface {
	Execute(ctx context.Context, query string) (SwarmResult, error)
}

// handoffPattern matches a delegation directive an agent may place at
// the start of its reply, e.g. "HANDOFF: scout".
var handoffPattern = regexp.MustCompile(`(?i)^\s*HANDOFF:\s*([a-z_-]+)\s*\n?`)

const swarmInstructions = `

## TEAM COLLABORATION
You may delegate this query to a teammate. To hand off, reply with a
single first line of the form "HANDOFF: <agent-id>" where <agent-id>
is one of: %s. Any text after that line is passed to the teammate as
context. If you can answer yourself, just answer without a handoff.`

// HandoffSwarm is a bounded handoff loop over the persona roster. The
// coordinator takes the query first; each agent may pass it on until
// the handoff or iteration budget runs out.
type HandoffSwarm struct {
	agents map[string]*Agent
	entry  string
	cfg    config.SwarmConfig
	logger *log.Logger
}

// NewHandoffSwarm builds a swarm over one agent per persona, all bound
// to the default model.
func NewHandoffSwarm(factory *Factory, cfg config.SwarmConfig) (*HandoffSwarm, error) {
	agents, err := factory.CreateAll("")
	if err != nil {
		return nil, fmt.Errorf("swarm agents: %w", err)
	}
	if _, ok := agents[persona.Coordinator]; !ok {
		return nil, fmt.Errorf("swarm entry point %q missing", persona.Coordinator)
	}
	if cfg.MaxHandoffs <= 0 {
		cfg.MaxHandoffs = 10
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 15
	}
	if cfg.ExecutionTimeout <= 0 {
		cfg.ExecutionTimeout = 120 * time.Second
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = 30 * time.Second
	}
	return &HandoffSwarm{
		agents: agents,
		entry:  persona.Coordinator,
		cfg:    cfg,
		logger: log.New(log.Writer(), "[SWARM] ", log.LstdFlags),
	}, nil
}

// Execute runs the handoff loop to completion or budget exhaustion.
func (s *HandoffSwarm) Execute(ctx context.Context, query string) (SwarmResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExecutionTimeout)
	defer cancel()

	current := s.entry
	handoffs := 0
	history := []string{}
	input := query

	for iteration := 0; iteration < s.cfg.MaxIterations; iteration++ {
		a := s.agents[current]
		history = append(history, current)
		s.logger.Printf("turn %d: %s handling query (%d handoffs so far)", iteration+1, current, handoffs)

		reply, err := s.runTurn(ctx, a, input)
		if err != nil {
			return SwarmResult{History: history, Status: StatusError}, fmt.Errorf("agent %s: %w", current, err)
		}

		next, rest := parseHandoff(reply)
		if next == "" {
			return SwarmResult{FinalText: reply, History: history, Status: StatusCompleted}, nil
		}
		if _, ok := s.agents[next]; !ok || next == current {
			// Bad or circular handoff target: keep the remaining text
			// as the answer rather than failing the run.
			s.logger.Printf("ignoring handoff from %s to %q", current, next)
			return SwarmResult{FinalText: rest, History: history, Status: StatusCompleted}, nil
		}
		if handoffs >= s.cfg.MaxHandoffs {
			s.logger.Printf("handoff budget exhausted at %s", current)
			return SwarmResult{FinalText: rest, History: history, Status: StatusCompleted}, nil
		}

		handoffs++
		current = next
		input = fmt.Sprintf("%s\n\nContext from %s:\n%s", query, history[len(history)-1], rest)
	}

	return SwarmResult{History: history, Status: StatusError}, fmt.Errorf("iteration budget exhausted after %d turns", s.cfg.MaxIterations)
}

func (s *HandoffSwarm) runTurn(ctx context.Context, a *Agent, input string) (string, error) {
	turnCtx, cancel := context.WithTimeout(ctx, s.cfg.TurnTimeout)
	defer cancel()

	roster := strings.Join(rosterExcept(a.Persona.ID), ", ")
	messages := []Message{
		{Role: "system", Content: a.Persona.SystemPrompt + fmt.Sprintf(swarmInstructions, roster)},
		{Role: "user", Content: input},
	}
	text, _, _, err := a.provider.Generate(turnCtx, messages, a.Model.ID)
	return text, err
}

// parseHandoff extracts a handoff target from a reply. Returns the
// target id and the remaining text, or "" when the reply is final.
func parseHandoff(reply string) (string, string) {
	m := handoffPattern.FindStringSubmatch(reply)
	if m == nil {
		return "", reply
	}
	rest := strings.TrimSpace(handoffPattern.ReplaceAllString(reply, ""))
	return strings.ToLower(m[1]), rest
}

func rosterExcept(id string) []string {
	var out []string
	for _, pid := range persona.IDs() {
		if pid != id {
			out = append(out, pid)
		}
	}
	return out
}
