package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ArkMaster123/arkagentic/config"
	"github.com/ArkMaster123/arkagentic/internal/agent/telemetry"
	"github.com/ArkMaster123/arkagentic/internal/persona"
)

// Capability values reported by the orchestrator.
const (
	CapabilitySingle        = "single"
	CapabilitySwarm         = "swarm"
	CapabilitySwarmDegraded = "swarm-degraded"
)

const (
	streamChunkRunes = 50
	streamChunkDelay = 10 * time.Millisecond
)

// Orchestrator is the entry point for query processing. The mode
// (single agent vs swarm) is fixed at construction; a swarm that fails
// to build degrades to single mode rather than failing startup.
type Orchestrator struct {
	factory    *Factory
	agents     map[string]*Agent
	swarm      SwarmEngine
	swarmCfg   config.SwarmConfig
	capability string
	telemetry  *telemetry.Telemetry
	logger     *log.Logger
}

// NewOrchestrator builds the orchestrator. When useSwarm is set and
// the swarm cannot be constructed, the orchestrator falls back to
// single mode and reports the degraded capability.
func NewOrchestrator(factory *Factory, swarmCfg config.SwarmConfig, tel *telemetry.Telemetry, useSwarm bool) *Orchestrator {
	o := &Orchestrator{
		factory:    factory,
		swarmCfg:   swarmCfg,
		capability: CapabilitySingle,
		telemetry:  tel,
		logger:     log.New(log.Writer(), "[ORCH] ", log.LstdFlags),
	}
	if agents, err := factory.CreateAll(""); err != nil {
		o.logger.Printf("eager agent build failed, building per call: %v", err)
	} else {
		o.agents = agents
	}
	if useSwarm {
		sw, err := NewHandoffSwarm(factory, swarmCfg)
		if err != nil {
			o.logger.Printf("swarm init failed, falling back to single mode: %v", err)
			o.capability = CapabilitySwarmDegraded
		} else {
			o.swarm = sw
			o.capability = CapabilitySwarm
		}
	}
	o.logger.Printf("orchestrator ready (capability=%s)", o.capability)
	return o
}

// Capability reports the mode the orchestrator actually runs in.
func (o *Orchestrator) Capability() string { return o.capability }

// SwarmActive reports whether queries run through the swarm.
func (o *Orchestrator) SwarmActive() bool { return o.swarm != nil }

// Close releases the provider handle shared by all agents.
func (o *Orchestrator) Close() { o.factory.Close() }

// ProcessQuery answers a query. It never returns an error: failures
// come back as a Result with Status set to error and the failure text
// in Response. useSwarm overrides the orchestrator's mode per request;
// nil means use the constructed mode, and asking for the swarm when
// none is active falls through to single mode.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query, preferred, modelID string, useSwarm *bool) Result {
	if o.useSwarmFor(useSwarm) {
		return o.processWithSwarm(ctx, query)
	}
	return o.processWithSingleAgent(ctx, query, preferred, modelID)
}

// agentFor serves the cached agent for a persona, building a fresh
// uncached one only when the caller overrides the model.
func (o *Orchestrator) agentFor(personaID, modelID string) (*Agent, error) {
	if modelID == "" || modelID == Default() {
		if a, ok := o.agents[personaID]; ok {
			return a, nil
		}
	}
	return o.factory.Create(personaID, modelID)
}

func (o *Orchestrator) useSwarmFor(override *bool) bool {
	if o.swarm == nil {
		return false
	}
	if override == nil {
		return true
	}
	return *override
}

func (o *Orchestrator) processWithSwarm(ctx context.Context, query string) Result {
	start := time.Now()
	o.logger.Printf("processing with swarm: %s", truncate(query, 50))

	res, err := o.swarm.Execute(ctx, query)
	if err != nil {
		o.logger.Printf("swarm error: %v", err)
		o.record(persona.Coordinator, Default(), start, false, len(res.History))
		return Result{
			Response: fmt.Sprintf("I encountered an error processing your request: %v", err),
			Agent:    persona.Coordinator,
			Handoffs: res.History,
			Status:   StatusError,
		}
	}

	final := persona.Coordinator
	if len(res.History) > 0 {
		final = res.History[len(res.History)-1]
	}
	o.logger.Printf("swarm completed, agents: %v", res.History)
	o.record(final, Default(), start, true, len(res.History))
	return Result{
		Response: res.FinalText,
		Agent:    final,
		Handoffs: res.History,
		Status:   res.Status,
	}
}

func (o *Orchestrator) processWithSingleAgent(ctx context.Context, query, preferred, modelID string) Result {
	start := time.Now()
	agentID := preferred
	if agentID == "" {
		agentID = Route(query)
	}

	a, err := o.agentFor(agentID, modelID)
	if err != nil {
		// Unknown preferred agent: hand the query to the coordinator.
		o.logger.Printf("agent %q unavailable (%v), using %s", agentID, err, persona.Coordinator)
		agentID = persona.Coordinator
		a, err = o.agentFor(agentID, modelID)
		if err != nil {
			return Result{
				Response: "No agent available to handle this request.",
				Agent:    persona.Coordinator,
				Handoffs: []string{},
				Status:   StatusError,
			}
		}
	}

	o.logger.Printf("processing with %s: %s", agentID, truncate(query, 50))
	text, inTok, outTok, err := a.Respond(ctx, query, nil)
	if err != nil {
		o.logger.Printf("agent error: %v", err)
		o.recordTokens(agentID, a.Model.ID, start, false, inTok, outTok)
		return Result{
			Response: fmt.Sprintf("I encountered an error: %v", err),
			Agent:    agentID,
			Handoffs: []string{agentID},
			Status:   StatusError,
		}
	}

	o.logger.Printf("agent %s responded: %d chars", agentID, len(text))
	o.recordTokens(agentID, a.Model.ID, start, true, inTok, outTok)
	return Result{
		Response: text,
		Agent:    agentID,
		Handoffs: []string{agentID},
		Status:   StatusCompleted,
	}
}

// StreamQuery answers a query as a stream of events. The channel
// always opens with one start event and closes after exactly one done
// or error event. The producer goroutine owns the channel and closes
// it.
func (o *Orchestrator) StreamQuery(ctx context.Context, query, preferred, modelID string, useSwarm *bool) <-chan StreamEvent {
	events := make(chan StreamEvent, 16)
	go func() {
		defer close(events)
		if o.useSwarmFor(useSwarm) {
			o.streamWithSwarm(ctx, query, events)
			return
		}
		o.streamWithSingleAgent(ctx, query, preferred, modelID, events)
	}()
	return events
}

func (o *Orchestrator) streamWithSingleAgent(ctx context.Context, query, preferred, modelID string, events chan<- StreamEvent) {
	start := time.Now()
	agentID := preferred
	if agentID == "" {
		agentID = Route(query)
	}

	a, err := o.agentFor(agentID, modelID)
	if err != nil {
		agentID = persona.Coordinator
		a, err = o.agentFor(agentID, modelID)
		if err != nil {
			emit(ctx, events, StreamEvent{Type: EventStart, Agent: persona.Coordinator, Model: ResolveModel(modelID).ID})
			emit(ctx, events, StreamEvent{Type: EventError, Agent: persona.Coordinator, Error: "no agent available"})
			return
		}
	}

	emit(ctx, events, StreamEvent{Type: EventStart, Agent: agentID, Model: a.Model.ID})

	onTool := func(name string) {
		emit(ctx, events, StreamEvent{Type: EventTool, Agent: agentID, Tool: name})
	}
	onDelta := func(delta string) {
		emit(ctx, events, StreamEvent{Type: EventChunk, Agent: agentID, Content: delta})
	}

	text, err := a.RespondStream(ctx, query, onTool, onDelta)
	if err != nil {
		o.logger.Printf("stream error: %v", err)
		o.record(agentID, a.Model.ID, start, false, 1)
		emit(ctx, events, StreamEvent{Type: EventError, Agent: agentID, Error: err.Error()})
		return
	}
	o.record(agentID, a.Model.ID, start, true, 1)
	emit(ctx, events, StreamEvent{Type: EventDone, Agent: agentID, Handoffs: []string{agentID}, Content: text})
}

// streamWithSwarm runs the blocking swarm call, then replays the final
// text as fixed-size chunks so clients see the same frame shape as a
// live stream.
func (o *Orchestrator) streamWithSwarm(ctx context.Context, query string, events chan<- StreamEvent) {
	start := time.Now()
	emit(ctx, events, StreamEvent{Type: EventStart, Agent: persona.Coordinator, Model: Default(), SwarmMode: true})

	res, err := o.swarm.Execute(ctx, query)
	final := persona.Coordinator
	if len(res.History) > 0 {
		final = res.History[len(res.History)-1]
	}
	if err != nil {
		o.logger.Printf("swarm stream error: %v", err)
		o.record(final, Default(), start, false, len(res.History))
		emit(ctx, events, StreamEvent{Type: EventError, Agent: final, SwarmMode: true, Error: err.Error()})
		return
	}

	for _, chunk := range rechunk(res.FinalText, streamChunkRunes) {
		if !emit(ctx, events, StreamEvent{Type: EventChunk, Agent: final, SwarmMode: true, Content: chunk}) {
			return
		}
		select {
		case <-time.After(streamChunkDelay):
		case <-ctx.Done():
			return
		}
	}
	o.record(final, Default(), start, true, len(res.History))
	emit(ctx, events, StreamEvent{Type: EventDone, Agent: final, SwarmMode: true, Handoffs: res.History, Content: res.FinalText})
}

// rechunk splits text into rune-bounded slices of at most size runes.
func rechunk(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

// emit sends an event unless the context is already gone.
func emit(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) record(agentID, model string, start time.Time, success bool, handoffs int) {
	if o.telemetry == nil {
		return
	}
	o.telemetry.RecordQuery(telemetry.QueryEvent{
		Agent:    agentID,
		Model:    model,
		Duration: time.Since(start),
		Success:  success,
		Handoffs: handoffs,
	})
}

func (o *Orchestrator) recordTokens(agentID, model string, start time.Time, success bool, inTok, outTok int64) {
	if o.telemetry == nil {
		return
	}
	o.telemetry.RecordQuery(telemetry.QueryEvent{
		Agent:        agentID,
		Model:        model,
		Duration:     time.Since(start),
		Success:      success,
		Cost:         CalculateCost(inTok, outTok, model),
		InputTokens:  inTok,
		OutputTokens: outTok,
		Handoffs:     1,
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
