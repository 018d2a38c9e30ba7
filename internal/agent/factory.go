package agent

import (
	"errors"
	"fmt"
	"log"

	"github.com/ArkMaster123/arkagentic/internal/agent/telemetry"
	"github.com/ArkMaster123/arkagentic/internal/persona"
	"github.com/ArkMaster123/arkagentic/internal/tools"
)

// ErrUnknownPersona is returned when a requested persona id is not in
// the registry.
var ErrUnknownPersona = errors.New("unknown persona")

// Factory builds agents from the persona registry. Unknown persona ids
// fail loudly; unknown model ids degrade to the default model.
type Factory struct {
	provider  Provider
	tools     []tools.Tool
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewFactory creates a factory over the given provider and tool belt.
func NewFactory(provider Provider, tel *telemetry.Telemetry, toolBelt []tools.Tool) *Factory {
	return &Factory{
		provider:  provider,
		tools:     toolBelt,
		telemetry: tel,
		logger:    log.New(log.Writer(), "[AGENT] ", log.LstdFlags),
	}
}

// Create builds one agent for the persona, bound to the resolved model.
func (f *Factory) Create(personaID, modelID string) (*Agent, error) {
	p, ok := persona.Lookup(personaID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPersona, personaID)
	}
	a := &Agent{
		Persona:  p,
		Model:    ResolveModel(modelID),
		provider: f.provider,
		tools:    f.tools,
		logger:   f.logger,
	}
	if f.telemetry != nil {
		a.onTool = f.telemetry.RecordTool
	}
	return a, nil
}

// Close releases the shared provider handle. Agents built by this
// factory borrow the handle; none of them close it themselves.
func (f *Factory) Close() {
	f.provider.Close()
}

// CreateAll builds one agent per registered persona.
func (f *Factory) CreateAll(modelID string) (map[string]*Agent, error) {
	out := make(map[string]*Agent)
	for _, p := range persona.All() {
		a, err := f.Create(p.ID, modelID)
		if err != nil {
			return nil, err
		}
		out[p.ID] = a
	}
	return out, nil
}
