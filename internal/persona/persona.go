package persona

import "sort"

// Persona describes one of the specialist agents in the roster.
type Persona struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Emoji        string `json:"emoji"`
	Role         string `json:"role"`
	SystemPrompt string `json:"-"`
}

// Coordinator is the persona that anchors the team and catches
// queries no specialist claims.
const Coordinator = "maven"

var registry = map[string]Persona{
	"scout": {
		ID:           "scout",
		Name:         "Scout",
		Emoji:        "🔍",
		Role:         "Research Specialist",
		SystemPrompt: scoutPrompt,
	},
	"sage": {
		ID:           "sage",
		Name:         "Sage",
		Emoji:        "🧙",
		Role:         "Strategic Analyst",
		SystemPrompt: sagePrompt,
	},
	"chronicle": {
		ID:           "chronicle",
		Name:         "Chronicle",
		Emoji:        "✍️",
		Role:         "Newsroom Editor",
		SystemPrompt: chroniclePrompt,
	},
	"trends": {
		ID:           "trends",
		Name:         "Trends",
		Emoji:        "📈",
		Role:         "Intelligence Analyst",
		SystemPrompt: trendsPrompt,
	},
	"maven": {
		ID:           "maven",
		Name:         "Maven",
		Emoji:        "👋",
		Role:         "General Assistant & Coordinator",
		SystemPrompt: mavenPrompt,
	},
	"gandalfius": {
		ID:           "gandalfius",
		Name:         "Gandalfius",
		Emoji:        "🧙‍♂️",
		Role:         "Freelancing Wizard",
		SystemPrompt: gandalfiusPrompt,
	},
}

// Lookup returns the persona for the given id.
func Lookup(id string) (Persona, bool) {
	p, ok := registry[id]
	return p, ok
}

// All returns every persona sorted by id.
func All() []Persona {
	out := make([]Persona, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the ids of every persona sorted alphabetically.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
