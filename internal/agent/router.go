package agent

import (
	"strings"

	"github.com/ArkMaster123/arkagentic/internal/persona"
)

// keywordGroup maps one category of trigger words to a persona.
// Groups are checked in order; the first group with a hit wins.
type keywordGroup struct {
	persona  string
	keywords []string
}

var routingTable = []keywordGroup{
	{
		persona: "scout",
		keywords: []string{
			"research", "find", "search", "look up", "company",
			"prospect", "people", "who is",
		},
	},
	{
		persona: "sage",
		keywords: []string{
			"analyze", "compare", "versus", "vs", "strategy",
			"recommend", "should", "pros and cons", "evaluate",
		},
	},
	{
		persona: "chronicle",
		keywords: []string{
			"article", "write", "news", "cqc", "care home",
			"social care", "healthcare", "summarize", "report",
		},
	},
	{
		persona: "trends",
		keywords: []string{
			"trending", "this week", "breaking", "keywords", "buzz",
			"what's happening", "current events",
		},
	},
	{
		persona: "gandalfius",
		keywords: []string{
			"freelance", "freelancing", "pricing", "rates", "rate",
			"clients", "client", "proposal", "scope", "scope creep",
			"hourly", "value-based", "contract", "charge", "business",
			"entrelancer", "raise rates", "budget",
		},
	},
}

// Route picks the persona whose keyword group first matches the query.
// Matching is case-insensitive raw substring containment, so short
// keywords like "vs" fire inside longer words too. Queries no group
// claims fall through to the coordinator.
func Route(query string) string {
	q := strings.ToLower(query)
	for _, g := range routingTable {
		for _, kw := range g.keywords {
			if strings.Contains(q, kw) {
				return g.persona
			}
		}
	}
	return persona.Coordinator
}
