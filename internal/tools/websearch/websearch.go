package websearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/ArkMaster123/arkagentic/config"
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher queries a web search backend.
type Searcher interface {
	Discover(ctx context.Context, q string, k int) ([]Result, error)
}

// Tool wraps a Searcher behind the agent tool interface.
type Tool struct {
	searcher   Searcher
	maxResults int
}

var triggers = []string{
	"search", "find", "look up", "latest", "news", "research",
	"who is", "current", "today",
}

// New builds the search tool from config, preferring Brave when both
// backends carry keys. Returns nil when no key is configured.
func New(cfg config.ToolsConfig) *Tool {
	max := cfg.MaxResults
	if max <= 0 {
		max = 5
	}
	if cfg.BraveAPIKey != "" {
		return &Tool{searcher: BraveSearch{APIKey: cfg.BraveAPIKey}, maxResults: max}
	}
	if cfg.SerperAPIKey != "" {
		return &Tool{searcher: SerperSearch{APIKey: cfg.SerperAPIKey}, maxResults: max}
	}
	return nil
}

func (t *Tool) Name() string { return "web_search" }

func (t *Tool) Relevant(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range triggers {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Invoke runs the search and formats the hits as a plain text block.
func (t *Tool) Invoke(ctx context.Context, query string) (string, error) {
	results, err := t.searcher.Discover(ctx, query, t.maxResults)
	if err != nil {
		return "", fmt.Errorf("web search: %w", err)
	}
	if len(results) == 0 {
		return "No search results found.", nil
	}
	var b strings.Builder
	b.WriteString("Web search results:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- %s (%s): %s\n", r.Title, r.URL, r.Snippet)
	}
	return b.String(), nil
}
