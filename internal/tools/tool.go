package tools

import "context"

// Tool is a capability agents can call before answering. Relevant
// decides from the raw query whether the tool should run at all;
// Invoke returns plain text the agent folds into its context.
type Tool interface {
	Name() string
	Relevant(query string) bool
	Invoke(ctx context.Context, query string) (string, error)
}
