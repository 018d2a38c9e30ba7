package agent

import "log"

// ModelInfo describes one model reachable through the OpenRouter
// chat-completions endpoint.
type ModelInfo struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	MaxTokens       int     `json:"max_tokens"`
	CostPer1KInput  float64 `json:"cost_per_1k_input"`
	CostPer1KOutput float64 `json:"cost_per_1k_output"`
}

// DefaultModel is used whenever no model is requested or the requested
// id is not in the catalog, unless SetDefaultModel picked another one.
const DefaultModel = "anthropic/claude-3.5-haiku"

var defaultModel = DefaultModel

var modelCatalog = map[string]ModelInfo{
	"anthropic/claude-3.5-haiku": {
		ID:              "anthropic/claude-3.5-haiku",
		Name:            "Claude 3.5 Haiku",
		Provider:        "anthropic",
		MaxTokens:       8192,
		CostPer1KInput:  0.0008,
		CostPer1KOutput: 0.004,
	},
	"anthropic/claude-3.5-sonnet": {
		ID:              "anthropic/claude-3.5-sonnet",
		Name:            "Claude 3.5 Sonnet",
		Provider:        "anthropic",
		MaxTokens:       8192,
		CostPer1KInput:  0.003,
		CostPer1KOutput: 0.015,
	},
	"openai/gpt-4o-mini": {
		ID:              "openai/gpt-4o-mini",
		Name:            "GPT-4o mini",
		Provider:        "openai",
		MaxTokens:       16384,
		CostPer1KInput:  0.00015,
		CostPer1KOutput: 0.0006,
	},
	"openai/gpt-4o": {
		ID:              "openai/gpt-4o",
		Name:            "GPT-4o",
		Provider:        "openai",
		MaxTokens:       16384,
		CostPer1KInput:  0.0025,
		CostPer1KOutput: 0.01,
	},
	"google/gemini-flash-1.5": {
		ID:              "google/gemini-flash-1.5",
		Name:            "Gemini 1.5 Flash",
		Provider:        "google",
		MaxTokens:       8192,
		CostPer1KInput:  0.000075,
		CostPer1KOutput: 0.0003,
	},
	"meta-llama/llama-3.1-70b-instruct": {
		ID:              "meta-llama/llama-3.1-70b-instruct",
		Name:            "Llama 3.1 70B Instruct",
		Provider:        "meta",
		MaxTokens:       8192,
		CostPer1KInput:  0.00059,
		CostPer1KOutput: 0.00079,
	},
}

var catalogLogger = log.New(log.Writer(), "[MODELS] ", log.LstdFlags)

// ResolveModel maps a requested model id to a catalog entry. Unknown
// ids degrade to the default model with a logged warning rather than
// failing the request.
func ResolveModel(id string) ModelInfo {
	if id == "" {
		return modelCatalog[defaultModel]
	}
	if info, ok := modelCatalog[id]; ok {
		return info
	}
	catalogLogger.Printf("Warning: unknown model %q, falling back to %s", id, defaultModel)
	return modelCatalog[defaultModel]
}

// Default returns the model id used when no model is requested.
func Default() string { return defaultModel }

// SetDefaultModel points empty and unknown model requests at a
// configured catalog entry. Ids not in the catalog are ignored.
func SetDefaultModel(id string) {
	if id == "" || id == defaultModel {
		return
	}
	if _, ok := modelCatalog[id]; !ok {
		catalogLogger.Printf("Warning: configured default model %q not in catalog, keeping %s", id, defaultModel)
		return
	}
	defaultModel = id
	catalogLogger.Printf("default model set to %s", id)
}

// Models returns the full catalog.
func Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(modelCatalog))
	for _, info := range modelCatalog {
		out = append(out, info)
	}
	return out
}

// CalculateCost prices a call against the catalog entry for the model.
func CalculateCost(inputTokens, outputTokens int64, model string) float64 {
	info := ResolveModel(model)
	inputCost := float64(inputTokens) / 1000.0 * info.CostPer1KInput
	outputCost := float64(outputTokens) / 1000.0 * info.CostPer1KOutput
	return inputCost + outputCost
}
