package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ArkMaster123/arkagentic/config"
)

// Message is one turn of a chat-completions conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the LLM backend agents talk through.
type Provider interface {
	// Generate runs a blocking completion and returns the text plus
	// prompt/completion token usage.
	Generate(ctx context.Context, messages []Message, model string) (string, int64, int64, error)
	// Stream runs a streaming completion, invoking onDelta for each
	// content fragment as it arrives. It returns the full
	// concatenated text.
	Stream(ctx context.Context, messages []Message, model string, onDelta func(delta string)) (string, error)
	Close()
}

// OpenRouterProvider implements Provider over the OpenRouter
// chat-completions API (OpenAI wire format).
type OpenRouterProvider struct {
	cfg    config.LLMConfig
	client *http.Client
}

// ErrNoAPIKey is returned on every completion attempted without a
// configured key.
var ErrNoAPIKey = errors.New("LLM API key not configured (set OPENROUTER_API_KEY or ANTHROPIC_API_KEY)")

// NewOpenRouterProvider creates a provider from the LLM config. A
// missing API key is not fatal here: the key is checked per call, so a
// keyless deployment still serves everything except completions.
func NewOpenRouterProvider(cfg config.LLMConfig) *OpenRouterProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpenRouterProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

func (p *OpenRouterProvider) baseURL() string {
	if p.cfg.BaseURL != "" {
		return strings.TrimRight(p.cfg.BaseURL, "/")
	}
	return "https://openrouter.ai/api/v1"
}

func (p *OpenRouterProvider) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL()+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	return req, nil
}

// Generate runs a blocking completion.
func (p *OpenRouterProvider) Generate(ctx context.Context, messages []Message, model string) (string, int64, int64, error) {
	if p.cfg.APIKey == "" {
		return "", 0, 0, ErrNoAPIKey
	}
	info := ResolveModel(model)

	body, err := json.Marshal(chatRequest{
		Model:       info.ID,
		Messages:    messages,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.maxTokens(info),
	})
	if err != nil {
		return "", 0, 0, fmt.Errorf("marshal: %w", err)
	}

	req, err := p.newRequest(ctx, body)
	if err != nil {
		return "", 0, 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0, 0, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", 0, 0, fmt.Errorf("LLM status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, 0, fmt.Errorf("decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", 0, 0, fmt.Errorf("no choices")
	}
	return out.Choices[0].Message.Content, int64(out.Usage.PromptTokens), int64(out.Usage.CompletionTokens), nil
}

// Stream runs a streaming completion, reading server-sent "data:"
// frames until the [DONE] sentinel.
func (p *OpenRouterProvider) Stream(ctx context.Context, messages []Message, model string, onDelta func(delta string)) (string, error) {
	if p.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}
	info := ResolveModel(model)

	body, err := json.Marshal(chatRequest{
		Model:       info.ID,
		Messages:    messages,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.maxTokens(info),
		Stream:      true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := p.newRequest(ctx, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("LLM status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}
		var frame struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			continue
		}
		if len(frame.Choices) == 0 {
			continue
		}
		if delta := frame.Choices[0].Delta.Content; delta != "" {
			full.WriteString(delta)
			if onDelta != nil {
				onDelta(delta)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("stream read: %w", err)
	}
	return full.String(), nil
}

// Close releases idle connections.
func (p *OpenRouterProvider) Close() {
	p.client.CloseIdleConnections()
}

func (p *OpenRouterProvider) maxTokens(info ModelInfo) int {
	if p.cfg.MaxTokens > 0 && p.cfg.MaxTokens < info.MaxTokens {
		return p.cfg.MaxTokens
	}
	return info.MaxTokens
}
