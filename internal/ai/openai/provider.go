// Package openai implements the AIProvider interface against any
// OpenAI-compatible chat completions endpoint. vLLM serves the same API,
// so the vllm provider is this client under a different name.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/arjunks/datahound/internal/config"
	"github.com/arjunks/datahound/pkg/models"
)

// Provider calls a /chat/completions endpoint. The HTTP client carries no
// timeout of its own; callers bound each completion via the request context.
type Provider struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewProvider creates a provider targeting the OpenAI API.
func NewProvider(cfg config.OpenAIConfig) *Provider {
	return NewCompatibleProvider("openai", cfg.BaseURL, cfg.APIKey, cfg.Model)
}

// NewCompatibleProvider creates a provider against any OpenAI-compatible
// server. apiKey may be empty for servers that do not authenticate.
func NewCompatibleProvider(name, baseURL, apiKey, model string) *Provider {
	return &Provider{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}
}

func (p *Provider) Name() string { return p.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a chat completion request and returns the first choice's
// message content.
func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	messages := make([]chatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return "", fmt.Errorf("%s returned status %d: %s", p.name, resp.StatusCode, string(body))
	}

	var cresp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cresp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if cresp.Error != nil {
		return "", fmt.Errorf("%s error: %s", p.name, cresp.Error.Message)
	}
	if len(cresp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}
	return cresp.Choices[0].Message.Content, nil
}
