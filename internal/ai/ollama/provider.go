// Package ollama implements the AIProvider interface against a local
// Ollama runtime's /api/chat endpoint (non-streaming).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/arjunks/datahound/internal/config"
	"github.com/arjunks/datahound/pkg/models"
)

// Provider calls a local Ollama runtime. The HTTP client carries no timeout
// of its own; callers bound each completion via the request context.
type Provider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewProvider creates an Ollama provider from configuration.
func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{},
	}
}

func (p *Provider) Name() string { return "ollama" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Think    bool           `json:"think,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Complete sends a non-streaming chat request and returns the assistant
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

	creq := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Think:    req.Thinking,
		Options:  map[string]any{},
	}
	if req.Temperature > 0 {
		creq.Options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		creq.Options["num_predict"] = req.MaxTokens
	}

	payload, err := json.Marshal(creq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var cresp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cresp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return cresp.Message.Content, nil
}
