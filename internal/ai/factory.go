// Package ai implements the optional model enrichment layer: provider
// selection, prompt construction and reconciliation of model replies
// against the deterministic ground truth.
package ai

import (
	"fmt"

	"github.com/arjunks/datahound/internal/ai/ollama"
	"github.com/arjunks/datahound/internal/ai/openai"
	"github.com/arjunks/datahound/internal/config"
	"github.com/arjunks/datahound/pkg/models"
)

// NewProvider constructs the configured AI provider. Called once at server
// startup. An empty provider name returns (nil, nil): enrichment disabled.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "vllm":
		// vLLM serves an OpenAI-compatible API; reuse the same client.
		return openai.NewCompatibleProvider("vllm", cfg.VLLM.BaseURL, "", cfg.VLLM.Model), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of ollama, vllm, openai, or empty", cfg.Provider)
	}
}
