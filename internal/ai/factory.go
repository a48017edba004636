package ai

import (
	"fmt"

	"seoscout/internal/config"
	"seoscout/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at worker startup.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return newOllamaProvider(cfg.Ollama), nil
	case "openai":
		return newOpenAIProvider(cfg.OpenAI), nil
	case "anthropic":
		return newAnthropicProvider(cfg.Anthropic), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of ollama, openai, anthropic", cfg.Provider)
	}
}
