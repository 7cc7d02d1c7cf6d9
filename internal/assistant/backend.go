package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/restaurant-assistant/internal/config"
)

// NewGenerator picks the backend named by cfg.Backend.
func NewGenerator(ctx context.Context, cfg config.AssistantConfig) (Generator, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case "ollama":
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown ASSISTANT_BACKEND %q", cfg.Backend)
	}
}
