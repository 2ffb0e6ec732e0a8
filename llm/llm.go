package llm

import (
	"context"
	"fmt"

	"github.com/visheshsingal/hitech/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces a reply for a role-tagged conversation. The first
// message may carry the system prompt.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// New returns the generator for the configured provider, or nil when no
// API key is configured.
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	case "openai", "":
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
