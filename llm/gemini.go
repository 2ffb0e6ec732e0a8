package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/config"
)

type GeminiClient struct {
	client *genai.Client
	cfg    config.LLMConfig
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if cfg.Model == "" || strings.HasPrefix(cfg.Model, "gpt") {
		cfg.Model = "gemini-1.5-flash"
	}
	return &GeminiClient{client: client, cfg: cfg}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Generate(ctx context.Context, messages []Message) (string, error) {
	system, history, last := splitForGemini(messages)
	if last == "" {
		return "", apperr.Validation("no user message to answer")
	}

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(float32(c.cfg.Temperature))
	if c.cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.cfg.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	cs := model.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", apperr.Upstream("text generation failed", err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", apperr.Upstream("empty text generation response", nil)
	}
	return sb.String(), nil
}

// splitForGemini separates the system prompt and the final user turn from
// the prior history, mapping assistant turns to Gemini's "model" role.
// Gemini needs history to start with a user turn and alternate roles, so
// leading model turns are dropped, consecutive same-role turns are merged and
// a dangling user turn is folded into the final message.
func splitForGemini(messages []Message) (string, []*genai.Content, string) {
	var system []string
	var turns []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}

	var last string
	if n := len(turns); n > 0 && turns[n-1].Role == RoleUser {
		last = turns[n-1].Content
		turns = turns[:n-1]
	}

	var history []*genai.Content
	for _, m := range turns {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		if len(history) == 0 && role == "model" {
			continue
		}
		if n := len(history); n > 0 && history[n-1].Role == role {
			history[n-1].Parts = append(history[n-1].Parts, genai.Text(m.Content))
			continue
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	if n := len(history); n > 0 && history[n-1].Role == "user" && last != "" {
		var parts []string
		for _, p := range history[n-1].Parts {
			if t, ok := p.(genai.Text); ok {
				parts = append(parts, string(t))
			}
		}
		last = strings.Join(append(parts, last), "\n\n")
		history = history[:n-1]
	}
	return strings.Join(system, "\n\n"), history, last
}
