package chatbot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/visheshsingal/hitech/llm"
	"github.com/visheshsingal/hitech/models"
)

type Status string

const (
	StatusExactMatch   Status = "EXACT_MATCH"
	StatusAlternatives Status = "NO_EXACT_MATCH_BUT_ALTERNATIVES"
	StatusNoResults    Status = "NO_RESULTS"
)

func statusOf(matches, alternatives []models.Property) Status {
	switch {
	case len(matches) > 0:
		return StatusExactMatch
	case len(alternatives) > 0:
		return StatusAlternatives
	default:
		return StatusNoResults
	}
}

type ComposerConfig struct {
	Company Company
	// HistoryTurns caps how many prior non-system turns are replayed.
	HistoryTurns int
	// PromptProperties caps how many listings are described to the generator.
	PromptProperties int
}

func DefaultComposerConfig(co Company) ComposerConfig {
	return ComposerConfig{Company: co, HistoryTurns: 6, PromptProperties: 3}
}

// Composer writes the chatbot reply. With a nil generator, or when the
// generator fails, it answers from local templates.
type Composer struct {
	gen llm.Generator
	cfg ComposerConfig
	log *slog.Logger
}

func NewComposer(gen llm.Generator, cfg ComposerConfig, log *slog.Logger) *Composer {
	return &Composer{gen: gen, cfg: cfg, log: log}
}

type Composition struct {
	Reply    string
	Status   Status
	Fallback bool
}

func (c *Composer) Compose(ctx context.Context, message string, history []Turn, matches, alternatives []models.Property) Composition {
	status := statusOf(matches, alternatives)
	out := Composition{Status: status}

	if c.gen == nil {
		out.Reply = fallbackReply(c.cfg.Company, message, matches, alternatives)
		out.Fallback = true
		return out
	}

	shown := matches
	if status == StatusAlternatives {
		shown = alternatives
	}
	if len(shown) > c.cfg.PromptProperties {
		shown = shown[:c.cfg.PromptProperties]
	}

	messages := buildMessages(systemPrompt(c.cfg.Company, status, shown), history, message, c.cfg.HistoryTurns)
	reply, err := c.gen.Generate(ctx, messages)
	if err != nil || strings.TrimSpace(reply) == "" {
		c.log.WarnContext(ctx, "text generation failed, using template reply", "status", status, "error", err)
		out.Reply = fallbackReply(c.cfg.Company, message, matches, alternatives)
		out.Fallback = true
		return out
	}

	out.Reply = reply
	return out
}
