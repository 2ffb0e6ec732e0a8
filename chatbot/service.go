package chatbot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
)

const maxShown = 3

type Request struct {
	Message string `json:"message"`
	History []Turn `json:"conversationHistory"`
}

type Response struct {
	Reply       string            `json:"reply"`
	Status      Status            `json:"status"`
	Properties  []models.Property `json:"properties"`
	Suggestions []string          `json:"suggestions"`
}

// Service answers chat messages: extract, match, fall back to
// alternatives, then compose.
type Service struct {
	matcher      *Matcher
	alternatives *Alternatives
	composer     *Composer
	log          *slog.Logger
}

func NewService(finder PropertyFinder, composer *Composer, log *slog.Logger) *Service {
	return &Service{
		matcher:      NewMatcher(finder, log),
		alternatives: NewAlternatives(finder, log),
		composer:     composer,
		log:          log,
	}
}

func (s *Service) Reply(ctx context.Context, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperr.Validation("Message is required")
	}

	criteria := Extract(message)
	matches := s.matcher.Match(ctx, criteria)

	var alternatives []models.Property
	if len(matches) == 0 {
		alternatives = s.alternatives.Suggest(ctx, message)
	}

	composed := s.composer.Compose(ctx, message, req.History, matches, alternatives)
	s.log.InfoContext(ctx, "chat message answered",
		"status", composed.Status,
		"matches", len(matches),
		"alternatives", len(alternatives),
		"fallback", composed.Fallback)

	shown := matches
	if len(shown) == 0 {
		shown = alternatives
	}
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}

	return &Response{
		Reply:       composed.Reply,
		Status:      composed.Status,
		Properties:  shown,
		Suggestions: Suggestions(message, matches, alternatives),
	}, nil
}
