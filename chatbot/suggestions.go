package chatbot

import (
	"slices"
	"strings"

	"github.com/visheshsingal/hitech/models"
)

const maxSuggestions = 4

var genericSuggestions = []string{
	"Contact information",
	"Schedule a property visit",
	"What amenities are available?",
}

// Suggestions returns up to four follow-up prompts for the chat widget.
func Suggestions(query string, matches, alternatives []models.Property) []string {
	var out []string
	lower := strings.ToLower(query)

	switch {
	case len(matches) > 0:
		p := matches[0]
		switch p.BHK {
		case 2:
			out = append(out, "Show me 3 BHK properties")
		case 3:
			out = append(out, "Show me 2 BHK properties")
		}
		if p.City != "" {
			out = append(out, "More properties in "+p.City)
		}
		switch {
		case p.Price < 50*lakh:
			out = append(out, "Properties under 50 lakh")
		case p.Price < 100*lakh:
			out = append(out, "Properties 50-100 lakh")
		}
	case len(alternatives) == 0:
		if strings.Contains(lower, "bhk") {
			out = append(out, "Show me all available properties")
		}
		if containsAny(lower, "lakh", "crore") {
			out = append(out, "What's your latest property?")
		}
		out = append(out, "Contact information", "Schedule a property visit")
	default:
		out = append(out, "Show me all available properties", "Contact a dealer", "What amenities are available?")
	}

	if len(out) < 3 {
		for _, s := range genericSuggestions {
			if len(out) < maxSuggestions && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
