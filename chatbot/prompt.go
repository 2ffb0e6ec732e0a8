package chatbot

import (
	"fmt"
	"strings"

	"github.com/visheshsingal/hitech/llm"
	"github.com/visheshsingal/hitech/models"
)

// Turn is one entry of the client-held conversation history. Type is
// "user", "bot" or "system"; system turns are never replayed.
type Turn struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Company struct {
	Name     string
	Phone    string
	Email    string
	Location string
}

func systemPrompt(co Company, status Status, shown []models.Property) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are an intelligent property assistant for the %s real estate website. Your role is to:

1. Answer user questions naturally and conversationally
2. Help users find properties based on their specific requirements
3. Provide detailed information about properties, pricing, locations, and amenities
4. When no exact match is found, politely inform the user and suggest alternatives
5. Respond directly to what the user asks

Company Information:
- Name: %s
- Phone: %s
- Email: %s
- Location: %s
- Specialization: Premium residential properties

SEARCH STATUS: %s
`, co.Name, co.Name, co.Phone, co.Email, co.Location, status)

	switch status {
	case StatusExactMatch:
		sb.WriteString("\nPERFECT MATCHES FOUND:\n")
		writeProperties(&sb, shown)
		sb.WriteString("\nPresent these properties enthusiastically. They are exactly what the user is looking for.\n")
	case StatusAlternatives:
		sb.WriteString("\nNO EXACT MATCHES for the user's specific requirements.\n\nHowever, we have ALTERNATIVE SUGGESTIONS:\n")
		writeProperties(&sb, shown)
		sb.WriteString(`
IMPORTANT:
- First apologize that we don't have exact matches for their requirements
- Explain what's different (price, BHK, location)
- Present these alternatives as close matches or similar options
- Ask if they'd like to adjust their budget or requirements
`)
	case StatusNoResults:
		fmt.Fprintf(&sb, `
NO PROPERTIES FOUND matching the user's query and no suitable alternatives.

IMPORTANT:
- Politely apologize that we don't currently have properties matching their exact requirements
- Suggest calling %s to discuss requirements
- Offer to notify them when matching properties become available
- Suggest a different budget range, BHK or location
- Offer to show our latest properties
`, co.Phone)
	}

	fmt.Fprintf(&sb, `
CONVERSATION STYLE:
- Be warm, friendly and empathetic
- Answer questions directly and naturally
- Use emojis occasionally
- Always end with a helpful follow-up question or offer
- Keep responses concise (2-4 sentences for most answers)
- For contact queries, provide: Phone: %s, Email: %s`, co.Phone, co.Email)

	return sb.String()
}

func writeProperties(sb *strings.Builder, properties []models.Property) {
	for i, p := range properties {
		sb.WriteString("\n")
		sb.WriteString(describeProperty(i, p))
	}
}

// buildMessages assembles the system prompt, the last maxTurns non-system
// history turns and the current message.
func buildMessages(system string, history []Turn, message string, maxTurns int) []llm.Message {
	kept := make([]Turn, 0, len(history))
	for _, t := range history {
		if t.Type == "system" {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) > maxTurns {
		kept = kept[len(kept)-maxTurns:]
	}

	messages := make([]llm.Message, 0, len(kept)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, t := range kept {
		role := llm.RoleAssistant
		if t.Type == "user" {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Text})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: message})
}
