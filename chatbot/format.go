package chatbot

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/visheshsingal/hitech/models"
)

var printer = message.NewPrinter(language.English)

// formatPrice renders a rupee amount with thousands separators.
func formatPrice(price float64) string {
	return "₹" + printer.Sprintf("%.0f", price)
}

func pluralProperty(n int) string {
	if n == 1 {
		return "property"
	}
	return "properties"
}

func describeProperty(i int, p models.Property) string {
	area := p.Area
	if area == "" {
		area = "Not specified"
	}
	amenities := strings.Join(p.Amenities, ", ")
	if amenities == "" {
		amenities = "Basic amenities"
	}

	var sb strings.Builder
	printer.Fprintf(&sb, "%d. %s\n", i+1, p.Title)
	sb.WriteString("   Price: " + formatPrice(p.Price) + "\n")
	printer.Fprintf(&sb, "   Config: %d BHK, %d Bathrooms\n", p.BHK, p.Bathrooms)
	sb.WriteString("   Location: " + p.City + ", " + p.Address + "\n")
	sb.WriteString("   Area: " + area + "\n")
	sb.WriteString("   Amenities: " + amenities + "\n")
	return sb.String()
}
