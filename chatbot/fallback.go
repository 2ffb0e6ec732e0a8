package chatbot

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/visheshsingal/hitech/models"
)

var greetingPattern = regexp.MustCompile(`\b(?:hello|hi|hey)\b`)

type keywordReply struct {
	match func(lower string) bool
	reply func(co Company) string
}

func anyOf(words ...string) func(string) bool {
	return func(lower string) bool { return containsAny(lower, words...) }
}

// keywordReplies are checked in order; the first match answers.
var keywordReplies = []keywordReply{
	{anyOf("contact", "phone", "call", "dealer"), func(co Company) string {
		return fmt.Sprintf("📞 Contact %s:\n\n• Phone: %s\n• Email: %s\n• Location: %s\n\n"+
			"Our team is ready to assist you! You can also click on any property to contact the dealer directly. How else can I help you? 😊",
			co.Name, co.Phone, co.Email, co.Location)
	}},
	{anyOf("amenities", "features", "facilities"), func(Company) string {
		return "Our properties come with premium amenities:\n\n🅿️ Parking spaces\n🔒 24/7 Security\n🏋️ Gymnasium\n🏊 Swimming pool\n🌳 Landscaped gardens\n⚡ Power backup\n\n" +
			"Each property has different amenities. Want to search for properties with specific features? 😊"
	}},
	{anyOf("visit", "schedule", "viewing", "tour"), func(co Company) string {
		return fmt.Sprintf("I'd love to help you schedule a property visit! 🏠\n\nPlease contact us:\n📱 Call: %s\n📧 Email: %s\n\n"+
			"Or fill out the enquiry form on our Contact page. Our team will arrange a convenient time for you! What type of property are you interested in? 😊",
			co.Phone, co.Email)
	}},
	{anyOf("about", "who are you", "company"), func(co Company) string {
		return fmt.Sprintf("%s - Your trusted real estate partner! 🏡\n\nWe specialize in:\n✅ Premium residential properties\n✅ Expert property consultation\n✅ Transparent dealings\n✅ Customer satisfaction\n\n"+
			"📞 Contact: %s\n📧 Email: %s\n\nHow can I help you find your dream home today? 😊",
			co.Name, co.Phone, co.Email)
	}},
	{anyOf("process", "how to buy", "procedure"), func(co Company) string {
		return fmt.Sprintf("Our property buying process:\n\n1️⃣ Browse & shortlist properties\n2️⃣ Contact our dealer\n3️⃣ Schedule property visit\n4️⃣ Document verification\n5️⃣ Finalize the deal\n\n"+
			"Our expert team guides you through each step! 📞 Call %s for personalized assistance. What type of property interests you? 😊",
			co.Phone)
	}},
	{anyOf("bhk", "lakh", "crore", "property", "flat"), func(co Company) string {
		return fmt.Sprintf("I apologize, but we don't currently have properties matching your specific requirements. 😔\n\n"+
			"Let me help you find alternatives:\n• Adjust your budget range? 💰\n• Try different BHK? 🏠\n• Explore other locations? 📍\n• See our latest properties?\n\n"+
			"📞 Call us at %s and we'll find the perfect match for you! What would you prefer? 😊",
			co.Phone)
	}},
	{greetingPattern.MatchString, func(co Company) string {
		return fmt.Sprintf("Hello! 👋 Welcome to %s! I'm here to help you find your dream property. What are you looking for today? 🏠", co.Name)
	}},
	{anyOf("thank"), func(Company) string {
		return "You're very welcome! 😊 If you have any more questions about properties, feel free to ask. Happy house hunting! 🏠✨"
	}},
}

func helpReply(co Company) string {
	return fmt.Sprintf("I'm here to help you find your perfect property! 🏠\n\nYou can ask me:\n"+
		"• \"Show me 2 BHK under 50 lakh\"\n• \"Properties in Mumbai\"\n• \"What amenities are available?\"\n• \"Contact information\"\n• \"Schedule a property visit\"\n\n"+
		"📞 Or call us: %s\n\nWhat can I help you with? 😊", co.Phone)
}

// fallbackReply answers without the text generator.
func fallbackReply(co Company, message string, matches, alternatives []models.Property) string {
	if len(matches) > 0 {
		p := matches[0]
		return fmt.Sprintf("Great news! I found %d %s that match your requirements! 🎉\n\n"+
			"📍 Top match: %q\n💰 Price: %s\n🏠 %d BHK, %d Bath\n📍 Location: %s\n\n"+
			"Check out the property cards below for full details! Would you like to know more about any of these properties? 😊",
			len(matches), pluralProperty(len(matches)), p.Title, formatPrice(p.Price), p.BHK, p.Bathrooms, p.City)
	}

	if len(alternatives) > 0 {
		a := alternatives[0]
		return fmt.Sprintf("I'm sorry, we don't have properties that exactly match your requirements right now. 😔\n\n"+
			"However, I found %d similar %s you might like!\n\n"+
			"📍 Closest match: %q\n💰 %s\n🏠 %d BHK in %s\n\n"+
			"Would you like to see these alternatives, or should I help you adjust your search? 🏠",
			len(alternatives), pluralProperty(len(alternatives)), a.Title, formatPrice(a.Price), a.BHK, a.City)
	}

	lower := strings.ToLower(message)
	for _, kr := range keywordReplies {
		if kr.match(lower) {
			return kr.reply(co)
		}
	}
	return helpReply(co)
}
