package generator

import (
	"fmt"
	"strings"
)

var channelPrompts = map[string]string{
	"telegram": "Du bist ein Experte für Telegram-Marketing. Erstelle prägnante, engaging Posts für Telegram-Kanäle. " +
		"Nutze Emojis sparsam aber effektiv. Schreibe auf Deutsch und halte dich an 2000 Zeichen Limit.",
	"linkedin": "Du bist ein Experte für LinkedIn-Marketing. Erstelle professionelle, wertvolle Posts für LinkedIn. " +
		"Fokussiere auf Business-Insights und Mehrwert. Schreibe auf Deutsch und halte dich an 3000 Zeichen Limit.",
	"facebook": "Du bist ein Experte für Facebook-Marketing. Erstelle engaging, community-orientierte Posts für Facebook. " +
		"Nutze eine freundliche, zugängliche Sprache. Schreibe auf Deutsch.",
	"instagram": "Du bist ein Experte für Instagram-Marketing. Erstelle visuell ansprechende, hashtag-optimierte Captions für Instagram. " +
		"Nutze relevante Hashtags und Emojis. Schreibe auf Deutsch und halte dich an 2200 Zeichen Limit.",
}

var imageStyles = map[string]string{
	"instagram": "modern, aesthetic, high-quality, Instagram-style",
	"facebook":  "engaging, colorful, social media friendly",
	"linkedin":  "professional, business-appropriate, clean",
	"telegram":  "clear, simple, informative",
}

const (
	defaultChannel = "telegram"
	defaultStyle   = "modern, professional"
)

// BuildSystemPrompt returns the channel persona, followed by the tenant's
// own instructions when present. Unknown channels get the Telegram persona.
func BuildSystemPrompt(custom, channel string) string {
	prompt, ok := channelPrompts[strings.ToLower(channel)]
	if !ok {
		prompt = channelPrompts[defaultChannel]
	}
	if custom = strings.TrimSpace(custom); custom != "" {
		prompt += "\n\nZusätzliche Anweisungen: " + custom
	}
	return prompt
}

func userPrompt(topic, channel string) string {
	return fmt.Sprintf(`Erstelle einen %s-Post zum folgenden Thema: %s

Anforderungen:
- Ansprechend und engaging
- Passend für die Zielgruppe
- Call-to-Action einbauen
- Plattform-spezifisch optimiert`, channel, topic)
}

func imagePrompt(topic, channel string) string {
	style, ok := imageStyles[strings.ToLower(channel)]
	if !ok {
		style = defaultStyle
	}
	return fmt.Sprintf("Create a %s image for social media about: %s. "+
		"The image should be visually appealing, suitable for %s, without any text overlay.", style, topic, channel)
}
