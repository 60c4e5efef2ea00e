package discord

import (
	"fmt"
	"regexp"
	"strings"
)

// MessageURL builds the permalink for a message.
func MessageURL(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// WrapURLsNoEmbed wraps URLs in angle brackets to prevent Discord embeds.
func WrapURLsNoEmbed(text string) string {
	urlRegex := regexp.MustCompile(`<?https?://[^\s\[\]()<>]+>?`)
	return urlRegex.ReplaceAllStringFunc(text, func(url string) string {
		url = strings.TrimRight(url, ".,;:!?)")
		if strings.HasPrefix(url, "<") && strings.HasSuffix(url, ">") {
			return url
		}
		return fmt.Sprintf("<%s>", url)
	})
}
