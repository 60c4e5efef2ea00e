package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// SendDM opens (or reuses) the DM channel with a user and sends content.
func SendDM(s *discordgo.Session, userID, content string) error {
	ch, err := s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("create dm channel: %w", err)
	}
	if _, err := s.ChannelMessageSend(ch.ID, content); err != nil {
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

// GetMessage fetches a message, returning nil when it no longer exists
// (deleted proposer messages are an expected condition, not an error).
func GetMessage(s *discordgo.Session, channelID, messageID string) *discordgo.Message {
	msg, err := s.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil
	}
	return msg
}
