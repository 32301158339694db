package discordapi

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// AddReaction func
func AddReaction(ctx context.Context, session Session, channelID string, messageID string, emoji string) *Error {
	err := session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
	if err != nil {
		return ParseDiscordError(err)
	}

	return nil
}
