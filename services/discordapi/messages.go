package discordapi

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// SendMessage func
func SendMessage(ctx context.Context, session Session, channelID string, content string, embeds ...*discordgo.MessageEmbed) (*discordgo.Message, *Error) {
	message, err := session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  embeds,
	}, discordgo.WithContext(ctx))

	if err != nil {
		return nil, ParseDiscordError(err)
	}

	return message, nil
}

// DeleteMessage func
func DeleteMessage(ctx context.Context, session Session, channelID string, messageID string) *Error {
	err := session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return ParseDiscordError(err)
	}

	return nil
}
