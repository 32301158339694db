package discordapi

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// OverwriteCommands replaces every registered command in one request. An empty guildID registers globally.
func OverwriteCommands(ctx context.Context, session Session, appID string, guildID string, commands []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, *Error) {
	created, err := session.ApplicationCommandBulkOverwrite(appID, guildID, commands, discordgo.WithContext(ctx))
	if err != nil {
		return nil, ParseDiscordError(err)
	}

	return created, nil
}
