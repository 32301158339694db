package discordapi

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// GetGuild fetches a guild including approximate member counts
func GetGuild(ctx context.Context, session Session, guildID string) (*discordgo.Guild, *Error) {
	guild, err := session.GuildWithCounts(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, ParseDiscordError(err)
	}

	return guild, nil
}

// GetGuildRoles func
func GetGuildRoles(ctx context.Context, session Session, guildID string) ([]*discordgo.Role, *Error) {
	roles, err := session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, ParseDiscordError(err)
	}

	return roles, nil
}

// GetGuildChannels func
func GetGuildChannels(ctx context.Context, session Session, guildID string) ([]*discordgo.Channel, *Error) {
	channels, err := session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, ParseDiscordError(err)
	}

	return channels, nil
}
