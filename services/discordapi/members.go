package discordapi

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// MaxBansPerPage const
const MaxBansPerPage = 1000

// GetMember func
func GetMember(ctx context.Context, session Session, guildID string, userID string) (*discordgo.Member, *Error) {
	member, err := session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, ParseDiscordError(err)
	}

	return member, nil
}

// KickMember removes a member from the guild with an audit log reason
func KickMember(ctx context.Context, session Session, guildID string, userID string, reason string) *Error {
	err := session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
	if err != nil {
		return ParseDiscordError(err)
	}

	return nil
}

// BanMember bans a user and optionally deletes their recent messages
func BanMember(ctx context.Context, session Session, guildID string, userID string, reason string, deleteDays int) *Error {
	err := session.GuildBanCreateWithReason(guildID, userID, reason, deleteDays, discordgo.WithContext(ctx))
	if err != nil {
		return ParseDiscordError(err)
	}

	return nil
}

// UnbanUser func
func UnbanUser(ctx context.Context, session Session, guildID string, userID string) *Error {
	err := session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return ParseDiscordError(err)
	}

	return nil
}

// GetBans returns one page of bans after the given user id
func GetBans(ctx context.Context, session Session, guildID string, afterID string) ([]*discordgo.GuildBan, *Error) {
	bans, err := session.GuildBans(guildID, MaxBansPerPage, "", afterID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, ParseDiscordError(err)
	}

	return bans, nil
}

// FindBan pages through the ban list until match returns true
func FindBan(ctx context.Context, session Session, guildID string, match func(*discordgo.GuildBan) bool) (*discordgo.GuildBan, *Error) {
	after := ""
	for {
		bans, err := GetBans(ctx, session, guildID, after)
		if err != nil {
			return nil, err
		}

		for _, ban := range bans {
			if ban.User != nil && match(ban) {
				return ban, nil
			}
		}

		if len(bans) < MaxBansPerPage {
			return nil, nil
		}

		last := bans[len(bans)-1]
		if last.User == nil || last.User.ID == after {
			return nil, nil
		}
		after = last.User.ID
	}
}
