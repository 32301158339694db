package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// NoReason is the audit log reason used when the moderator gives none
const NoReason = "No reason provided"

// MaxBanDeleteDays is the most message history Discord deletes on ban
const MaxBanDeleteDays = 7

// moderationAction describes the wording of one moderation command
type moderationAction struct {
	verb  string
	title string
	past  string
}

var (
	kickAction = moderationAction{verb: "kick", title: "Kick", past: "Kicked"}
	banAction  = moderationAction{verb: "ban", title: "Ban", past: "Banned"}
)

// Kick removes a member from the guild
func (c *Commands) Kick(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	user, reason, ok := c.moderationTarget(ctx, i, kickAction)
	if !ok {
		return
	}

	err := discordapi.KickMember(ctx, c.Session, i.GuildID, user.ID, reason)
	c.moderationResult(ctx, i, kickAction, user, reason, err)
}

// Ban bans a user, optionally deleting up to a week of their messages
func (c *Commands) Ban(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	user, reason, ok := c.moderationTarget(ctx, i, banAction)
	if !ok {
		return
	}

	days := int(intOption(i, "delete_days", 0))
	if days < 0 {
		days = 0
	} else if days > MaxBanDeleteDays {
		days = MaxBanDeleteDays
	}

	err := discordapi.BanMember(ctx, c.Session, i.GuildID, user.ID, reason, days)
	c.moderationResult(ctx, i, banAction, user, reason, err)
}

// Unban lifts the first ban whose username matches, paging through the whole ban list
func (c *Commands) Unban(ctx context.Context, i *Interaction) {
	username := stringOption(i, "username")
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("username", username),
	)

	if !c.Defer(ctx, i) {
		return
	}

	ban, err := discordapi.FindBan(ctx, c.Session, i.GuildID, func(ban *discordgo.GuildBan) bool {
		return MatchesUser(ban.User, username)
	})
	if err != nil {
		if err.IsForbidden() {
			c.Reply(ctx, i, "I do not have permission to view the ban list.")
			return
		}

		c.Failure(ctx, i, "Unban failed. Please try again.", err)
		return
	}

	if ban == nil {
		c.Reply(ctx, i, fmt.Sprintf("User %s not found among bans.", username))
		return
	}

	if uErr := discordapi.UnbanUser(ctx, c.Session, i.GuildID, ban.User.ID); uErr != nil {
		switch {
		case uErr.IsForbidden():
			c.Reply(ctx, i, "I do not have permission to unban this user.")
		case uErr.Code == discordapi.CodeUnknownBan:
			c.Reply(ctx, i, fmt.Sprintf("User %s not found among bans.", username))
		default:
			c.Failure(ctx, i, "Unban failed. Please try again.", uErr)
		}
		return
	}

	ctx = logging.AddValues(ctx, zap.String("target_user_id", ban.User.ID))
	logger := logging.Logger(ctx)
	logger.Info("command_log")

	c.Reply(ctx, i, fmt.Sprintf("Unbanned %s", ban.User.Mention()))
}

// moderationTarget validates the member option and defers the response
func (c *Commands) moderationTarget(ctx context.Context, i *Interaction, action moderationAction) (*discordgo.User, string, bool) {
	user, _ := userOption(i, "member")
	if user == nil {
		c.ReplyEphemeral(ctx, i, fmt.Sprintf("Please choose a member to %s.", action.verb))
		return nil, "", false
	}

	if user.ID == invoker(i.Interaction).ID {
		c.ReplyEphemeral(ctx, i, fmt.Sprintf("You cannot %s yourself.", action.verb))
		return nil, "", false
	}

	if c.State != nil && c.State.User != nil && user.ID == c.State.User.ID {
		c.ReplyEphemeral(ctx, i, fmt.Sprintf("I cannot %s myself.", action.verb))
		return nil, "", false
	}

	reason := stringOption(i, "reason")
	if reason == "" {
		reason = NoReason
	}

	if !c.Defer(ctx, i) {
		return nil, "", false
	}

	return user, reason, true
}

// moderationResult turns the platform answer into the reply the moderator sees
func (c *Commands) moderationResult(ctx context.Context, i *Interaction, action moderationAction, user *discordgo.User, reason string, err *discordapi.Error) {
	ctx = logging.AddValues(ctx,
		zap.String("target_user_id", user.ID),
		zap.String("reason", reason),
	)

	if err != nil {
		switch {
		case err.IsForbidden():
			c.Reply(ctx, i, fmt.Sprintf("I do not have permission to %s this user.", action.verb))
		case err.IsUnknownTarget():
			c.Reply(ctx, i, "That user is not a member of this server.")
		default:
			c.Failure(ctx, i, fmt.Sprintf("%s failed. Please try again.", action.title), err)
		}
		return
	}

	logger := logging.Logger(ctx)
	logger.Info("command_log")

	c.Reply(ctx, i, fmt.Sprintf("%s %s (reason: %s)", action.past, user.Mention(), reason))
}

// MatchesUser compares a typed name against a user's id, username, global name and legacy tag
func MatchesUser(user *discordgo.User, name string) bool {
	if user == nil {
		return false
	}

	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	if name == "" {
		return false
	}

	if user.ID == name || strings.EqualFold(user.Username, name) || strings.EqualFold(user.GlobalName, name) {
		return true
	}

	return user.Discriminator != "" && user.Discriminator != "0" && strings.EqualFold(user.Username+"#"+user.Discriminator, name)
}
