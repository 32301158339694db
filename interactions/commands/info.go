package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/stats"
	"go.uber.org/zap"
)

// MaxBoosts is the boost count of a level 3 server
const MaxBoosts = 14

var statusLabels = map[discordgo.Status]string{
	discordgo.StatusOnline:       "🟢 Online",
	discordgo.StatusIdle:         "🌙 Idle",
	discordgo.StatusDoNotDisturb: "⛔ Do Not Disturb",
	discordgo.StatusOffline:      "🔴 Offline",
	discordgo.StatusInvisible:    "🔴 Offline",
}

// Info replies with bot metadata
func (c *Commands) Info(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	s := stats.Collect(ctx, c.Start)

	guilds := 0
	if c.State != nil {
		c.State.RLock()
		guilds = len(c.State.Guilds)
		c.State.RUnlock()
	}

	fields := []discordapi.EmbeddableField{
		discordapi.Field{Name: "Version", Value: c.Config.Bot.Version, Inline: true},
		discordapi.Field{Name: "Servers", Value: stats.Count(guilds), Inline: true},
		discordapi.Field{Name: "Uptime", Value: s.UptimeString(), Inline: true},
		discordapi.Field{Name: "Memory", Value: s.Memory(), Inline: true},
		discordapi.Field{Name: "Goroutines", Value: stats.Count(s.Goroutines), Inline: true},
		discordapi.Field{Name: "Latency", Value: Milliseconds(NonNegative(c.Session.HeartbeatLatency())), Inline: true},
		discordapi.Field{Name: "Invite", Value: fmt.Sprintf("[Add me to your server](%s)", c.inviteURL(i.AppID))},
	}

	if c.Config.Bot.DocumentationURL != "" {
		fields = append(fields, discordapi.Field{Name: "Documentation", Value: c.Config.Bot.DocumentationURL})
	}

	c.Output(ctx, i, discordapi.EmbeddableParams{
		Title:        c.Config.Bot.Name,
		Description:  fmt.Sprintf("Running on %s, started %s", s.GoVersion, s.Started(c.now())),
		TitleURL:     c.Config.Bot.DocumentationURL,
		ThumbnailURL: c.Config.Bot.OkThumbnail,
		Footer:       fmt.Sprintf("Executed by %s", invoker(i.Interaction).Username),
	}, fields, nil)
}

// ServerInfo replies with details about the current guild or the guild_id option
func (c *Commands) ServerInfo(ctx context.Context, i *Interaction) {
	guildID := stringOption(i, "guild_id")
	if guildID == "" {
		guildID = i.GuildID
	}

	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("target_guild_id", guildID),
	)

	cached, err := c.stateGuild(guildID)
	if err != nil {
		c.ReplyEphemeral(ctx, i, fmt.Sprintf("Server with ID %s not found.", guildID))
		return
	}

	if !c.Defer(ctx, i) {
		return
	}

	guild, gErr := discordapi.GetGuild(ctx, c.Session, guildID)
	if gErr != nil {
		c.Failure(ctx, i, "An error occurred while fetching server info. Please try again later.", gErr)
		return
	}

	roles, rErr := discordapi.GetGuildRoles(ctx, c.Session, guildID)
	if rErr != nil {
		c.Failure(ctx, i, "An error occurred while fetching server info. Please try again later.", rErr)
		return
	}

	channels, chErr := discordapi.GetGuildChannels(ctx, c.Session, guildID)
	if chErr != nil {
		c.Failure(ctx, i, "An error occurred while fetching server info. Please try again later.", chErr)
		return
	}

	members := guild.ApproximateMemberCount
	if members == 0 {
		members = cached.MemberCount
	}

	description := guild.Description
	if description == "" {
		description = "No description"
	}

	params := discordapi.EmbeddableParams{
		Title:       fmt.Sprintf("Server Info - %s", guild.Name),
		Description: description,
		Footer:      guild.ID,
	}
	if guild.Icon != "" {
		params.ThumbnailURL = guild.IconURL("256")
	}

	c.Output(ctx, i, params, []discordapi.EmbeddableField{
		discordapi.Field{Name: "Owner", Value: fmt.Sprintf("<@%s>", guild.OwnerID), Inline: true},
		discordapi.Field{Name: "Member Count", Value: stats.Count(members), Inline: true},
		discordapi.Field{Name: "Role Count", Value: stats.Count(len(roles)), Inline: true},
		discordapi.Field{Name: "Server Level", Value: fmt.Sprintf("%d", guild.PremiumTier), Inline: true},
		discordapi.Field{Name: "Boost Count", Value: fmt.Sprintf("%d/%d", guild.PremiumSubscriptionCount, MaxBoosts), Inline: true},
		discordapi.Field{Name: "Channel Count", Value: stats.Count(len(channels)), Inline: true},
		discordapi.Field{Name: "Created", Value: SnowflakeRelative(guild.ID), Inline: true},
	}, nil)
}

// UserInfo replies with details about a member of the current guild
func (c *Commands) UserInfo(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	user, member := userOption(i, "member")
	if user == nil {
		member = i.Member
		user = invoker(i.Interaction)
	}

	ctx = logging.AddValues(ctx, zap.String("target_user_id", user.ID))

	if !c.Defer(ctx, i) {
		return
	}

	if member == nil {
		fetched, err := discordapi.GetMember(ctx, c.Session, i.GuildID, user.ID)
		if err != nil && !err.IsNotFound() {
			c.Failure(ctx, i, GenericFailureMessage, err)
			return
		}

		member = fetched
	}

	if member == nil {
		c.Reply(ctx, i, fmt.Sprintf("**%s** is not in this server (or I can't access them).", displayName(user)))
		return
	}

	if member.User == nil {
		member.User = user
	}

	isBot := "No"
	if user.Bot {
		isBot = "Yes"
	}

	joined := "Unknown"
	if !member.JoinedAt.IsZero() {
		joined = fmt.Sprintf("<t:%d:R>", member.JoinedAt.Unix())
	}

	params := discordapi.EmbeddableParams{
		Title:        displayName(user),
		ThumbnailURL: user.AvatarURL("256"),
		Footer:       fmt.Sprintf("ID: %s", user.ID),
	}

	c.Output(ctx, i, params, []discordapi.EmbeddableField{
		discordapi.Field{Name: "Mention", Value: user.Mention(), Inline: true},
		discordapi.Field{Name: "Bot?", Value: isBot, Inline: true},
		discordapi.Field{Name: "Status", Value: c.presenceStatus(i.GuildID, user.ID), Inline: true},
		discordapi.Field{Name: "Account Created", Value: SnowflakeRelative(user.ID), Inline: true},
		discordapi.Field{Name: "Joined Server", Value: joined, Inline: true},
		discordapi.Field{Name: "Roles", Value: RoleMentions(i.GuildID, member.Roles)},
	}, nil)
}

// Invite replies with a button that adds the bot to another server
func (c *Commands) Invite(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	c.send(ctx, i, &discordgo.InteractionResponseData{
		Content: "## Click below to invite me!",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label: "🤖 Invite " + c.Config.Bot.Name,
						Style: discordgo.LinkButton,
						URL:   c.inviteURL(i.AppID),
					},
				},
			},
		},
	}, true)
}

func (c *Commands) inviteURL(appID string) string {
	permissions, _ := configs.PermissionBits(c.Config.Bot.InvitePermissions)
	return discordapi.InviteURL(appID, permissions)
}

func (c *Commands) stateGuild(guildID string) (*discordgo.Guild, error) {
	if c.State == nil {
		return nil, discordgo.ErrNilState
	}

	return c.State.Guild(guildID)
}

func (c *Commands) presenceStatus(guildID string, userID string) string {
	if c.State == nil {
		return "Unknown"
	}

	presence, err := c.State.Presence(guildID, userID)
	if err != nil || presence == nil {
		return "Unknown"
	}

	if label, ok := statusLabels[presence.Status]; ok {
		return label
	}

	return "Unknown"
}

// SnowflakeRelative renders the creation time of a snowflake as a Discord relative timestamp
func SnowflakeRelative(id string) string {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return "Unknown"
	}

	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// RoleMentions lists role mentions, skipping @everyone whose id equals the guild id
func RoleMentions(guildID string, roleIDs []string) string {
	var mentions []string
	for _, id := range roleIDs {
		if id == guildID {
			continue
		}

		mentions = append(mentions, fmt.Sprintf("<@&%s>", id))
	}

	if len(mentions) == 0 {
		return "No roles"
	}

	return strings.Join(mentions, " ")
}

func displayName(user *discordgo.User) string {
	if user.GlobalName != "" {
		return user.GlobalName
	}

	if user.Username != "" {
		return user.Username
	}

	return user.ID
}
