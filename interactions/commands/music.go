package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/services/lavalinkservice"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

const resetFiltersButtonID = "music:resetfilters"

const musicUnavailable = "Music is not available right now."

// Play joins the invoker's voice channel and queues the query
func (c *Commands) Play(ctx context.Context, i *Interaction) {
	query := stringOption(i, "query")
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("query", query),
	)

	voiceChannel := discordapi.UserVoiceChannel(c.State, i.GuildID, invoker(i.Interaction).ID)
	if voiceChannel == "" {
		c.ReplyEphemeral(ctx, i, "Please join a voice channel first before using this command.")
		return
	}

	if c.Music == nil {
		c.ReplyEphemeral(ctx, i, musicUnavailable)
		return
	}

	if !c.Defer(ctx, i) {
		return
	}

	if home, ok := c.Music.HomeChannel(i.GuildID); ok && home != i.ChannelID {
		c.Reply(ctx, i, fmt.Sprintf("You can only play songs in <#%s>, since the player has already started there.", home))
		return
	}

	if c.botVoiceChannel(i.GuildID) == "" {
		if err := discordapi.JoinVoice(c.Session, i.GuildID, voiceChannel); err != nil {
			ctx = logging.AddValues(ctx, zap.NamedError("error", err.Err), zap.String("error_message", err.Message), zap.Int("status_code", err.Code))
			logger := logging.Logger(ctx)
			logger.Error("error_log")

			c.Reply(ctx, i, "I was unable to join that voice channel. Try again.")
			return
		}
	}

	result, err := c.Music.Load(ctx, query)
	if errors.Is(err, lavalinkservice.ErrNoResults) {
		c.Reply(ctx, i, "Could not find any tracks with that query. Please try again.")
		return
	}

	if err != nil {
		c.Failure(ctx, i, GenericFailureMessage, err)
		return
	}

	if _, err := c.Music.Enqueue(ctx, i.GuildID, i.ChannelID, result.Tracks); err != nil {
		c.Failure(ctx, i, GenericFailureMessage, err)
		return
	}

	if result.PlaylistName != "" {
		c.Reply(ctx, i, fmt.Sprintf("Added the playlist **`%s`** (%d songs) to the queue.", result.PlaylistName, len(result.Tracks)))
		return
	}

	c.Reply(ctx, i, fmt.Sprintf("Added **`%s`** to the queue.", result.Tracks[0].Info.Title))
}

// Skip func
func (c *Commands) Skip(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	c.playerAction(ctx, i, "No player to skip.", "Skipped track.", func() error {
		return c.Music.Skip(ctx, i.GuildID)
	})
}

// Toggle pauses or resumes playback
func (c *Commands) Toggle(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	c.playerAction(ctx, i, "No player found to toggle.", "Toggled pause/resume.", func() error {
		_, err := c.Music.TogglePause(ctx, i.GuildID)
		return err
	})
}

// Volume sets the player volume, capped at the configured maximum
func (c *Commands) Volume(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	volume := int(intOption(i, "value", int64(c.Config.Music.DefaultVolume)))
	if volume < 0 {
		volume = 0
	}

	if limit := c.Config.Music.MaxVolume; limit > 0 && volume > limit {
		volume = limit
	}

	c.playerAction(ctx, i, "No player to set volume for.", fmt.Sprintf("Volume set to %d.", volume), func() error {
		return c.Music.SetVolume(ctx, i.GuildID, volume)
	})
}

// Nightcore applies the nightcore timescale and offers a button to undo it
func (c *Commands) Nightcore(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if c.Music == nil {
		c.ReplyEphemeral(ctx, i, musicUnavailable)
		return
	}

	err := c.Music.Nightcore(ctx, i.GuildID)
	if errors.Is(err, lavalinkservice.ErrNoPlayer) {
		c.ReplyEphemeral(ctx, i, "No player to apply nightcore to.")
		return
	}

	if err != nil {
		c.Failure(ctx, i, GenericFailureMessage, err)
		return
	}

	nightcore := c.Config.Music.Nightcore
	c.send(ctx, i, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("Nightcore filter applied (pitch=%g, speed=%g).", nightcore.Pitch, nightcore.Speed),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Reset Filters",
						Style:    discordgo.DangerButton,
						CustomID: resetFiltersButtonID,
					},
				},
			},
		},
	}, i.Command.Ephemeral)
}

// ResetFilters func
func (c *Commands) ResetFilters(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	c.playerAction(ctx, i, "No player to reset filters.", "Player filters reset.", func() error {
		return c.Music.ResetFilters(ctx, i.GuildID)
	})
}

// Disconnect leaves voice and forgets the guild's queue
func (c *Commands) Disconnect(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if c.Music == nil {
		c.ReplyEphemeral(ctx, i, musicUnavailable)
		return
	}

	_, playing := c.Music.HomeChannel(i.GuildID)
	if !playing && c.botVoiceChannel(i.GuildID) == "" {
		c.ReplyEphemeral(ctx, i, "I'm not in a voice channel.")
		return
	}

	if err := c.Music.Disconnect(ctx, i.GuildID); err != nil {
		c.Failure(ctx, i, GenericFailureMessage, err)
		return
	}

	if err := discordapi.LeaveVoice(c.Session, i.GuildID); err != nil {
		c.Failure(ctx, i, GenericFailureMessage, err)
		return
	}

	c.Reply(ctx, i, "Disconnected.")
}

// NowPlaying posts the track that just started to the player's home channel
func (c *Commands) NowPlaying(ctx context.Context, guildID string, channelID string, track lavalink.Track) {
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("channel_id", channelID),
	)

	embed := &discordgo.MessageEmbed{
		Title:       "Now Playing",
		Description: fmt.Sprintf("**%s** by `%s`", track.Info.Title, track.Info.Author),
		Color:       c.Config.Bot.OkColor,
	}

	if track.Info.ArtworkURL != nil && *track.Info.ArtworkURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: *track.Info.ArtworkURL}
	}

	if _, err := discordapi.SendMessage(ctx, c.Session, channelID, "", embed); err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err.Err), zap.String("error_message", err.Message), zap.Int("status_code", err.Code))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
	}
}

// resetFiltersButton handles the button under a nightcore reply
func (c *Commands) resetFiltersButton(ctx context.Context, i *discordgo.Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	content := "Player filters reset."
	if c.Music == nil {
		content = musicUnavailable
	} else if err := c.Music.ResetFilters(ctx, i.GuildID); err != nil {
		content = "No player to reset filters."
		if !errors.Is(err, lavalinkservice.ErrNoPlayer) {
			content = fmt.Sprintf("%s\nError code: `%s`", GenericFailureMessage, c.Reporter.Report(ctx, err, nil))
		}
	}

	if err := discordapi.UpdateComponentMessage(ctx, c.Session, i, &discordgo.InteractionResponseData{
		Content:    content,
		Components: []discordgo.MessageComponent{},
	}); err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err.Err), zap.String("error_message", err.Message), zap.Int("status_code", err.Code))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
	}
}

// playerAction runs one call against an existing player and replies with the outcome
func (c *Commands) playerAction(ctx context.Context, i *Interaction, noPlayer string, success string, action func() error) {
	if c.Music == nil {
		c.ReplyEphemeral(ctx, i, musicUnavailable)
		return
	}

	err := action()
	if errors.Is(err, lavalinkservice.ErrNoPlayer) {
		c.ReplyEphemeral(ctx, i, noPlayer)
		return
	}

	if err != nil {
		c.Failure(ctx, i, GenericFailureMessage, err)
		return
	}

	c.Reply(ctx, i, success)
}

func (c *Commands) botVoiceChannel(guildID string) string {
	if c.State == nil || c.State.User == nil {
		return ""
	}

	return discordapi.UserVoiceChannel(c.State, guildID, c.State.User.ID)
}
