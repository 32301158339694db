package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/go-openapi/strfmt"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/models"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/services/lavalinkservice"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/cache"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/reporting"
	"go.uber.org/zap"
)

// GenericFailureMessage is shown when a platform call fails unexpectedly
const GenericFailureMessage = "Oops something went wrong, please try again or contact support."

// BirthdayStore is the storage the birthday commands need
type BirthdayStore interface {
	SetBirthday(ctx context.Context, userID string, date strfmt.Date) error
	GetBirthday(ctx context.Context, userID string) (*models.Birthday, error)
	ListBirthdays(ctx context.Context) ([]*models.Birthday, error)
}

// GIFProvider returns a random GIF url for a tag
type GIFProvider interface {
	RandomGIF(ctx context.Context, tag string, rating string) (string, error)
}

// MusicPlayer is the per-guild player the music commands drive
type MusicPlayer interface {
	Load(ctx context.Context, query string) (*lavalinkservice.LoadResult, error)
	HomeChannel(guildID string) (string, bool)
	Enqueue(ctx context.Context, guildID string, channelID string, tracks []lavalink.Track) (bool, error)
	Skip(ctx context.Context, guildID string) error
	TogglePause(ctx context.Context, guildID string) (bool, error)
	SetVolume(ctx context.Context, guildID string, volume int) error
	Nightcore(ctx context.Context, guildID string) error
	ResetFilters(ctx context.Context, guildID string) error
	Disconnect(ctx context.Context, guildID string) error
}

// Commands struct
type Commands struct {
	Session   discordapi.Session
	State     *discordgo.State
	Config    *configs.Config
	Cooldowns cache.CooldownStore
	Birthdays BirthdayStore
	Giphy     GIFProvider
	Music     MusicPlayer
	Reporter  *reporting.Reporter
	Start     time.Time

	// Now and Intn are replaced in tests
	Now  func() time.Time
	Intn func(n int) int
}

// Interaction is one slash command invocation on its way through a handler
type Interaction struct {
	*discordgo.Interaction
	Command   configs.Command
	responded bool
}

// Error struct
type Error struct {
	Message string `json:"message"`
	Err     error  `json:"error"`
}

// Error func
func (e *Error) Error() string {
	return e.Err.Error()
}

// ConvertToEmbedField for Error struct
func (e *Error) ConvertToEmbedField() (*discordgo.MessageEmbedField, *discordapi.Error) {
	return &discordgo.MessageEmbedField{
		Name:   e.Message,
		Value:  e.Error(),
		Inline: false,
	}, nil
}

func (c *Commands) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}

	return time.Now()
}

func (c *Commands) intn(n int) int {
	if c.Intn != nil {
		return c.Intn(n)
	}

	return rand.Intn(n)
}

// Factory runs the checks every slash command shares and hands off to its handler
func (c *Commands) Factory(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("command", data.Name),
	)

	command, ok := c.Config.Command(data.Name)
	if !ok {
		c.ErrorOutput(ctx, &Interaction{Interaction: i, Command: configs.Command{Name: data.Name}}, Error{
			Message: fmt.Sprintf("No command found with name: %s", data.Name),
			Err:     errors.New("invalid command"),
		})
		return
	}

	in := &Interaction{Interaction: i, Command: command}

	if !command.Enabled {
		c.ErrorOutput(ctx, in, Error{
			Message: "This command has not been enabled for use",
			Err:     errors.New("command not enabled"),
		})
		return
	}

	logger := logging.Logger(ctx)
	logger.Info("command_log")

	if command.GuildOnly && i.GuildID == "" {
		c.ErrorOutput(ctx, in, Error{
			Message: "This command cannot be used through DM",
			Err:     errors.New("must be used in discord server"),
		})
		return
	}

	if command.Permission != "" && !HasPermission(i.Member, command.Permission) {
		c.ErrorOutput(ctx, in, Error{
			Message: fmt.Sprintf("You need the %s permission to use this command", configs.PermissionLabel(command.Permission)),
			Err:     errors.New("missing permission"),
		})
		return
	}

	if !c.checkCooldown(ctx, in) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.Config.Bot.CommandTimeout)
	defer cancel()

	switch command.Name {
	case "ping":
		c.Ping(ctx, in)
	case "info":
		c.Info(ctx, in)
	case "serverinfo":
		c.ServerInfo(ctx, in)
	case "userinfo":
		c.UserInfo(ctx, in)
	case "invite":
		c.Invite(ctx, in)
	case "kick":
		c.Kick(ctx, in)
	case "ban":
		c.Ban(ctx, in)
	case "unban":
		c.Unban(ctx, in)
	case "help":
		c.Help(ctx, in)
	case "8ball":
		c.EightBall(ctx, in)
	case "pew":
		c.Pew(ctx, in)
	case "coin":
		c.Coin(ctx, in)
	case "setbirthday":
		c.SetBirthday(ctx, in)
	case "mybirthday":
		c.MyBirthday(ctx, in)
	case "birthdaylist":
		c.BirthdayList(ctx, in)
	case "play":
		c.Play(ctx, in)
	case "skip":
		c.Skip(ctx, in)
	case "toggle":
		c.Toggle(ctx, in)
	case "volume":
		c.Volume(ctx, in)
	case "nightcore":
		c.Nightcore(ctx, in)
	case "resetfilters":
		c.ResetFilters(ctx, in)
	case "disconnect":
		c.Disconnect(ctx, in)
	default:
		c.ErrorOutput(ctx, in, Error{
			Message: fmt.Sprintf("No handler for command: %s", command.Name),
			Err:     errors.New("command not implemented"),
		})
	}
}

// Autocomplete answers option suggestions while a command is being typed
func (c *Commands) Autocomplete(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("command", data.Name),
	)

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch data.Name {
	case "help":
		choices = c.helpChoices(focusedValue(data.Options))
	}

	if err := discordapi.RespondAutocomplete(ctx, c.Session, i, choices); err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err.Err), zap.String("error_message", err.Message), zap.Int("status_code", err.Code))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
	}
}

// Component handles button presses on messages the bot sent
func (c *Commands) Component(ctx context.Context, i *discordgo.Interaction) {
	data := i.MessageComponentData()
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("custom_id", data.CustomID),
	)

	switch data.CustomID {
	case resetFiltersButtonID:
		c.resetFiltersButton(ctx, i)
	default:
		logger := logging.Logger(ctx)
		logger.Warn("command_log")
	}
}

// HasPermission reports whether the member holds the named permission. Administrator implies every permission.
func HasPermission(member *discordgo.Member, permission string) bool {
	if member == nil {
		return false
	}

	if member.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator {
		return true
	}

	bits, err := configs.PermissionBits([]string{permission})
	if err != nil {
		return false
	}

	return member.Permissions&bits == bits
}

// checkCooldown claims the invoker's cooldown slot. It fails open when the store errors.
func (c *Commands) checkCooldown(ctx context.Context, i *Interaction) bool {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if i.Command.Cooldown <= 0 || c.Cooldowns == nil || !c.Config.CacheSettings.Cooldown.Enabled {
		return true
	}

	cooldown := models.Cooldown{
		Command: i.Command.Name,
		UserID:  invoker(i.Interaction).ID,
	}

	ok, remaining, err := c.Cooldowns.Acquire(ctx, cooldown.CacheKey(c.Config.CacheSettings.Cooldown.Base), i.Command.Cooldown)
	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to check cooldown"))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
		return true
	}

	if ok {
		return true
	}

	until := c.now().Add(remaining)
	c.ReplyEphemeral(ctx, i, fmt.Sprintf("Slow down! You can use /%s again <t:%d:R>.", i.Command.Name, until.Unix()))

	return false
}

// Defer acknowledges the interaction so the handler may take longer than three seconds
func (c *Commands) Defer(ctx context.Context, i *Interaction) bool {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if err := discordapi.DeferResponse(ctx, c.Session, i.Interaction, i.Command.Ephemeral); err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err.Err), zap.String("error_message", err.Message), zap.Int("status_code", err.Code))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
		return false
	}

	i.responded = true
	return true
}

// Reply sends plain text using the command's configured visibility
func (c *Commands) Reply(ctx context.Context, i *Interaction, content string) {
	c.send(ctx, i, &discordgo.InteractionResponseData{Content: content}, i.Command.Ephemeral)
}

// ReplyEphemeral sends plain text only the invoker can see
func (c *Commands) ReplyEphemeral(ctx context.Context, i *Interaction, content string) {
	c.send(ctx, i, &discordgo.InteractionResponseData{Content: content}, true)
}

// Failure reports err and tells the user the message plus an error code they can quote
func (c *Commands) Failure(ctx context.Context, i *Interaction, message string, err error) {
	code := c.Reporter.Report(ctx, err, map[string]string{
		"command":  i.Command.Name,
		"guild_id": i.GuildID,
	})

	c.ReplyEphemeral(ctx, i, fmt.Sprintf("%s\nError code: `%s`", message, code))
}

// ErrorOutput func
func (c *Commands) ErrorOutput(ctx context.Context, i *Interaction, err Error) {
	newCtx := logging.AddValues(ctx, zap.NamedError("error", err.Err), zap.String("error_message", err.Message))
	logger := logging.Logger(newCtx)
	logger.Error("error_log")

	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	params := discordapi.EmbeddableParams{
		Title:        "Error",
		Description:  "`/" + i.Command.Name + "`",
		Color:        c.Config.Bot.ErrorColor,
		TitleURL:     c.Config.Bot.DocumentationURL,
		Footer:       "Error",
		ThumbnailURL: c.Config.Bot.ErrorThumbnail,
	}

	embeddableFields := []discordapi.EmbeddableField{&err}
	if i.Command.Description != "" {
		embeddableFields = append(embeddableFields, &HelpOutput{
			Command: i.Command,
		})
	}

	embeds := discordapi.CreateEmbeds(params, embeddableFields)
	c.send(ctx, i, &discordgo.InteractionResponseData{Embeds: embeds}, true)
}

// Output func
func (c *Commands) Output(ctx context.Context, i *Interaction, params discordapi.EmbeddableParams, embeddableFields []discordapi.EmbeddableField, embeddableErrors []discordapi.EmbeddableField) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if len(embeddableErrors) > 0 {
		params.Color = c.Config.Bot.WarnColor
	} else if params.Color == 0 {
		params.Color = c.Config.Bot.OkColor
	}

	combinedFields := append(embeddableFields, embeddableErrors...)
	embeds := discordapi.CreateEmbeds(params, combinedFields)

	c.send(ctx, i, &discordgo.InteractionResponseData{Embeds: embeds}, i.Command.Ephemeral)
}

// send answers the interaction, editing the deferred response when there is one. Embeds past the per-message limit go out as followups.
func (c *Commands) send(ctx context.Context, i *Interaction, data *discordgo.InteractionResponseData, ephemeral bool) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	embeds := data.Embeds
	var rest []*discordgo.MessageEmbed
	if len(embeds) > discordapi.MaxEmbedsPerMessage {
		rest = embeds[discordapi.MaxEmbedsPerMessage:]
		embeds = embeds[:discordapi.MaxEmbedsPerMessage]
	}

	var err *discordapi.Error
	if i.responded {
		edit := &discordgo.WebhookEdit{
			Content: &data.Content,
			Embeds:  &embeds,
		}
		if data.Components != nil {
			edit.Components = &data.Components
		}

		_, err = discordapi.EditResponse(ctx, c.Session, i.Interaction, edit)
	} else {
		data.Embeds = embeds
		if ephemeral {
			data.Flags |= discordgo.MessageFlagsEphemeral
		}

		err = discordapi.Respond(ctx, c.Session, i.Interaction, data)
		if err == nil {
			i.responded = true
		}
	}

	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err.Err), zap.String("error_message", err.Message), zap.Int("status_code", err.Code))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
		return
	}

	for len(rest) > 0 {
		n := len(rest)
		if n > discordapi.MaxEmbedsPerMessage {
			n = discordapi.MaxEmbedsPerMessage
		}

		params := &discordgo.WebhookParams{Embeds: rest[:n]}
		if ephemeral {
			params.Flags = discordgo.MessageFlagsEphemeral
		}

		if _, fErr := discordapi.Followup(ctx, c.Session, i.Interaction, params); fErr != nil {
			ctx = logging.AddValues(ctx, zap.NamedError("error", fErr.Err), zap.String("error_message", fErr.Message), zap.Int("status_code", fErr.Code))
			logger := logging.Logger(ctx)
			logger.Error("error_log")
			return
		}

		rest = rest[n:]
	}
}

// invoker returns the user behind an interaction in a guild or a DM
func invoker(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}

	if i.User != nil {
		return i.User
	}

	return &discordgo.User{}
}

func options(i *Interaction) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, opt := range i.ApplicationCommandData().Options {
		opts[opt.Name] = opt
	}

	return opts
}

func stringOption(i *Interaction, name string) string {
	opt, ok := options(i)[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}

	return strings.TrimSpace(opt.StringValue())
}

func intOption(i *Interaction, name string, fallback int64) int64 {
	opt, ok := options(i)[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return fallback
	}

	return opt.IntValue()
}

// userOption resolves a user option from the payload Discord sends with the interaction
func userOption(i *Interaction, name string) (*discordgo.User, *discordgo.Member) {
	opt, ok := options(i)[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionUser {
		return nil, nil
	}

	id, _ := opt.Value.(string)
	if id == "" {
		return nil, nil
	}

	user := &discordgo.User{ID: id}
	var member *discordgo.Member

	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if u, ok := resolved.Users[id]; ok && u != nil {
			user = u
		}

		if m, ok := resolved.Members[id]; ok && m != nil {
			member = m
			member.User = user
			member.GuildID = i.GuildID
		}
	}

	return user, member
}

func focusedValue(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range opts {
		if opt.Focused {
			if s, ok := opt.Value.(string); ok {
				return s
			}
		}
	}

	return ""
}
