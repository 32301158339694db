package interactions

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/interactions/admin"
	"gitlab.com/BIC_Dev/trabajo-bot/interactions/commands"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/services/lavalinkservice"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// Interactions wires gateway events to the command handlers
type Interactions struct {
	Session     *discordgo.Session
	REST        discordapi.Session
	Config      *configs.Config
	Environment *configs.Environment
	Commands    *commands.Commands
	Admin       *admin.Admin
	Music       *lavalinkservice.LavalinkService
	Pool        *workerpool.WorkerPool

	// Available overrides what Commands reports, so commands can be registered without connecting the backends
	Available *commands.Dependencies

	mu    sync.RWMutex
	appID string
}

// Error struct
type Error struct {
	Message string `json:"message"`
	Err     error  `json:"error"`
	Code    int    `json:"code"`
}

// Error func
func (ie *Error) Error() string {
	return ie.Err.Error()
}

// Unwrap func
func (ie *Error) Unwrap() error {
	return ie.Err
}

// SetupHandlers func
func (i *Interactions) SetupHandlers() {
	i.Session.AddHandler(i.Ready)
	i.Session.AddHandler(i.InteractionCreate)
	i.Session.AddHandler(i.MessageCreate)

	if i.Music != nil {
		i.Session.AddHandler(i.VoiceStateUpdate)
		i.Session.AddHandler(i.VoiceServerUpdate)
	}
}

// SetAppID records the application the slash commands belong to
func (i *Interactions) SetAppID(appID string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.appID = appID
}

// AppID func
func (i *Interactions) AppID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.appID
}

func (i *Interactions) rest() discordapi.Session {
	if i.REST != nil {
		return i.REST
	}

	return i.Session
}

func (i *Interactions) dependencies() commands.Dependencies {
	if i.Available != nil {
		return *i.Available
	}

	return i.Commands.Dependencies()
}

// Ready registers the slash commands once the gateway session is up
func (i *Interactions) Ready(s *discordgo.Session, r *discordgo.Ready) {
	requestID := uuid.New()

	ctx := context.Background()
	ctx = logging.AddValues(ctx,
		zap.String("request_id", requestID.String()),
		zap.String("scope", logging.GetFuncName()),
		zap.String("user_id", r.User.ID),
		zap.String("user_name", r.User.Username),
		zap.Int("guilds", len(r.Guilds)),
	)

	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	i.SetAppID(appID)

	count, err := i.RegisterCommands(ctx, i.Environment.TestGuildID)
	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to register slash commands"))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
		return
	}

	logger := logging.Logger(ctx)
	logger.Info("command_log", zap.Int("registered", count), zap.String("test_guild_id", i.Environment.TestGuildID))
}

// RegisterCommands overwrites the slash commands of one guild, or globally for an empty guildID
func (i *Interactions) RegisterCommands(ctx context.Context, guildID string) (int, error) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	appID := i.AppID()
	if appID == "" {
		return 0, &Error{
			Message: "Application ID is not known yet",
			Err:     fmt.Errorf("register before ready"),
		}
	}

	definitions, err := commands.Definitions(i.Config, i.dependencies())
	if err != nil {
		return 0, &Error{
			Message: "Invalid command catalog",
			Err:     err,
		}
	}

	created, dErr := discordapi.OverwriteCommands(ctx, i.rest(), appID, guildID, definitions)
	if dErr != nil {
		return 0, &Error{
			Message: dErr.Message,
			Err:     dErr,
			Code:    dErr.Code,
		}
	}

	return len(created), nil
}

// InteractionCreate routes slash commands, autocomplete and buttons
func (i *Interactions) InteractionCreate(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	ctx := requestContext(ic.Interaction)

	switch ic.Type {
	case discordgo.InteractionApplicationCommand:
		i.submit(ctx, func() {
			i.Commands.Factory(ctx, ic.Interaction)
		})
	case discordgo.InteractionApplicationCommandAutocomplete:
		i.submit(ctx, func() {
			i.Commands.Autocomplete(ctx, ic.Interaction)
		})
	case discordgo.InteractionMessageComponent:
		i.submit(ctx, func() {
			i.Commands.Component(ctx, ic.Interaction)
		})
	default:
		logger := logging.Logger(ctx)
		logger.Debug("command_log", zap.Int("interaction_type", int(ic.Type)))
	}
}

// MessageCreate hands prefixed messages to the owner commands
func (i *Interactions) MessageCreate(s *discordgo.Session, mc *discordgo.MessageCreate) {
	if mc.Author == nil || mc.Author.Bot {
		return
	}

	if s != nil && s.State != nil && s.State.User != nil && mc.Author.ID == s.State.User.ID {
		return
	}

	if i.Admin == nil {
		return
	}

	requestID := uuid.New()

	ctx := context.Background()
	ctx = logging.AddValues(ctx,
		zap.String("request_id", requestID.String()),
		zap.String("scope", logging.GetFuncName()),
		zap.String("guild_id", mc.GuildID),
		zap.String("channel_id", mc.ChannelID),
		zap.String("message_id", mc.ID),
		zap.String("user_id", mc.Author.ID),
		zap.String("user_name", mc.Author.Username),
	)

	i.submit(ctx, func() {
		i.Admin.Factory(ctx, mc)
	})
}

// VoiceStateUpdate forwards the bot's own voice state to Lavalink
func (i *Interactions) VoiceStateUpdate(s *discordgo.Session, vsu *discordgo.VoiceStateUpdate) {
	if s.State == nil || s.State.User == nil || vsu.UserID != s.State.User.ID {
		return
	}

	ctx := logging.AddValues(context.Background(),
		zap.String("scope", logging.GetFuncName()),
		zap.String("guild_id", vsu.GuildID),
		zap.String("channel_id", vsu.ChannelID),
	)

	i.Music.OnVoiceStateUpdate(ctx, vsu.GuildID, vsu.ChannelID, vsu.SessionID)
}

// VoiceServerUpdate forwards voice server credentials to Lavalink
func (i *Interactions) VoiceServerUpdate(s *discordgo.Session, vsu *discordgo.VoiceServerUpdate) {
	ctx := logging.AddValues(context.Background(),
		zap.String("scope", logging.GetFuncName()),
		zap.String("guild_id", vsu.GuildID),
	)

	i.Music.OnVoiceServerUpdate(ctx, vsu.GuildID, vsu.Token, vsu.Endpoint)
}

// submit runs fn on the worker pool so the gateway event loop is never blocked
func (i *Interactions) submit(ctx context.Context, fn func()) {
	run := func() {
		defer i.recoverPanic(ctx)
		fn()
	}

	if i.Pool == nil {
		go run()
		return
	}

	i.Pool.Submit(run)
}

func (i *Interactions) recoverPanic(ctx context.Context) {
	r := recover()
	if r == nil {
		return
	}

	err := fmt.Errorf("panic: %v", r)
	code := i.Commands.Reporter.Report(ctx, err, map[string]string{"kind": "panic"})

	ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_code", code))
	logger := logging.Logger(ctx)
	logger.Error("panic_log", zap.Stack("stack"))
}

func requestContext(i *discordgo.Interaction) context.Context {
	requestID := uuid.New()

	userID := ""
	userName := ""
	if i.Member != nil && i.Member.User != nil {
		userID = i.Member.User.ID
		userName = i.Member.User.Username
	} else if i.User != nil {
		userID = i.User.ID
		userName = i.User.Username
	}

	return logging.AddValues(context.Background(),
		zap.String("request_id", requestID.String()),
		zap.String("interaction_id", i.ID),
		zap.String("guild_id", i.GuildID),
		zap.String("channel_id", i.ChannelID),
		zap.String("user_id", userID),
		zap.String("user_name", userName),
	)
}
