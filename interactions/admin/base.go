package admin

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// RegisterFunc overwrites the slash commands of one guild, or globally for an empty guildID, and returns how many were registered
type RegisterFunc func(ctx context.Context, guildID string) (int, error)

// Admin handles prefix text commands reserved for the bot owner
type Admin struct {
	Session     discordapi.Session
	State       *discordgo.State
	Config      *configs.Config
	Environment *configs.Environment
	Register    RegisterFunc
	Shutdown    context.CancelFunc
	Start       time.Time
}

// Parse splits a prefixed message into a command name and its arguments
func Parse(prefix string, content string) (string, []string, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}

	return strings.ToLower(fields[0]), fields[1:], true
}

// Factory runs an owner command and reports whether the message was one
func (a *Admin) Factory(ctx context.Context, mc *discordgo.MessageCreate) bool {
	name, args, ok := Parse(a.Environment.Prefix, mc.Content)
	if !ok {
		return false
	}

	command, ok := a.Config.OwnerCommand(name)
	if !ok || !command.Enabled {
		return false
	}

	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("command", command.Name),
	)

	if !a.Environment.IsOwner(mc.Author.ID) {
		logger := logging.Logger(ctx)
		logger.Warn("owner_log", zap.String("owner_message", "Ignored owner command from another user"))
		return true
	}

	logger := logging.Logger(ctx)
	logger.Info("owner_log")

	switch command.Name {
	case "sync":
		a.Sync(ctx, mc, args)
	case "stats":
		a.Stats(ctx, mc)
	case "loglevel":
		a.LogLevel(ctx, mc, args)
	case "shutdown":
		a.ShutdownCommand(ctx, mc)
	default:
		logger.Warn("owner_log", zap.String("owner_message", "Owner command has no handler"))
	}

	if err := discordapi.DeleteMessage(ctx, a.Session, mc.ChannelID, mc.ID); err != nil {
		a.logError(ctx, err.Message, err)
	}

	return true
}

// Reply sends a message and deletes it once BOT.reply_delete_after passes
func (a *Admin) Reply(ctx context.Context, channelID string, content string, embeds ...*discordgo.MessageEmbed) {
	message, err := discordapi.SendMessage(ctx, a.Session, channelID, content, embeds...)
	if err != nil {
		a.logError(ctx, err.Message, err)
		return
	}

	after := a.Config.Bot.ReplyDeleteAfter
	if after <= 0 {
		return
	}

	time.AfterFunc(after, func() {
		if err := discordapi.DeleteMessage(context.Background(), a.Session, message.ChannelID, message.ID); err != nil {
			a.logError(ctx, err.Message, err)
		}
	})
}

func (a *Admin) logError(ctx context.Context, message string, err error) {
	ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", message))
	logger := logging.Logger(ctx)
	logger.Error("error_log")
}
