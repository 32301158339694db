package admin

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/pflag"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/stats"
	"go.uber.org/zap"
)

const workingEmoji = "⏳"

// SyncTarget reads the sync flags. Without flags the configured test guild is used, or global registration when there is none.
func SyncTarget(args []string, defaultGuild string) (string, error) {
	flags := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	guild := flags.StringP("guild", "g", "", "register to one guild")
	global := flags.Bool("global", false, "register globally")

	if err := flags.Parse(args); err != nil {
		return "", err
	}

	if *global && *guild != "" {
		return "", errors.New("--guild and --global cannot be combined")
	}

	switch {
	case *global:
		return "", nil
	case *guild != "":
		return *guild, nil
	default:
		return defaultGuild, nil
	}
}

// Sync re-registers the slash commands
func (a *Admin) Sync(ctx context.Context, mc *discordgo.MessageCreate, args []string) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	guildID, err := SyncTarget(args, a.Environment.TestGuildID)
	if err != nil {
		a.Reply(ctx, mc.ChannelID, fmt.Sprintf("Invalid flags: %s", err.Error()))
		return
	}

	if rErr := discordapi.AddReaction(ctx, a.Session, mc.ChannelID, mc.ID, workingEmoji); rErr != nil {
		a.logError(ctx, rErr.Message, rErr)
	}

	count, err := a.Register(ctx, guildID)
	if err != nil {
		a.logError(ctx, "Failed to sync commands", err)
		a.Reply(ctx, mc.ChannelID, fmt.Sprintf("Failed to sync commands: %s", err.Error()))
		return
	}

	if guildID == "" {
		a.Reply(ctx, mc.ChannelID, fmt.Sprintf("Synced %d commands globally.", count))
		return
	}

	a.Reply(ctx, mc.ChannelID, fmt.Sprintf("Synced %d commands to guild %s.", count, guildID))
}

// Stats replies with process statistics
func (a *Admin) Stats(ctx context.Context, mc *discordgo.MessageCreate) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	s := stats.Collect(ctx, a.Start)

	guilds := 0
	if a.State != nil {
		a.State.RLock()
		guilds = len(a.State.Guilds)
		a.State.RUnlock()
	}

	embeds := discordapi.CreateEmbeds(discordapi.EmbeddableParams{
		Title: "Stats",
		Color: a.Config.Bot.OkColor,
	}, []discordapi.EmbeddableField{
		discordapi.Field{Name: "Memory", Value: s.Memory(), Inline: true},
		discordapi.Field{Name: "CPU", Value: fmt.Sprintf("%.1f%%", s.CPUPercent), Inline: true},
		discordapi.Field{Name: "Goroutines", Value: stats.Count(s.Goroutines), Inline: true},
		discordapi.Field{Name: "Uptime", Value: s.UptimeString(), Inline: true},
		discordapi.Field{Name: "Servers", Value: stats.Count(guilds), Inline: true},
		discordapi.Field{Name: "Log Level", Value: logging.Level(), Inline: true},
	})

	a.Reply(ctx, mc.ChannelID, "", embeds...)
}

// LogLevel changes the log level at runtime
func (a *Admin) LogLevel(ctx context.Context, mc *discordgo.MessageCreate, args []string) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if len(args) == 0 {
		a.Reply(ctx, mc.ChannelID, fmt.Sprintf("Log level is %s.", logging.Level()))
		return
	}

	if err := logging.SetLevel(args[0]); err != nil {
		a.Reply(ctx, mc.ChannelID, fmt.Sprintf("Unknown log level: %s. Use debug, info, warn or error.", args[0]))
		return
	}

	a.Reply(ctx, mc.ChannelID, fmt.Sprintf("Log level set to %s.", logging.Level()))
}

// ShutdownCommand says goodbye and cancels the root context
func (a *Admin) ShutdownCommand(ctx context.Context, mc *discordgo.MessageCreate) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	a.Reply(ctx, mc.ChannelID, "Shutting down... Goodbye!")

	if a.Shutdown != nil {
		a.Shutdown()
	}
}
