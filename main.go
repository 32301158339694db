package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gammazero/workerpool"
	"github.com/urfave/cli/v2"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/controllers"
	"gitlab.com/BIC_Dev/trabajo-bot/database"
	"gitlab.com/BIC_Dev/trabajo-bot/interactions"
	"gitlab.com/BIC_Dev/trabajo-bot/interactions/admin"
	"gitlab.com/BIC_Dev/trabajo-bot/interactions/commands"
	"gitlab.com/BIC_Dev/trabajo-bot/routes"
	"gitlab.com/BIC_Dev/trabajo-bot/runners"
	"gitlab.com/BIC_Dev/trabajo-bot/services/giphyservice"
	"gitlab.com/BIC_Dev/trabajo-bot/services/lavalinkservice"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/cache"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/reporting"
	"go.uber.org/zap"
)

const (
	defaultWorkers = 10
	flushTimeout   = 2 * time.Second
)

// intents the bot identifies with
const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildPresences |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent

// App holds what every CLI command loads before it runs
type App struct {
	Environment *configs.Environment
	Config      *configs.Config
	Reporter    *reporting.Reporter
	Start       time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "trabajo-bot",
		Usage: "Discord bot for moderation, information, fun, birthdays and music",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "optional .env file loaded before the environment is parsed",
				Value: ".env",
			},
		},
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "bot",
				Usage:  "connect to Discord and serve commands",
				Action: runBot,
			},
			{
				Name:   "register",
				Usage:  "overwrite the slash commands and exit",
				Action: runRegister,
			},
			{
				Name:   "migrate",
				Usage:  "run database migrations and exit",
				Action: runMigrate,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// Load reads the environment and config file and sets up logging and error reporting
func Load(c *cli.Context) (*App, error) {
	environment, err := configs.LoadEnvironment(c.String("env-file"))
	if err != nil {
		return nil, fmt.Errorf("FAILED TO LOAD ENVIRONMENT: %w", err)
	}

	ctx := logging.AddValues(c.Context,
		zap.String("scope", logging.GetFuncName()),
		zap.String("env", environment.Environment),
	)

	config := configs.GetConfig(ctx, environment.Environment)
	environment.ApplyOverrides(config)

	if err := logging.Configure(environment.LogLevel, config.Logging.OutputPaths); err != nil {
		return nil, fmt.Errorf("FAILED TO CONFIGURE LOGGING: %w", err)
	}

	reporter, err := reporting.New(environment.SentryDSN, environment.Environment, config.Bot.Version)
	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to initialise Sentry, continuing without it"))
		logger := logging.Logger(ctx)
		logger.Warn("error_log")
		reporter = &reporting.Reporter{}
	}

	return &App{
		Environment: environment,
		Config:      config,
		Reporter:    reporter,
		Start:       time.Now(),
	}, nil
}

func runBot(c *cli.Context) error {
	app, err := Load(c)
	if err != nil {
		return err
	}

	defer logging.Sync()
	defer app.Reporter.Flush(flushTimeout)

	ctx, shutdown := context.WithCancel(c.Context)
	defer shutdown()

	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("env", app.Environment.Environment),
		zap.String("listener_port", app.Environment.ListenerPort),
		zap.String("base_path", app.Environment.BasePath),
	)

	dg := NewSession(ctx, app.Environment)

	cooldowns := InitCooldowns(ctx, app.Config)
	if closer, ok := cooldowns.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	cmds := &commands.Commands{
		Session:   dg,
		State:     dg.State,
		Config:    app.Config,
		Cooldowns: cooldowns,
		Reporter:  app.Reporter,
		Start:     app.Start,
	}

	run := runners.Runners{
		Session:   dg,
		State:     dg.State,
		Config:    app.Config,
		Cooldowns: cooldowns,
	}

	if db := InitDatabase(ctx, app.Environment); db != nil {
		defer db.Close()
		cmds.Birthdays = db
		run.Birthdays = db
	}

	if app.Environment.GiphyAPIKey != "" {
		client := &http.Client{Timeout: app.Config.Giphy.Timeout}
		cmds.Giphy = giphyservice.InitService(ctx, app.Config, app.Environment.GiphyAPIKey, client)
	}

	music := InitMusic(ctx, dg, app)
	if music != nil {
		defer music.Close()
		music.NowPlaying = cmds.NowPlaying
		cmds.Music = music
	}

	workers := app.Config.Bot.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	pool := workerpool.New(workers)
	defer pool.StopWait()

	comm := &interactions.Interactions{
		Session:     dg,
		Config:      app.Config,
		Environment: app.Environment,
		Commands:    cmds,
		Music:       music,
		Pool:        pool,
	}

	comm.Admin = &admin.Admin{
		Session:     dg,
		State:       dg.State,
		Config:      app.Config,
		Environment: app.Environment,
		Register:    comm.RegisterCommands,
		Shutdown:    shutdown,
		Start:       app.Start,
	}

	comm.SetupHandlers()

	// Open a websocket connection to Discord and begin listening.
	if err := dg.Open(); err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to open Discord web socket"))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
		return err
	}

	defer dg.Close()

	run.StartRunners(ctx)

	if app.Environment.ListenerPort != "" {
		r := routes.Router{
			ServiceToken: app.Environment.ServiceToken,
			Port:         app.Environment.ListenerPort,
			BasePath:     app.Environment.BasePath,
			Controller: &controllers.Controller{
				Config:       app.Config,
				State:        dg.State,
				Latency:      dg.HeartbeatLatency,
				Dependencies: cmds.Dependencies(),
				Start:        app.Start,
			},
		}

		go func() {
			if err := routes.AddRoutes(ctx, r); err != nil {
				errCtx := logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Status API stopped"))
				logger := logging.Logger(errCtx)
				logger.Error("error_log")
			}
		}()
	}

	logger := logging.Logger(ctx)
	logger.Info("Bot is now running")

	<-ctx.Done()

	logger.Info("Shutting down")
	return nil
}

func runRegister(c *cli.Context) error {
	app, err := Load(c)
	if err != nil {
		return err
	}

	defer logging.Sync()

	ctx := logging.AddValues(c.Context, zap.String("scope", logging.GetFuncName()))

	dg := NewSession(ctx, app.Environment)

	self, err := dg.User("@me")
	if err != nil {
		return fmt.Errorf("fetch application user: %w", err)
	}

	cmds := &commands.Commands{
		Session:  dg,
		State:    dg.State,
		Config:   app.Config,
		Reporter: app.Reporter,
	}

	comm := &interactions.Interactions{
		Session:     dg,
		Config:      app.Config,
		Environment: app.Environment,
		Commands:    cmds,
		Available: &commands.Dependencies{
			Database: app.Environment.DatabaseEnabled(),
			Music:    app.Environment.MusicEnabled(),
		},
	}
	comm.SetAppID(self.ID)

	count, err := comm.RegisterCommands(ctx, app.Environment.TestGuildID)
	if err != nil {
		return err
	}

	logger := logging.Logger(ctx)
	logger.Info("command_log", zap.Int("registered", count), zap.String("test_guild_id", app.Environment.TestGuildID))

	return nil
}

func runMigrate(c *cli.Context) error {
	app, err := Load(c)
	if err != nil {
		return err
	}

	defer logging.Sync()

	ctx := logging.AddValues(c.Context, zap.String("scope", logging.GetFuncName()))

	if !app.Environment.DatabaseEnabled() {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	n, err := database.Migrate(ctx, app.Environment.DatabaseURL)
	if err != nil {
		return err
	}

	logger := logging.Logger(ctx)
	logger.Info("database_log", zap.Int("applied", n))

	return nil
}

// NewSession creates the Discord client with the intents the bot needs
func NewSession(ctx context.Context, environment *configs.Environment) *discordgo.Session {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	// Instantiate Discord client
	dg, err := discordgo.New("Bot " + environment.DiscordToken)
	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to create Discord client"))
		logger := logging.Logger(ctx)
		logger.Fatal("error_log")
	}

	dg.Identify.Intents = intents
	dg.StateEnabled = true

	return dg
}

// InitCooldowns uses Redis when it is enabled and an in-memory store otherwise
func InitCooldowns(ctx context.Context, config *configs.Config) cache.CooldownStore {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if !config.Redis.Enabled {
		return cache.NewMemoryCooldowns()
	}

	pool, err := cache.GetClient(ctx, config.Redis.Host, config.Redis.Port, config.Redis.Pool)
	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", err.Message))
		logger := logging.Logger(ctx)
		logger.Fatal("error_log")
	}

	return &cache.RedisCooldowns{
		Cache: &cache.Cache{
			Client: pool,
		},
	}
}

// InitDatabase connects birthday storage, or returns nil when it is not configured or unreachable
func InitDatabase(ctx context.Context, environment *configs.Environment) *database.DB {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if !environment.DatabaseEnabled() {
		logger := logging.Logger(ctx)
		logger.Info("database_log", zap.String("database_message", "DATABASE_URL not set, birthday commands disabled"))
		return nil
	}

	db, err := database.New(ctx, environment.DatabaseURL)
	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to connect to database, birthday commands disabled"))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
		return nil
	}

	return db
}

// InitMusic connects to Lavalink, or returns nil when it is not configured or unreachable
func InitMusic(ctx context.Context, dg *discordgo.Session, app *App) *lavalinkservice.LavalinkService {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if !app.Environment.MusicEnabled() {
		return nil
	}

	// a bot's application id is its user id
	self, err := dg.User("@me")
	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to fetch bot user, music disabled"))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
		return nil
	}

	music, err := lavalinkservice.InitService(ctx, app.Config, self.ID, app.Environment.LavalinkHosts, app.Environment.LavalinkPassword, app.Environment.LavalinkSecure)
	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to connect to Lavalink, music disabled"))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
		return nil
	}

	return music
}
