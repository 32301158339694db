package configs

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Config struct that contains the structure of the config
type Config struct {
	Redis struct {
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		Pool    int    `yaml:"pool"`
		Enabled bool   `yaml:"enabled"`
	} `yaml:"REDIS"`
	CacheSettings struct {
		Cooldown             CacheSetting `yaml:"cooldown"`
		BirthdayAnnouncement CacheSetting `yaml:"birthday_announcement"`
	} `yaml:"CACHE_SETTINGS"`
	Bot struct {
		Name              string        `yaml:"name"`
		Version           string        `yaml:"version"`
		OkColor           int           `yaml:"ok_color"`
		WarnColor         int           `yaml:"warn_color"`
		ErrorColor        int           `yaml:"error_color"`
		DocumentationURL  string        `yaml:"documentation_url"`
		WorkingThumbnail  string        `yaml:"working_thumbnail"`
		OkThumbnail       string        `yaml:"ok_thumbnail"`
		WarnThumbnail     string        `yaml:"warn_thumbnail"`
		ErrorThumbnail    string        `yaml:"error_thumbnail"`
		InvitePermissions []string      `yaml:"invite_permissions"`
		CommandTimeout    time.Duration `yaml:"command_timeout"`
		Workers           int           `yaml:"workers"`
		ReplyDeleteAfter  time.Duration `yaml:"reply_delete_after"`
	} `yaml:"BOT"`
	Runners struct {
		Birthdays Runner `yaml:"birthdays"`
		Presence  Runner `yaml:"presence"`
	} `yaml:"RUNNERS"`
	Fun struct {
		EightBallAnswers []string `yaml:"eight_ball_answers"`
		PewGifs          []string `yaml:"pew_gifs"`
		PewTag           string   `yaml:"pew_tag"`
		GifRating        string   `yaml:"gif_rating"`
	} `yaml:"FUN"`
	Giphy struct {
		Host     string        `yaml:"host"`
		BasePath string        `yaml:"base_path"`
		Scheme   string        `yaml:"scheme"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"GIPHY"`
	Music struct {
		DefaultVolume int `yaml:"default_volume"`
		MaxVolume     int `yaml:"max_volume"`
		Nightcore     struct {
			Pitch float64 `yaml:"pitch"`
			Speed float64 `yaml:"speed"`
			Rate  float64 `yaml:"rate"`
		} `yaml:"nightcore"`
	} `yaml:"MUSIC"`
	Logging struct {
		OutputPaths []string `yaml:"output_paths"`
	} `yaml:"LOGGING"`
	Categories    []Category `yaml:"CATEGORIES"`
	Commands      []Command  `yaml:"COMMANDS"`
	OwnerCommands []Command  `yaml:"OWNER_COMMANDS"`
}

// CacheSetting struct
type CacheSetting struct {
	Base    string `yaml:"base"`
	TTL     string `yaml:"ttl"`
	Enabled bool   `yaml:"enabled"`
}

// Category struct
type Category struct {
	Name        string   `yaml:"name"`
	Short       string   `yaml:"short"`
	Description string   `yaml:"description"`
	Aliases     []string `yaml:"aliases"`
}

// Command struct
type Command struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Category    string          `yaml:"category"`
	Enabled     bool            `yaml:"enabled"`
	GuildOnly   bool            `yaml:"guild_only"`
	Ephemeral   bool            `yaml:"ephemeral"`
	Permission  string          `yaml:"permission"`
	Cooldown    time.Duration   `yaml:"cooldown"`
	Requires    string          `yaml:"requires"`
	Options     []CommandOption `yaml:"options"`
	Usage       []string        `yaml:"usage"`
	Examples    []string        `yaml:"examples"`
}

// CommandOption struct
type CommandOption struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	Description  string   `yaml:"description"`
	Required     bool     `yaml:"required"`
	Autocomplete bool     `yaml:"autocomplete"`
	MinValue     *float64 `yaml:"min_value"`
	MaxValue     float64  `yaml:"max_value"`
}

// Runner struct
type Runner struct {
	Frequency time.Duration `yaml:"frequency"`
	Workers   int           `yaml:"workers"`
	Delay     time.Duration `yaml:"delay"`
	Enabled   bool          `yaml:"enabled"`
}

// Requirements a command may declare with `requires`
const (
	RequiresDatabase = "database"
	RequiresMusic    = "music"
)

// GetConfig gets the config file and returns a Config struct
func GetConfig(ctx context.Context, env string) *Config {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	config, err := LoadConfig("./configs/conf-" + env + ".yml")
	if err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to load config"))
		logger := logging.Logger(ctx)
		logger.Fatal("error_log")
	}

	return config
}

// LoadConfig reads and validates a YAML config file
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	var config Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	return &config, nil
}

// Validate checks the command catalog for values Discord would reject
func (c *Config) Validate() error {
	if _, err := PermissionBits(c.Bot.InvitePermissions); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	for _, command := range append(append([]Command{}, c.Commands...), c.OwnerCommands...) {
		if command.Name == "" {
			return fmt.Errorf("command with empty name")
		}

		if _, ok := seen[command.Name]; ok {
			return fmt.Errorf("duplicate command: %s", command.Name)
		}
		seen[command.Name] = struct{}{}

		if command.Permission != "" {
			if _, err := PermissionBits([]string{command.Permission}); err != nil {
				return fmt.Errorf("command %s: %w", command.Name, err)
			}
		}

		for _, option := range command.Options {
			if _, ok := optionTypes[option.Type]; !ok {
				return fmt.Errorf("command %s: unknown option type %q", command.Name, option.Type)
			}
		}
	}

	return nil
}

// Command finds an enabled or disabled slash command by name
func (c *Config) Command(name string) (Command, bool) {
	return findCommand(c.Commands, name)
}

// OwnerCommand finds an owner text command by name
func (c *Config) OwnerCommand(name string) (Command, bool) {
	return findCommand(c.OwnerCommands, name)
}

// Category finds a category by name, short name or alias
func (c *Config) Category(name string) (Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, category := range c.Categories {
		if strings.ToLower(category.Name) == name || category.Short == name {
			return category, true
		}

		for _, alias := range category.Aliases {
			if alias == name {
				return category, true
			}
		}
	}

	return Category{}, false
}

// CategoryCommands lists the enabled commands of a category in catalog order
func (c *Config) CategoryCommands(category Category) []Command {
	var commands []Command
	for _, command := range c.Commands {
		if !command.Enabled {
			continue
		}

		if command.Category == category.Short {
			commands = append(commands, command)
		}
	}

	return commands
}

func findCommand(commands []Command, name string) (Command, bool) {
	name = strings.ToLower(name)
	for _, command := range commands {
		if command.Name == name {
			return command, true
		}
	}

	return Command{}, false
}
