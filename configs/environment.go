package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment struct
type Environment struct {
	Environment      string   `env:"ENVIRONMENT" envDefault:"local"`
	DiscordToken     string   `env:"DISCORD_TOKEN,required,notEmpty"`
	Prefix           string   `env:"PREFIX" envDefault:"!"`
	OwnerID          string   `env:"OWNER_ID"`
	DatabaseURL      string   `env:"DATABASE_URL"`
	TestGuildID      string   `env:"TEST_GUILD_ID"`
	ListenerPort     string   `env:"LISTENER_PORT"`
	ServiceToken     string   `env:"SERVICE_TOKEN"`
	BasePath         string   `env:"BASE_PATH"`
	RedisHost        string   `env:"REDIS_HOST"`
	RedisPort        int      `env:"REDIS_PORT"`
	RedisPool        int      `env:"REDIS_POOL"`
	SentryDSN        string   `env:"SENTRY_DSN"`
	GiphyAPIKey      string   `env:"GIPHY_API_KEY"`
	LavalinkHosts    []string `env:"LAVALINK_HOST" envSeparator:","`
	LavalinkPassword string   `env:"LAVALINK_PASSWORD"`
	LavalinkSecure   bool     `env:"LAVALINK_SECURE"`
	LogLevel         string   `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadEnvironment reads an optional .env file and parses the process environment
func LoadEnvironment(files ...string) (*Environment, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	environment := &Environment{}
	if err := env.Parse(environment); err != nil {
		return nil, err
	}

	return environment, nil
}

// ApplyOverrides copies environment overrides into the file config
func (e *Environment) ApplyOverrides(config *Config) {
	if e.RedisHost != "" {
		config.Redis.Host = e.RedisHost
		config.Redis.Enabled = true
	}

	if e.RedisPort != 0 {
		config.Redis.Port = e.RedisPort
	}

	if e.RedisPool != 0 {
		config.Redis.Pool = e.RedisPool
	}
}

// DatabaseEnabled reports whether birthday storage is configured
func (e *Environment) DatabaseEnabled() bool {
	return e.DatabaseURL != ""
}

// MusicEnabled reports whether at least one Lavalink node is configured
func (e *Environment) MusicEnabled() bool {
	for _, host := range e.LavalinkHosts {
		if strings.TrimSpace(host) != "" {
			return true
		}
	}

	return false
}

// IsOwner reports whether the user may run owner text commands
func (e *Environment) IsOwner(userID string) bool {
	return e.OwnerID != "" && e.OwnerID == userID
}
