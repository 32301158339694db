package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
)

// Dependencies records which optional backends this process has
type Dependencies struct {
	Database bool
	Music    bool
}

// Satisfies reports whether a command's backend requirement is met
func (d Dependencies) Satisfies(command configs.Command) bool {
	switch command.Requires {
	case "":
		return true
	case configs.RequiresDatabase:
		return d.Database
	case configs.RequiresMusic:
		return d.Music
	default:
		return false
	}
}

// Definitions turns the enabled catalog entries into the commands registered with Discord
func Definitions(config *configs.Config, deps Dependencies) ([]*discordgo.ApplicationCommand, error) {
	var definitions []*discordgo.ApplicationCommand
	for _, command := range config.Commands {
		if !command.Enabled || !deps.Satisfies(command) {
			continue
		}

		definition, err := Definition(command)
		if err != nil {
			return nil, err
		}

		definitions = append(definitions, definition)
	}

	return definitions, nil
}

// Definition builds one slash command. A permission becomes the default member permission so Discord hides the command from members without it.
func Definition(command configs.Command) (*discordgo.ApplicationCommand, error) {
	definition := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        command.Name,
		Description: command.Description,
		Options:     []*discordgo.ApplicationCommandOption{},
	}

	if command.Permission != "" {
		bits, err := configs.PermissionBits([]string{command.Permission})
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", command.Name, err)
		}

		definition.DefaultMemberPermissions = &bits
	}

	if command.GuildOnly {
		dm := false
		definition.DMPermission = &dm
	}

	for _, option := range command.Options {
		optionType, ok := configs.OptionType(option.Type)
		if !ok {
			return nil, fmt.Errorf("command %s: unknown option type %q", command.Name, option.Type)
		}

		definition.Options = append(definition.Options, &discordgo.ApplicationCommandOption{
			Type:         optionType,
			Name:         option.Name,
			Description:  option.Description,
			Required:     option.Required,
			Autocomplete: option.Autocomplete,
			MinValue:     option.MinValue,
			MaxValue:     option.MaxValue,
		})
	}

	return definition, nil
}

// Dependencies reports which optional backends are wired in
func (c *Commands) Dependencies() Dependencies {
	return Dependencies{
		Database: c.Birthdays != nil,
		Music:    c.Music != nil,
	}
}
