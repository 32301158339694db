package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

const (
	helpColor     = 0x5865F2
	categoryColor = 0x2ECC71
)

// HelpOutput struct
type HelpOutput struct {
	Command configs.Command `json:"command"`
}

// HelpCategoryOutput struct
type HelpCategoryOutput struct {
	Category configs.Category
}

// Help shows every category, one category, or the category a command belongs to
func (c *Commands) Help(ctx context.Context, i *Interaction) {
	item := stringOption(i, "item")
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("item", item),
	)

	if !c.Defer(ctx, i) {
		return
	}

	footer := fmt.Sprintf("Executed by %s", invoker(i.Interaction).Username)

	if item == "" {
		var fields []discordapi.EmbeddableField
		for _, category := range c.visibleCategories() {
			fields = append(fields, &HelpCategoryOutput{Category: category})
		}

		c.Output(ctx, i, discordapi.EmbeddableParams{
			Title:       "Help - All Categories",
			Description: "``Pick a category or command``",
			Color:       helpColor,
			TitleURL:    c.Config.Bot.DocumentationURL,
			Footer:      footer,
		}, fields, nil)
		return
	}

	category, ok := c.findHelpCategory(item)
	if !ok {
		c.Reply(ctx, i, fmt.Sprintf("No category or command found for: **%s**.", item))
		return
	}

	var fields []discordapi.EmbeddableField
	for _, command := range c.Config.CategoryCommands(category) {
		if !c.Dependencies().Satisfies(command) {
			continue
		}

		fields = append(fields, &HelpOutput{Command: command})
	}

	if len(fields) == 0 {
		fields = append(fields, discordapi.Field{Name: "No commands found", Value: "(This category has no slash commands.)"})
	}

	c.Output(ctx, i, discordapi.EmbeddableParams{
		Title:       fmt.Sprintf("%s Commands", category.Name),
		Description: category.Description,
		Color:       categoryColor,
		TitleURL:    c.Config.Bot.DocumentationURL,
		Footer:      footer,
	}, fields, nil)
}

// findHelpCategory matches a category name or alias first, then a command name
func (c *Commands) findHelpCategory(item string) (configs.Category, bool) {
	if category, ok := c.Config.Category(item); ok {
		return category, true
	}

	command, ok := c.Config.Command(strings.TrimPrefix(strings.TrimSpace(item), "/"))
	if !ok || !command.Enabled {
		return configs.Category{}, false
	}

	return c.Config.Category(command.Category)
}

// visibleCategories lists categories with at least one usable command, sorted by name
func (c *Commands) visibleCategories() []configs.Category {
	deps := c.Dependencies()

	var categories []configs.Category
	for _, category := range c.Config.Categories {
		for _, command := range c.Config.CategoryCommands(category) {
			if deps.Satisfies(command) {
				categories = append(categories, category)
				break
			}
		}
	}

	sort.SliceStable(categories, func(a, b int) bool {
		return strings.ToLower(categories[a].Name) < strings.ToLower(categories[b].Name)
	})

	return categories
}

// helpChoices suggests category names containing the typed text
func (c *Commands) helpChoices(typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))

	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, category := range c.visibleCategories() {
		if !strings.Contains(strings.ToLower(category.Name), typed) {
			continue
		}

		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  category.Name,
			Value: category.Name,
		})

		if len(choices) == discordapi.MaxAutocompleteChoices {
			break
		}
	}

	return choices
}

// ConvertToEmbedField for Help struct
func (h *HelpOutput) ConvertToEmbedField() (*discordgo.MessageEmbedField, *discordapi.Error) {
	description := h.Command.Description
	if description == "" {
		description = "No description."
	}

	value := description
	if len(h.Command.Usage) > 0 {
		value += fmt.Sprintf("\n**USAGE:**\n```\n/%s\n```", strings.Join(h.Command.Usage, "\n/"))
	}

	if len(h.Command.Examples) > 0 {
		value += fmt.Sprintf("\n**EXAMPLES:**\n```\n/%s\n```", strings.Join(h.Command.Examples, "\n/"))
	}

	if h.Command.Permission != "" {
		value += fmt.Sprintf("\n**REQUIRES:** %s", configs.PermissionLabel(h.Command.Permission))
	}

	return &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("/%s", h.Command.Name),
		Value:  discordapi.Truncate(value, discordapi.MaxEmbedFieldCharCount),
		Inline: false,
	}, nil
}

// ConvertToEmbedField for Help struct
func (h *HelpCategoryOutput) ConvertToEmbedField() (*discordgo.MessageEmbedField, *discordapi.Error) {
	description := h.Category.Description
	if description == "" {
		description = "No description."
	}

	return &discordgo.MessageEmbedField{
		Name:   h.Category.Name,
		Value:  description,
		Inline: false,
	}, nil
}
