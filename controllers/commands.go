package controllers

import (
	"fmt"
	"net/http"

	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"gitlab.com/BIC_Dev/trabajo-bot/viewmodels"
	"go.uber.org/zap"
)

// GetCommands responds with the slash commands this process registers
func (c *Controller) GetCommands(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	var output []*viewmodels.CommandInfo
	for _, command := range c.Config.Commands {
		if !command.Enabled || !c.Dependencies.Satisfies(command) {
			continue
		}

		info := &viewmodels.CommandInfo{
			Name:        command.Name,
			Description: command.Description,
			Category:    command.Category,
			GuildOnly:   command.GuildOnly,
		}

		if category, ok := c.Config.Category(command.Category); ok {
			info.Category = category.Name
		}

		if command.Permission != "" {
			info.Permission = configs.PermissionLabel(command.Permission)
		}

		if command.Cooldown > 0 {
			info.Cooldown = command.Cooldown.String()
		}

		for _, option := range command.Options {
			name := option.Name
			if !option.Required {
				name = fmt.Sprintf("[%s]", name)
			}
			info.Options = append(info.Options, name)
		}

		output = append(output, info)
	}

	Response(ctx, w, viewmodels.GetCommandsResponse{
		Message:  "Found commands",
		Count:    len(output),
		Commands: output,
	}, http.StatusOK)
}
