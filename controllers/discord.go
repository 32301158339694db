package controllers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"gitlab.com/BIC_Dev/trabajo-bot/viewmodels"
	"go.uber.org/zap"
)

// GetAllGuilds responds with all connected guilds from the cached state
func (c *Controller) GetAllGuilds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if c.State == nil {
		Error(ctx, w, "Discord state is not enabled", errors.New("discord state not enabled"), http.StatusNotFound)
		return
	}

	guilds := c.guilds()

	outputGuilds := make([]*viewmodels.SmallGuild, 0, len(guilds))
	members := 0
	for _, aGuild := range guilds {
		guild := &viewmodels.SmallGuild{
			ID:          aGuild.ID,
			Name:        aGuild.Name,
			OwnerID:     aGuild.OwnerID,
			MemberCount: aGuild.MemberCount,
		}

		if !aGuild.JoinedAt.IsZero() {
			guild.JoinedAt = aGuild.JoinedAt.UTC().Format(time.RFC3339)
		}

		members += aGuild.MemberCount
		outputGuilds = append(outputGuilds, guild)
	}

	sort.Slice(outputGuilds, func(a, b int) bool {
		return outputGuilds[a].Name < outputGuilds[b].Name
	})

	Response(ctx, w, viewmodels.GetAllGuildsResponse{
		Message: "Found guilds",
		Count:   len(outputGuilds),
		Members: members,
		Guilds:  outputGuilds,
	}, http.StatusOK)
}

// guilds copies the guild list out of the state cache
func (c *Controller) guilds() []*discordgo.Guild {
	if c.State == nil {
		return nil
	}

	c.State.RLock()
	defer c.State.RUnlock()

	return append([]*discordgo.Guild(nil), c.State.Guilds...)
}
