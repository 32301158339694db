package runners

import (
	"context"
	"fmt"

	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/stats"
	"go.uber.org/zap"
)

// Presence keeps the bot's game status showing the guild count
func (r *Runners) Presence(ctx context.Context, runner configs.Runner) {
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("runner", "presence"),
	)

	every(ctx, runner, func() {
		r.UpdatePresence(ctx)
	})
}

// UpdatePresence func
func (r *Runners) UpdatePresence(ctx context.Context) {
	status := PresenceText(len(r.guilds()))

	if err := r.Session.UpdateGameStatus(0, status); err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to update presence"))
		logger := logging.Logger(ctx)
		logger.Error("runner_log")
		return
	}

	logger := logging.Logger(ctx)
	logger.Debug("runner_log", zap.String("status", status))
}

// PresenceText func
func PresenceText(guilds int) string {
	return fmt.Sprintf("/help in %s servers", stats.Count(guilds))
}
