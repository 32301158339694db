package controllers

import (
	"net/http"

	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/stats"
	"gitlab.com/BIC_Dev/trabajo-bot/viewmodels"
	"go.uber.org/zap"
)

// GetStatus responds with the availability status of this service
func (c *Controller) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	s := stats.Collect(ctx, c.Start)

	status := viewmodels.GetStatusResponse{
		Message:       "Service is available",
		Version:       c.Config.Bot.Version,
		Uptime:        s.UptimeString(),
		UptimeSeconds: int64(s.Uptime.Seconds()),
		Memory:        s.Memory(),
		Goroutines:    s.Goroutines,
		Guilds:        len(c.guilds()),
	}

	if c.Latency != nil {
		if latency := c.Latency(); latency > 0 {
			status.LatencyMS = latency.Milliseconds()
		}
	}

	Response(ctx, w, status, http.StatusOK)
}
