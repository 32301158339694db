package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// Latency is the heartbeat and REST round trip measured by /ping
type Latency struct {
	Heartbeat time.Duration
	RoundTrip time.Duration
}

// Ping func
func (c *Commands) Ping(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	start := c.now()
	if !c.Defer(ctx, i) {
		c.Failure(ctx, i, GenericFailureMessage, errors.New("failed to acknowledge ping"))
		return
	}

	latency := Latency{
		Heartbeat: NonNegative(c.Session.HeartbeatLatency()),
		RoundTrip: NonNegative(c.now().Sub(start)),
	}

	ctx = logging.AddValues(ctx,
		zap.Int64("heartbeat_ms", latency.Heartbeat.Milliseconds()),
		zap.Int64("round_trip_ms", latency.RoundTrip.Milliseconds()),
	)
	logger := logging.Logger(ctx)
	logger.Info("command_log")

	c.Output(ctx, i, discordapi.EmbeddableParams{
		Title:        "Pong! 🏓",
		TitleURL:     c.Config.Bot.DocumentationURL,
		ThumbnailURL: c.Config.Bot.OkThumbnail,
		Footer:       fmt.Sprintf("Executed by %s", invoker(i.Interaction).Username),
	}, []discordapi.EmbeddableField{
		discordapi.Field{Name: "Latency", Value: Milliseconds(latency.Heartbeat), Inline: true},
		discordapi.Field{Name: "Round trip", Value: Milliseconds(latency.RoundTrip), Inline: true},
	}, nil)
}

// NonNegative clamps d to zero. The heartbeat latency is negative until the first ack arrives.
func NonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}

	return d
}

// Milliseconds func
func Milliseconds(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
