package runners

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/models"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/cache"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// BirthdayFinder looks up the birthdays falling on a calendar day
type BirthdayFinder interface {
	BirthdaysOn(ctx context.Context, month time.Month, day int) ([]*models.Birthday, error)
}

// Runners struct
type Runners struct {
	Session   discordapi.Session
	State     *discordgo.State
	Config    *configs.Config
	Cooldowns cache.CooldownStore
	Birthdays BirthdayFinder
	Now       func() time.Time
}

// Error struct
type Error struct {
	Message string `json:"message"`
	Err     error  `json:"error"`
}

// Error func
func (e *Error) Error() string {
	return e.Err.Error()
}

// StartRunners starts every enabled runner. They stop when ctx is cancelled.
func (r *Runners) StartRunners(ctx context.Context) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))
	logger := logging.Logger(ctx)

	if r.Config.Runners.Birthdays.Enabled {
		if r.Birthdays == nil || r.Cooldowns == nil {
			logger.Warn("runner_log", zap.String("runner", "birthdays"), zap.String("runner_message", "Birthday runner needs a database"))
		} else {
			go r.BirthdayAnnouncements(ctx, r.Config.Runners.Birthdays)
		}
	}

	if r.Config.Runners.Presence.Enabled {
		go r.Presence(ctx, r.Config.Runners.Presence)
	}
}

// every waits for the runner delay, then calls fn on each tick until ctx is done
func every(ctx context.Context, runner configs.Runner, fn func()) {
	if runner.Delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(runner.Delay):
		}
	}

	frequency := runner.Frequency
	if frequency <= 0 {
		frequency = time.Hour
	}

	ticker := time.NewTicker(frequency)
	defer ticker.Stop()

	fn()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

func (r *Runners) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}

	return time.Now()
}

// guilds copies the guild list out of the state cache
func (r *Runners) guilds() []*discordgo.Guild {
	if r.State == nil {
		return nil
	}

	r.State.RLock()
	defer r.State.RUnlock()

	return append([]*discordgo.Guild(nil), r.State.Guilds...)
}
