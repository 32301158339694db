package runners

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/models"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/cache"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// DefaultAnnouncementTTL keeps an announcement claimed for the rest of the day
const DefaultAnnouncementTTL = 24 * time.Hour

// BirthdayAnnouncements posts today's birthdays to each guild's system channel
func (r *Runners) BirthdayAnnouncements(ctx context.Context, runner configs.Runner) {
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("runner", "birthdays"),
	)

	workers := runner.Workers
	if workers < 1 {
		workers = 1
	}

	wp := workerpool.New(workers)
	defer wp.Stop()

	every(ctx, runner, func() {
		r.birthdayRun(ctx, wp)
	})
}

func (r *Runners) birthdayRun(ctx context.Context, wp *workerpool.WorkerPool) {
	requestID := uuid.New()
	ctx = logging.AddValues(ctx, zap.String("request_id", requestID.String()))

	if wp.WaitingQueueSize() > 0 {
		newCtx := logging.AddValues(ctx,
			zap.Int("queue_size", wp.WaitingQueueSize()),
			zap.NamedError("error", errors.New("queue not empty")),
			zap.String("error_message", "cannot start new birthday run with non-empty queue"),
		)
		logger := logging.Logger(newCtx)
		logger.Error("runner_log")
		return
	}

	today := r.now().UTC()
	date := strfmt.Date(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC))
	ctx = logging.AddValues(ctx, zap.String("date", date.String()))

	birthdays, err := r.Birthdays.BirthdaysOn(ctx, today.Month(), today.Day())
	if err != nil {
		newCtx := logging.AddValues(ctx,
			zap.NamedError("error", err),
			zap.String("error_message", "Failed to fetch today's birthdays"),
		)
		logger := logging.Logger(newCtx)
		logger.Error("runner_log")
		return
	}

	logger := logging.Logger(ctx)
	logger.Info("runner_log", zap.Int("birthdays", len(birthdays)))

	if len(birthdays) == 0 {
		return
	}

	for _, guild := range r.guilds() {
		guildID := guild.ID
		channelID := guild.SystemChannelID
		gCtx := logging.AddValues(ctx, zap.String("guild_id", guildID))

		wp.Submit(func() {
			r.AnnounceBirthdays(gCtx, guildID, channelID, birthdays, date)
		})
	}
}

// AnnounceBirthdays posts one message per member with a birthday and returns how many were sent.
// Each guild, user and date is announced at most once.
func (r *Runners) AnnounceBirthdays(ctx context.Context, guildID string, channelID string, birthdays []*models.Birthday, date strfmt.Date) int {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if channelID == "" {
		return 0
	}

	ttl, err := cache.SettingTTL(r.Config.CacheSettings.BirthdayAnnouncement)
	if err != nil || ttl <= 0 {
		ttl = DefaultAnnouncementTTL
	}

	sent := 0
	for _, birthday := range birthdays {
		userID := birthday.UserIDString()
		if !r.isMember(ctx, guildID, userID) {
			continue
		}

		announcement := &models.BirthdayAnnouncement{
			GuildID: guildID,
			UserID:  userID,
			Date:    date,
		}
		key := announcement.CacheKey(r.Config.CacheSettings.BirthdayAnnouncement.Base)

		ok, _, err := r.Cooldowns.Acquire(ctx, key, ttl)
		if err != nil {
			newCtx := logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to claim birthday announcement"))
			logger := logging.Logger(newCtx)
			logger.Error("runner_log")
			continue
		}

		if !ok {
			continue
		}

		if _, sErr := discordapi.SendMessage(ctx, r.Session, channelID, fmt.Sprintf("🎂 Happy birthday <@%s>!", userID)); sErr != nil {
			newCtx := logging.AddValues(ctx, zap.NamedError("error", sErr.Err), zap.String("error_message", sErr.Message), zap.Int("status_code", sErr.Code))
			logger := logging.Logger(newCtx)
			logger.Error("runner_log")

			// let the next run try again
			if rErr := r.Cooldowns.Release(ctx, key); rErr != nil {
				newCtx = logging.AddValues(ctx, zap.NamedError("error", rErr), zap.String("error_message", "Failed to release birthday announcement"))
				logger = logging.Logger(newCtx)
				logger.Error("runner_log")
			}
			continue
		}

		sent++
	}

	return sent
}

// isMember prefers the state cache and falls back to the API for members large guilds never send
func (r *Runners) isMember(ctx context.Context, guildID string, userID string) bool {
	if r.State != nil {
		if m, err := r.State.Member(guildID, userID); err == nil && m != nil {
			return true
		}
	}

	m, err := discordapi.GetMember(ctx, r.Session, guildID, userID)
	return err == nil && m != nil
}
