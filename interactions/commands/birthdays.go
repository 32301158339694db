package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"gitlab.com/BIC_Dev/trabajo-bot/database"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// ErrInvalidDate is returned for dates that are not YYYY-MM-DD
var ErrInvalidDate = errors.New("invalid date format")

// ErrFutureDate is returned for birthdays that have not happened yet
var ErrFutureDate = errors.New("date is in the future")

// ParseBirthday validates a YYYY-MM-DD string and rejects dates after today
func ParseBirthday(value string, now time.Time) (strfmt.Date, error) {
	if !strfmt.IsDate(value) {
		return strfmt.Date{}, ErrInvalidDate
	}

	t, err := time.Parse(strfmt.RFC3339FullDate, value)
	if err != nil {
		return strfmt.Date{}, ErrInvalidDate
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if t.After(today) {
		return strfmt.Date{}, ErrFutureDate
	}

	return strfmt.Date(t), nil
}

// SetBirthday stores the invoker's birthday
func (c *Commands) SetBirthday(ctx context.Context, i *Interaction) {
	value := stringOption(i, "date")
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("date", value),
	)

	if !c.Defer(ctx, i) {
		return
	}

	if c.Birthdays == nil {
		c.Reply(ctx, i, "Birthday tracking is not available right now.")
		return
	}

	date, err := ParseBirthday(value, c.now().UTC())
	switch {
	case errors.Is(err, ErrFutureDate):
		c.Reply(ctx, i, "Your birthday cannot be in the future.")
		return
	case err != nil:
		c.Reply(ctx, i, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}

	user := invoker(i.Interaction)
	if err := c.Birthdays.SetBirthday(ctx, user.ID, date); err != nil {
		c.Failure(ctx, i, "An error occurred while setting your birthday. Please try again later.", err)
		return
	}

	c.Reply(ctx, i, fmt.Sprintf("Birthday set to %s for %s", date.String(), user.Mention()))
}

// MyBirthday shows the invoker's stored birthday
func (c *Commands) MyBirthday(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if !c.Defer(ctx, i) {
		return
	}

	if c.Birthdays == nil {
		c.Reply(ctx, i, "Birthday tracking is not available right now.")
		return
	}

	birthday, err := c.Birthdays.GetBirthday(ctx, invoker(i.Interaction).ID)
	if errors.Is(err, database.ErrNotFound) {
		c.Reply(ctx, i, "No birthday set. Use /setbirthday to set it.")
		return
	}

	if err != nil {
		c.Failure(ctx, i, "An error occurred while fetching your birthday. Please try again later.", err)
		return
	}

	c.Reply(ctx, i, fmt.Sprintf("Your birthday is set to **%s**.", birthday.Date.String()))
}

// BirthdayList lists the stored birthdays of members of this guild
func (c *Commands) BirthdayList(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if !c.Defer(ctx, i) {
		return
	}

	if c.Birthdays == nil {
		c.Reply(ctx, i, "Birthday tracking is not available right now.")
		return
	}

	birthdays, err := c.Birthdays.ListBirthdays(ctx)
	if err != nil {
		c.Failure(ctx, i, "An error occurred while fetching the birthday list. Please try again later.", err)
		return
	}

	if len(birthdays) == 0 {
		c.Reply(ctx, i, "No birthdays found.")
		return
	}

	var lines []string
	for _, birthday := range birthdays {
		userID := birthday.UserIDString()
		if !c.isMember(ctx, i.GuildID, userID) {
			continue
		}

		lines = append(lines, fmt.Sprintf("<@%s> - %s", userID, birthday.Date.String()))
	}

	if len(lines) == 0 {
		c.Reply(ctx, i, "No birthdays found for members in this server.")
		return
	}

	c.Output(ctx, i, discordapi.EmbeddableParams{
		Title:  "Birthdays",
		Footer: fmt.Sprintf("%d birthdays", len(lines)),
	}, discordapi.LinesToFields("Birthdays", lines), nil)
}
