package commands

import (
	"context"
	"fmt"

	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

const (
	pewColor  = 0xE74C3C
	coinColor = 0xF1C40F
)

// EightBall answers a question with a random configured answer
func (c *Commands) EightBall(ctx context.Context, i *Interaction) {
	question := stringOption(i, "question")
	ctx = logging.AddValues(ctx,
		zap.String("scope", logging.GetFuncName()),
		zap.String("question", question),
	)

	answers := c.Config.Fun.EightBallAnswers
	if len(answers) == 0 {
		c.Failure(ctx, i, GenericFailureMessage, fmt.Errorf("no 8ball answers configured"))
		return
	}

	answer := answers[c.intn(len(answers))]
	c.Reply(ctx, i, fmt.Sprintf("**Question**: %s\n**Answer**: %s", question, answer))
}

// Pew shoots another member with a GIF
func (c *Commands) Pew(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	user, member := userOption(i, "member")
	if user == nil {
		c.ReplyEphemeral(ctx, i, "Member does not exist")
		return
	}

	if member == nil && !c.isMember(ctx, i.GuildID, user.ID) {
		c.ReplyEphemeral(ctx, i, "Member does not exist")
		return
	}

	if !c.Defer(ctx, i) {
		return
	}

	c.Output(ctx, i, discordapi.EmbeddableParams{
		Title:       "Pew pew!",
		Description: fmt.Sprintf("User %s shot %s!", invoker(i.Interaction).Mention(), user.Mention()),
		Color:       pewColor,
		ImageURL:    c.pewGIF(ctx),
	}, nil, nil)
}

// Coin flips a coin alone or against another member
func (c *Commands) Coin(ctx context.Context, i *Interaction) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	author := invoker(i.Interaction).Mention()

	var description string
	if user, _ := userOption(i, "member"); user != nil {
		winner := author
		if c.intn(2) == 1 {
			winner = user.Mention()
		}

		description = fmt.Sprintf("%s flipped a coin with %s and **%s** won!", author, user.Mention(), winner)
	} else {
		result := "Heads"
		if c.intn(2) == 1 {
			result = "Tails"
		}

		description = fmt.Sprintf("%s flipped a coin and got **%s**!", author, result)
	}

	c.Output(ctx, i, discordapi.EmbeddableParams{
		Title:       "Coin Flip!",
		Description: description,
		Color:       coinColor,
	}, nil, nil)
}

// pewGIF asks Giphy first and falls back to the configured GIFs
func (c *Commands) pewGIF(ctx context.Context) string {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if c.Giphy != nil {
		url, err := c.Giphy.RandomGIF(ctx, c.Config.Fun.PewTag, c.Config.Fun.GifRating)
		if err == nil && url != "" {
			return url
		}

		if err != nil {
			ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to fetch GIF from Giphy"))
			logger := logging.Logger(ctx)
			logger.Warn("error_log")
		}
	}

	gifs := c.Config.Fun.PewGifs
	if len(gifs) == 0 {
		return ""
	}

	return gifs[c.intn(len(gifs))]
}

// isMember checks state first and asks Discord when the member is not cached
func (c *Commands) isMember(ctx context.Context, guildID string, userID string) bool {
	if c.State != nil {
		if m, err := c.State.Member(guildID, userID); err == nil && m != nil {
			return true
		}
	}

	m, err := discordapi.GetMember(ctx, c.Session, guildID, userID)
	return err == nil && m != nil
}
