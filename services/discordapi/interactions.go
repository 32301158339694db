package discordapi

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Respond sends an immediate message response to an interaction
func Respond(ctx context.Context, session Session, interaction *discordgo.Interaction, data *discordgo.InteractionResponseData) *Error {
	err := session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))

	if err != nil {
		return ParseDiscordError(err)
	}

	return nil
}

// DeferResponse acknowledges an interaction so the reply can be edited in later
func DeferResponse(ctx context.Context, session Session, interaction *discordgo.Interaction, ephemeral bool) *Error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))

	if err != nil {
		return ParseDiscordError(err)
	}

	return nil
}

// EditResponse replaces the original (usually deferred) response
func EditResponse(ctx context.Context, session Session, interaction *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, *Error) {
	message, err := session.InteractionResponseEdit(interaction, edit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, ParseDiscordError(err)
	}

	return message, nil
}

// Followup sends an additional message after the interaction was answered
func Followup(ctx context.Context, session Session, interaction *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, *Error) {
	message, err := session.FollowupMessageCreate(interaction, true, params, discordgo.WithContext(ctx))
	if err != nil {
		return nil, ParseDiscordError(err)
	}

	return message, nil
}

// UpdateComponentMessage edits the message whose button was pressed
func UpdateComponentMessage(ctx context.Context, session Session, interaction *discordgo.Interaction, data *discordgo.InteractionResponseData) *Error {
	err := session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}, discordgo.WithContext(ctx))

	if err != nil {
		return ParseDiscordError(err)
	}

	return nil
}

// RespondAutocomplete answers an autocomplete request with up to 25 choices
func RespondAutocomplete(ctx context.Context, session Session, interaction *discordgo.Interaction, choices []*discordgo.ApplicationCommandOptionChoice) *Error {
	if len(choices) > MaxAutocompleteChoices {
		choices = choices[:MaxAutocompleteChoices]
	}

	err := session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	}, discordgo.WithContext(ctx))

	if err != nil {
		return ParseDiscordError(err)
	}

	return nil
}

// MaxAutocompleteChoices const
const MaxAutocompleteChoices = 25
