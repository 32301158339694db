package discordapi

import "github.com/bwmarrin/discordgo"

// JoinVoice asks the gateway to move the bot into a voice channel. The voice connection itself is left to Lavalink.
func JoinVoice(session Session, guildID string, channelID string) *Error {
	if err := session.ChannelVoiceJoinManual(guildID, channelID, false, true); err != nil {
		return ParseDiscordError(err)
	}

	return nil
}

// LeaveVoice func
func LeaveVoice(session Session, guildID string) *Error {
	if err := session.ChannelVoiceJoinManual(guildID, "", false, false); err != nil {
		return ParseDiscordError(err)
	}

	return nil
}

// UserVoiceChannel returns the voice channel the user sits in, or ""
func UserVoiceChannel(state *discordgo.State, guildID string, userID string) string {
	if state == nil {
		return ""
	}

	vs, err := state.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}

	return vs.ChannelID
}
