package discordapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiscordErrorFromRESTError(t *testing.T) {
	err := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Code: CodeMissingPermissions, Message: "Missing Permissions"},
	}

	parsed := ParseDiscordError(fmt.Errorf("kick: %w", err))
	require.NotNil(t, parsed)
	assert.Equal(t, CodeMissingPermissions, parsed.Code)
	assert.Equal(t, http.StatusForbidden, parsed.HTTPStatus)
	assert.Equal(t, "Missing Permissions", parsed.Message)
	assert.True(t, parsed.IsForbidden())
	assert.False(t, parsed.IsUnknownTarget())
}

func TestParseDiscordErrorUnknownMember(t *testing.T) {
	parsed := ParseDiscordError(&discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: CodeUnknownMember, Message: "Unknown Member"},
	})

	assert.True(t, parsed.IsUnknownTarget())
	assert.True(t, parsed.IsNotFound())
}

func TestParseDiscordErrorWithoutResponse(t *testing.T) {
	var parsed *Error
	require.NotPanics(t, func() {
		parsed = ParseDiscordError(&discordgo.RESTError{
			Message: &discordgo.APIErrorMessage{Code: CodeUnknownMember, Message: "Unknown Member"},
		})
	})
	assert.Equal(t, CodeUnknownMember, parsed.Code)
	assert.Equal(t, "Unknown Member", parsed.Message)
	assert.Zero(t, parsed.HTTPStatus)

	require.NotPanics(t, func() {
		parsed = ParseDiscordError(&discordgo.RESTError{})
	})
	assert.Equal(t, -1, parsed.Code)
	assert.Equal(t, "Discord request failed", parsed.Message)
}

func TestParseDiscordErrorPlainError(t *testing.T) {
	parsed := ParseDiscordError(errors.New("websocket closed"))
	assert.Equal(t, -1, parsed.Code)
	assert.Equal(t, "websocket closed", parsed.Message)
	assert.Nil(t, ParseDiscordError(nil))
}

func TestCreateEmbedsSplitsOnFieldCount(t *testing.T) {
	var fields []EmbeddableField
	for i := 0; i < MaxEmbedFields*2+1; i++ {
		fields = append(fields, Field{Name: fmt.Sprintf("f%d", i), Value: "v"})
	}

	embeds := CreateEmbeds(EmbeddableParams{Title: "t", Color: 1}, fields)
	require.Len(t, embeds, 3)
	assert.Len(t, embeds[0].Fields, MaxEmbedFields)
	assert.Len(t, embeds[1].Fields, MaxEmbedFields)
	assert.Len(t, embeds[2].Fields, 1)
	assert.Equal(t, "f0", embeds[0].Fields[0].Name)
	assert.Equal(t, "f23", embeds[1].Fields[0].Name)
}

func TestCreateEmbedsSplitsOnCharCount(t *testing.T) {
	long := strings.Repeat("x", MaxEmbedFieldCharCount)
	var fields []EmbeddableField
	for i := 0; i < 10; i++ {
		fields = append(fields, Field{Name: "n", Value: long})
	}

	embeds := CreateEmbeds(EmbeddableParams{Title: "t"}, fields)
	require.Greater(t, len(embeds), 1)
	for _, embed := range embeds {
		total := len(embed.Title) + len(embed.Description)
		for _, f := range embed.Fields {
			total += len(f.Name) + len(f.Value)
		}
		assert.Less(t, total, MaxEmbedCharCount)
	}
}

func TestCreateEmbedsWithoutFields(t *testing.T) {
	embeds := CreateEmbeds(EmbeddableParams{Title: "Pong!", ThumbnailURL: "https://x/y.png", Footer: "f"}, nil)
	require.Len(t, embeds, 1)
	assert.Equal(t, "Pong!", embeds[0].Title)
	assert.Equal(t, "f", embeds[0].Footer.Text)
	assert.Equal(t, "https://x/y.png", embeds[0].Thumbnail.URL)
}

func TestLinesToFields(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = fmt.Sprintf("<@%d> - 2000-01-01", 100000000000000000+i)
	}

	fields := LinesToFields("Birthdays", lines)
	require.Greater(t, len(fields), 1)

	count := 0
	for _, f := range fields {
		ef, err := f.ConvertToEmbedField()
		require.Nil(t, err)
		assert.LessOrEqual(t, len(ef.Value), MaxEmbedFieldCharCount)
		count += len(strings.Split(ef.Value, "\n"))
	}
	assert.Equal(t, len(lines), count)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdefgh", 5))
	assert.Equal(t, "...", Truncate("ééé", 4))
}

func TestInviteURL(t *testing.T) {
	url := InviteURL("123", discordgo.PermissionKickMembers|discordgo.PermissionBanMembers)
	assert.Equal(t, "https://discord.com/oauth2/authorize?client_id=123&permissions=6&scope=bot+applications.commands", url)
}

type bansSession struct {
	Session
	pages [][]*discordgo.GuildBan
	afters []string
}

func (b *bansSession) GuildBans(guildID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.GuildBan, error) {
	b.afters = append(b.afters, afterID)
	if len(b.pages) == 0 {
		return nil, nil
	}

	page := b.pages[0]
	b.pages = b.pages[1:]
	return page, nil
}

func TestFindBanPagesWithAfterCursor(t *testing.T) {
	first := make([]*discordgo.GuildBan, MaxBansPerPage)
	for i := range first {
		first[i] = &discordgo.GuildBan{User: &discordgo.User{ID: fmt.Sprint(i + 1), Username: fmt.Sprintf("user%d", i+1)}}
	}
	second := []*discordgo.GuildBan{{User: &discordgo.User{ID: "5000", Username: "Target"}}}

	session := &bansSession{pages: [][]*discordgo.GuildBan{first, second}}
	ban, err := FindBan(context.Background(), session, "g", func(b *discordgo.GuildBan) bool {
		return strings.EqualFold(b.User.Username, "target")
	})

	require.Nil(t, err)
	require.NotNil(t, ban)
	assert.Equal(t, "5000", ban.User.ID)
	assert.Equal(t, []string{"", "1000"}, session.afters)
}

func TestFindBanNoMatch(t *testing.T) {
	session := &bansSession{pages: [][]*discordgo.GuildBan{{{User: &discordgo.User{ID: "1", Username: "a"}}}}}
	ban, err := FindBan(context.Background(), session, "g", func(b *discordgo.GuildBan) bool { return false })

	assert.Nil(t, err)
	assert.Nil(t, ban)
}
