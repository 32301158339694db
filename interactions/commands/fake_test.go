package commands

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/go-openapi/strfmt"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/database"
	"gitlab.com/BIC_Dev/trabajo-bot/models"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/services/lavalinkservice"
)

type moderationCall struct {
	GuildID string
	UserID  string
	Reason  string
	Days    int
}

// fakeSession records every call the handlers make
type fakeSession struct {
	mu sync.Mutex

	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	followups []*discordgo.WebhookParams
	messages  []*discordgo.MessageSend
	kicks     []moderationCall
	bans      []moderationCall
	unbans    []string
	voice     []string
	overwrite [][]*discordgo.ApplicationCommand

	latency   time.Duration
	banList   []*discordgo.GuildBan
	guild     *discordgo.Guild
	roles     []*discordgo.Role
	channels  []*discordgo.Channel
	members   map[string]*discordgo.Member
	kickErr   error
	banErr    error
	unbanErr  error
	guildErr  error
	memberErr error
}

var _ discordapi.Session = (*fakeSession)(nil)

func (f *fakeSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, newresp)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) GuildWithCounts(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if f.guildErr != nil {
		return nil, f.guildErr
	}
	return f.guild, nil
}

func (f *fakeSession) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeSession) GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func (f *fakeSession) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}

	if m, ok := f.members[userID]; ok {
		return m, nil
	}

	return nil, unknownMemberError()
}

func (f *fakeSession) GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicks = append(f.kicks, moderationCall{GuildID: guildID, UserID: userID, Reason: reason})
	return f.kickErr
}

func (f *fakeSession) GuildBans(guildID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.GuildBan, error) {
	if afterID != "" {
		return nil, nil
	}
	return f.banList, nil
}

func (f *fakeSession) GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bans = append(f.bans, moderationCall{GuildID: guildID, UserID: userID, Reason: reason, Days: days})
	return f.banErr
}

func (f *fakeSession) GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbans = append(f.unbans, userID)
	return f.unbanErr
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, data)
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	return nil
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	return nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overwrite = append(f.overwrite, commands)
	return commands, nil
}

func (f *fakeSession) HeartbeatLatency() time.Duration {
	return f.latency
}

func (f *fakeSession) ChannelVoiceJoinManual(gID, cID string, mute, deaf bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voice = append(f.voice, cID)
	return nil
}

func (f *fakeSession) UpdateGameStatus(idle int, name string) error {
	return nil
}

// lastContent returns the text of the final reply, edited or immediate
func (f *fakeSession) lastContent() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.edits) > 0 {
		if c := f.edits[len(f.edits)-1].Content; c != nil {
			return *c
		}
		return ""
	}

	if len(f.responses) > 0 && f.responses[len(f.responses)-1].Data != nil {
		return f.responses[len(f.responses)-1].Data.Content
	}

	return ""
}

// lastEmbeds returns the embeds of the final reply, edited or immediate
func (f *fakeSession) lastEmbeds() []*discordgo.MessageEmbed {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.edits) > 0 {
		if e := f.edits[len(f.edits)-1].Embeds; e != nil {
			return *e
		}
		return nil
	}

	if len(f.responses) > 0 && f.responses[len(f.responses)-1].Data != nil {
		return f.responses[len(f.responses)-1].Data.Embeds
	}

	return nil
}

func unknownMemberError() error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"},
		Message:  &discordgo.APIErrorMessage{Code: discordapi.CodeUnknownMember, Message: "Unknown Member"},
	}
}

type fakeBirthdays struct {
	stored map[string]strfmt.Date
	err    error
}

func (f *fakeBirthdays) SetBirthday(ctx context.Context, userID string, date strfmt.Date) error {
	if f.err != nil {
		return f.err
	}

	if f.stored == nil {
		f.stored = make(map[string]strfmt.Date)
	}
	f.stored[userID] = date
	return nil
}

func (f *fakeBirthdays) GetBirthday(ctx context.Context, userID string) (*models.Birthday, error) {
	if f.err != nil {
		return nil, f.err
	}

	date, ok := f.stored[userID]
	if !ok {
		return nil, database.ErrNotFound
	}

	return &models.Birthday{Date: date}, nil
}

func (f *fakeBirthdays) ListBirthdays(ctx context.Context) ([]*models.Birthday, error) {
	if f.err != nil {
		return nil, f.err
	}

	var list []*models.Birthday
	for _, id := range []string{"1", "2", "3"} {
		if date, ok := f.stored[id]; ok {
			b := &models.Birthday{Date: date}
			switch id {
			case "1":
				b.UserID = 1
			case "2":
				b.UserID = 2
			case "3":
				b.UserID = 3
			}
			list = append(list, b)
		}
	}

	return list, nil
}

type fakeMusic struct {
	home      map[string]string
	result    *lavalinkservice.LoadResult
	loadErr   error
	actionErr error
	enqueued  []lavalink.Track
	volume    int
}

func (f *fakeMusic) Load(ctx context.Context, query string) (*lavalinkservice.LoadResult, error) {
	return f.result, f.loadErr
}

func (f *fakeMusic) HomeChannel(guildID string) (string, bool) {
	ch, ok := f.home[guildID]
	return ch, ok
}

func (f *fakeMusic) Enqueue(ctx context.Context, guildID string, channelID string, tracks []lavalink.Track) (bool, error) {
	if f.home == nil {
		f.home = make(map[string]string)
	}
	if _, ok := f.home[guildID]; !ok {
		f.home[guildID] = channelID
	}
	f.enqueued = append(f.enqueued, tracks...)
	return true, nil
}

func (f *fakeMusic) Skip(ctx context.Context, guildID string) error { return f.actionErr }

func (f *fakeMusic) TogglePause(ctx context.Context, guildID string) (bool, error) {
	return true, f.actionErr
}

func (f *fakeMusic) SetVolume(ctx context.Context, guildID string, volume int) error {
	f.volume = volume
	return f.actionErr
}

func (f *fakeMusic) Nightcore(ctx context.Context, guildID string) error { return f.actionErr }

func (f *fakeMusic) ResetFilters(ctx context.Context, guildID string) error { return f.actionErr }

func (f *fakeMusic) Disconnect(ctx context.Context, guildID string) error {
	delete(f.home, guildID)
	return f.actionErr
}

func float(v float64) *float64 {
	return &v
}

func testConfig() *configs.Config {
	config := &configs.Config{}
	config.Bot.Name = "Trabajo"
	config.Bot.Version = "1.0.0"
	config.Bot.OkColor = 1
	config.Bot.WarnColor = 2
	config.Bot.ErrorColor = 3
	config.Bot.CommandTimeout = 5 * time.Second
	config.Bot.InvitePermissions = []string{"kick_members", "ban_members"}
	config.CacheSettings.Cooldown = configs.CacheSetting{Base: "cooldown", Enabled: true}
	config.Fun.EightBallAnswers = []string{"It is certain.", "No."}
	config.Fun.PewGifs = []string{"https://example.com/pew.gif"}
	config.Fun.PewTag = "pew pew"
	config.Fun.GifRating = "pg-13"
	config.Music.DefaultVolume = 30
	config.Music.MaxVolume = 1000
	config.Music.Nightcore.Pitch = 1.2
	config.Music.Nightcore.Speed = 1.2
	config.Music.Nightcore.Rate = 1

	config.Categories = []configs.Category{
		{Name: "Information", Short: "info", Description: "Commands for user/server info."},
		{Name: "Moderation", Short: "mod", Description: "Server moderation commands (kick, ban, unban)."},
		{Name: "Fun", Short: "fun", Description: "Fun and random commands"},
		{Name: "Birthday", Short: "birthday", Description: "Birthday tracking commands."},
		{Name: "Music", Short: "music", Description: "Play music with the bot"},
		{Name: "Help", Short: "help", Description: "Get help on categories or commands"},
	}

	member := configs.CommandOption{Name: "member", Type: "user", Description: "Member", Required: true}
	reason := configs.CommandOption{Name: "reason", Type: "string", Description: "Reason"}

	config.Commands = []configs.Command{
		{Name: "ping", Description: "Latency", Category: "info", Enabled: true},
		{Name: "info", Description: "Bot info", Category: "info", Enabled: true},
		{Name: "serverinfo", Description: "Server info", Category: "info", Enabled: true, GuildOnly: true,
			Options: []configs.CommandOption{{Name: "guild_id", Type: "string", Description: "Guild"}}},
		{Name: "userinfo", Description: "User info", Category: "info", Enabled: true, GuildOnly: true, Ephemeral: true,
			Options: []configs.CommandOption{{Name: "member", Type: "user", Description: "Member"}}},
		{Name: "invite", Description: "Invite", Category: "info", Enabled: true},
		{Name: "kick", Description: "Kick a member", Category: "mod", Enabled: true, GuildOnly: true, Permission: "kick_members",
			Options: []configs.CommandOption{member, reason}},
		{Name: "ban", Description: "Ban a member", Category: "mod", Enabled: true, GuildOnly: true, Permission: "ban_members",
			Options: []configs.CommandOption{member, reason, {Name: "delete_days", Type: "integer", Description: "Days", MinValue: float(0), MaxValue: 7}}},
		{Name: "unban", Description: "Unban a user", Category: "mod", Enabled: true, GuildOnly: true, Permission: "ban_members",
			Options: []configs.CommandOption{{Name: "username", Type: "string", Description: "Username", Required: true}}},
		{Name: "help", Description: "Help", Category: "help", Enabled: true, Ephemeral: true,
			Options: []configs.CommandOption{{Name: "item", Type: "string", Description: "Item", Autocomplete: true}}},
		{Name: "8ball", Description: "Magic 8-ball", Category: "fun", Enabled: true,
			Options: []configs.CommandOption{{Name: "question", Type: "string", Description: "Question", Required: true}}},
		{Name: "pew", Description: "Pew pew", Category: "fun", Enabled: true, GuildOnly: true, Cooldown: 120 * time.Second,
			Options: []configs.CommandOption{member}},
		{Name: "coin", Description: "Coin flip", Category: "fun", Enabled: true, Cooldown: 120 * time.Second,
			Options: []configs.CommandOption{{Name: "member", Type: "user", Description: "Member"}}},
		{Name: "setbirthday", Description: "Set birthday", Category: "birthday", Enabled: true, Requires: configs.RequiresDatabase,
			Options: []configs.CommandOption{{Name: "date", Type: "string", Description: "Date", Required: true}}},
		{Name: "mybirthday", Description: "My birthday", Category: "birthday", Enabled: true, Requires: configs.RequiresDatabase},
		{Name: "birthdaylist", Description: "Birthdays", Category: "birthday", Enabled: true, GuildOnly: true, Requires: configs.RequiresDatabase},
		{Name: "play", Description: "Play", Category: "music", Enabled: true, GuildOnly: true, Requires: configs.RequiresMusic,
			Options: []configs.CommandOption{{Name: "query", Type: "string", Description: "Query", Required: true}}},
		{Name: "skip", Description: "Skip", Category: "music", Enabled: true, GuildOnly: true, Requires: configs.RequiresMusic},
		{Name: "volume", Description: "Volume", Category: "music", Enabled: true, GuildOnly: true, Requires: configs.RequiresMusic,
			Options: []configs.CommandOption{{Name: "value", Type: "integer", Description: "Volume", Required: true, MinValue: float(0), MaxValue: 1000}}},
		{Name: "nightcore", Description: "Nightcore", Category: "music", Enabled: true, GuildOnly: true, Requires: configs.RequiresMusic},
		{Name: "disconnect", Description: "Disconnect", Category: "music", Enabled: true, GuildOnly: true, Requires: configs.RequiresMusic},
		{Name: "shrug", Description: "Disabled", Category: "fun", Enabled: false},
	}

	return config
}

func newTestCommands(session *fakeSession) *Commands {
	state := discordgo.NewState()
	state.User = &discordgo.User{ID: "bot"}

	return &Commands{
		Session: session,
		State:   state,
		Config:  testConfig(),
		Start:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Now: func() time.Time {
			return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		},
		Intn: func(n int) int { return 0 },
	}
}

func addGuild(state *discordgo.State, guildID string, memberIDs ...string) {
	guild := &discordgo.Guild{ID: guildID, Name: "Test Guild", MemberCount: len(memberIDs)}
	for _, id := range memberIDs {
		guild.Members = append(guild.Members, &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: id, Username: "user" + id}})
	}

	_ = state.GuildAdd(guild)
}

func slash(name string, permissions int64, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	resolved := &discordgo.ApplicationCommandInteractionDataResolved{
		Users:   map[string]*discordgo.User{},
		Members: map[string]*discordgo.Member{},
	}

	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionUser {
			id := opt.Value.(string)
			resolved.Users[id] = &discordgo.User{ID: id, Username: "target" + id}
			resolved.Members[id] = &discordgo.Member{}
		}
	}

	return &discordgo.Interaction{
		ID:        "interaction",
		AppID:     "app",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g1",
		ChannelID: "c1",
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "u1", Username: "moderator"},
			Permissions: permissions,
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:     name,
			Options:  options,
			Resolved: resolved,
		},
	}
}

func stringOpt(name string, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func userOpt(name string, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionUser, Value: id}
}

func intOpt(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value)}
}
