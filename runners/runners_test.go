package runners

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/models"
	"gitlab.com/BIC_Dev/trabajo-bot/services/discordapi"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/cache"
)

type sentMessage struct {
	ChannelID string
	Content   string
}

// fakeSession only implements the calls the runners make
type fakeSession struct {
	discordapi.Session

	mu      sync.Mutex
	sent    []sentMessage
	status  string
	sendErr error
	members map[string]*discordgo.Member
}

func (f *fakeSession) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}

	return nil, &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"},
		Message:  &discordgo.APIErrorMessage{Code: discordapi.CodeUnknownMember, Message: "Unknown Member"},
	}
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return nil, f.sendErr
	}

	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: data.Content})
	return &discordgo.Message{ID: "m", ChannelID: channelID}, nil
}

func (f *fakeSession) UpdateGameStatus(idle int, name string) error {
	f.status = name
	return nil
}

func newRunners(session *fakeSession) (*Runners, *cache.MemoryCooldowns) {
	config := &configs.Config{}
	config.CacheSettings.BirthdayAnnouncement = configs.CacheSetting{Base: "birthday_announcement", TTL: "24h", Enabled: true}

	state := discordgo.NewState()
	_ = state.GuildAdd(&discordgo.Guild{
		ID:              "100",
		SystemChannelID: "sys",
		Members: []*discordgo.Member{
			{GuildID: "100", User: &discordgo.User{ID: "1"}},
			{GuildID: "100", User: &discordgo.User{ID: "2"}},
		},
	})

	cooldowns := cache.NewMemoryCooldowns()

	return &Runners{
		Session:   session,
		State:     state,
		Config:    config,
		Cooldowns: cooldowns,
		Now: func() time.Time {
			return time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
		},
	}, cooldowns
}

func birthdays(ids ...int64) []*models.Birthday {
	var list []*models.Birthday
	for _, id := range ids {
		list = append(list, &models.Birthday{UserID: id, Date: strfmt.Date(time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC))})
	}

	return list
}

func TestAnnounceBirthdaysOnlyForMembersAndOnce(t *testing.T) {
	session := &fakeSession{}
	r, cooldowns := newRunners(session)
	defer cooldowns.Close()

	date := strfmt.Date(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC))

	sent := r.AnnounceBirthdays(context.Background(), "100", "sys", birthdays(1, 3), date)
	assert.Equal(t, 1, sent)
	require.Len(t, session.sent, 1)
	assert.Equal(t, sentMessage{ChannelID: "sys", Content: "🎂 Happy birthday <@1>!"}, session.sent[0])

	sent = r.AnnounceBirthdays(context.Background(), "100", "sys", birthdays(1, 3), date)
	assert.Equal(t, 0, sent)
	assert.Len(t, session.sent, 1)
}

func TestAnnounceBirthdaysForUncachedMember(t *testing.T) {
	session := &fakeSession{members: map[string]*discordgo.Member{
		"4": {GuildID: "100", User: &discordgo.User{ID: "4"}},
	}}
	r, cooldowns := newRunners(session)
	defer cooldowns.Close()

	date := strfmt.Date(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC))

	sent := r.AnnounceBirthdays(context.Background(), "100", "sys", birthdays(3, 4), date)
	assert.Equal(t, 1, sent)
	require.Len(t, session.sent, 1)
	assert.Equal(t, "🎂 Happy birthday <@4>!", session.sent[0].Content)
}

func TestAnnounceBirthdaysRetriesAfterFailedSend(t *testing.T) {
	session := &fakeSession{sendErr: errors.New("gateway closed")}
	r, cooldowns := newRunners(session)
	defer cooldowns.Close()

	date := strfmt.Date(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 0, r.AnnounceBirthdays(context.Background(), "100", "sys", birthdays(2), date))

	session.sendErr = nil
	assert.Equal(t, 1, r.AnnounceBirthdays(context.Background(), "100", "sys", birthdays(2), date))
}

func TestAnnounceBirthdaysWithoutSystemChannel(t *testing.T) {
	session := &fakeSession{}
	r, cooldowns := newRunners(session)
	defer cooldowns.Close()

	assert.Equal(t, 0, r.AnnounceBirthdays(context.Background(), "100", "", birthdays(1), strfmt.Date{}))
	assert.Empty(t, session.sent)
}

func TestUpdatePresence(t *testing.T) {
	session := &fakeSession{}
	r, cooldowns := newRunners(session)
	defer cooldowns.Close()

	r.UpdatePresence(context.Background())

	assert.Equal(t, "/help in 1 servers", session.status)
}

func TestPresenceText(t *testing.T) {
	assert.Equal(t, "/help in 1,500 servers", PresenceText(1500))
}

func TestEveryStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := make(chan struct{}, 10)
	done := make(chan struct{})

	go func() {
		every(ctx, configs.Runner{Frequency: time.Hour}, func() { calls <- struct{}{} })
		close(done)
	}()

	<-calls
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}
