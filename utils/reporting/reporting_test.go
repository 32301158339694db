package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	events []*sentry.Event
}

func (t *recordingTransport) Configure(options sentry.ClientOptions) {}
func (t *recordingTransport) SendEvent(event *sentry.Event) {
	t.events = append(t.events, event)
}
func (t *recordingTransport) Flush(timeout time.Duration) bool { return true }

func TestReportWithoutSentryReturnsUUID(t *testing.T) {
	r, err := New("", "test", "1.0.0")
	require.NoError(t, err)
	assert.False(t, r.Enabled())

	code := r.Report(context.Background(), errors.New("boom"), nil)
	_, parseErr := uuid.Parse(code)
	assert.NoError(t, parseErr)
}

func TestReportWithSentryReturnsEventID(t *testing.T) {
	transport := &recordingTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:       "https://public@example.com/1",
		Transport: transport,
	})
	require.NoError(t, err)

	r := NewWithHub(sentry.NewHub(client, sentry.NewScope()))
	require.True(t, r.Enabled())

	code := r.Report(context.Background(), errors.New("boom"), map[string]string{"command": "kick"})
	require.Len(t, transport.events, 1)
	assert.Equal(t, string(transport.events[0].EventID), code)
	assert.Equal(t, "kick", transport.events[0].Tags["command"])
}
