package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/controllers"
	"gitlab.com/BIC_Dev/trabajo-bot/viewmodels"
)

func testRouter() Router {
	config := &configs.Config{}
	config.Bot.Version = "1.2.3"
	config.Categories = []configs.Category{{Name: "Fun", Short: "fun"}}
	config.Commands = []configs.Command{
		{Name: "coin", Description: "Flip", Category: "fun", Enabled: true},
		{Name: "off", Description: "Off", Category: "fun"},
	}

	state := discordgo.NewState()
	_ = state.GuildAdd(&discordgo.Guild{ID: "g1", Name: "Zeta"})
	_ = state.GuildAdd(&discordgo.Guild{ID: "g2", Name: "Alpha"})

	return Router{
		Controller: &controllers.Controller{
			Config:  config,
			State:   state,
			Latency: func() time.Duration { return 42 * time.Millisecond },
			Start:   time.Now().Add(-time.Minute),
		},
		ServiceToken: "secret",
		BasePath:     "/trabajo-bot",
	}
}

func serve(t *testing.T, handler http.Handler, path string, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Service-Token", token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStatusIsOpen(t *testing.T) {
	handler := Handler(context.Background(), testRouter())

	rec := serve(t, handler, "/trabajo-bot/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Request-ID"))

	var body viewmodels.GetStatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, 2, body.Guilds)
	assert.Equal(t, int64(42), body.LatencyMS)
}

func TestServiceTokenRequired(t *testing.T) {
	handler := Handler(context.Background(), testRouter())

	assert.Equal(t, http.StatusUnauthorized, serve(t, handler, "/trabajo-bot/commands", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, handler, "/trabajo-bot/commands", "wrong").Code)

	rec := serve(t, handler, "/trabajo-bot/commands", "secret")
	require.Equal(t, http.StatusOK, rec.Code)

	var body viewmodels.GetCommandsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "coin", body.Commands[0].Name)
	assert.Equal(t, "Fun", body.Commands[0].Category)
}

func TestRoutesDisabledWithoutToken(t *testing.T) {
	router := testRouter()
	router.ServiceToken = ""
	handler := Handler(context.Background(), router)

	assert.Equal(t, http.StatusForbidden, serve(t, handler, "/trabajo-bot/discord/all-guilds", "anything").Code)
	assert.Equal(t, http.StatusOK, serve(t, handler, "/trabajo-bot/status", "").Code)
}

func TestAllGuildsSortedByName(t *testing.T) {
	handler := Handler(context.Background(), testRouter())

	rec := serve(t, handler, "/trabajo-bot/discord/all-guilds", "secret")
	require.Equal(t, http.StatusOK, rec.Code)

	var body viewmodels.GetAllGuildsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Guilds, 2)
	assert.Equal(t, "Alpha", body.Guilds[0].Name)
	assert.Equal(t, "Zeta", body.Guilds[1].Name)
}

func TestRecoveryMiddleware(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	router.Use(RecoveryMiddleware)

	rec := serve(t, router, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body viewmodels.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Message)
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	recorder := newStatusRecorder(rec)

	recorder.WriteHeader(http.StatusTeapot)
	recorder.WriteHeader(http.StatusOK)
	_, _ = recorder.Write([]byte("tea"))

	assert.Equal(t, http.StatusTeapot, recorder.status)
	assert.Equal(t, "tea", string(recorder.body))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestStatusRecorderCapsBody(t *testing.T) {
	recorder := newStatusRecorder(httptest.NewRecorder())

	_, _ = recorder.Write(make([]byte, maxLoggedBody+10))
	_, _ = recorder.Write([]byte("more"))

	assert.Len(t, recorder.body, maxLoggedBody)
	assert.Equal(t, http.StatusOK, recorder.status)
}

func TestErrorCarriesRequestID(t *testing.T) {
	handler := Handler(context.Background(), testRouter())

	req := httptest.NewRequest(http.MethodGet, "/trabajo-bot/commands", nil)
	req.Header.Set("Request-ID", "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body viewmodels.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "req-1", body.RequestID)
	assert.Equal(t, "req-1", rec.Header().Get("Request-ID"))
}
