package giphyservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-openapi/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *GiphyService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := &configs.Config{}
	config.Giphy.Host = strings.TrimPrefix(server.URL, "http://")
	config.Giphy.BasePath = "/v1"
	config.Giphy.Scheme = "http"
	config.Giphy.Timeout = 5 * time.Second

	return InitService(context.Background(), config, "secret", server.Client())
}

func TestRandomGIF(t *testing.T) {
	gs := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/gifs/random", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "pew pew", r.URL.Query().Get("tag"))
		assert.Equal(t, "pg-13", r.URL.Query().Get("rating"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"abc","url":"https://giphy.com/gifs/abc","images":{"original":{"url":"https://media.giphy.com/media/abc/giphy.gif"}}},"meta":{"status":200,"msg":"OK"}}`))
	})

	url, err := gs.RandomGIF(context.Background(), "pew pew", "pg-13")
	require.NoError(t, err)
	assert.Equal(t, "https://media.giphy.com/media/abc/giphy.gif", url)
}

func TestRandomGIFNoResults(t *testing.T) {
	gs := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"meta":{"status":200,"msg":"OK"}}`))
	})

	_, err := gs.RandomGIF(context.Background(), "nothing", "g")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestRandomGIFAPIError(t *testing.T) {
	gs := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"meta":{"status":403,"msg":"Forbidden"}}`))
	})

	_, err := gs.RandomGIF(context.Background(), "pew", "g")
	require.Error(t, err)

	var apiErr *runtime.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Code)
}

func TestDisabledService(t *testing.T) {
	gs := InitService(context.Background(), &configs.Config{}, "", nil)
	assert.Nil(t, gs)

	_, err := gs.RandomGIF(context.Background(), "pew", "g")
	assert.ErrorIs(t, err, ErrDisabled)
}
