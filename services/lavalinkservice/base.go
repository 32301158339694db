package lavalinkservice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// Errors the music commands turn into replies
const (
	ErrNoResults = errors.Sentinel("no tracks found")
	ErrNoPlayer  = errors.Sentinel("no player in this guild")
	ErrNoNode    = errors.Sentinel("no lavalink node available")
)

// NowPlayingFunc is called when a track starts, with the guild's home text channel
type NowPlayingFunc func(ctx context.Context, guildID string, channelID string, track lavalink.Track)

// LoadResult struct
type LoadResult struct {
	Tracks       []lavalink.Track
	PlaylistName string
}

// LavalinkService owns the disgolink client plus one queue and home channel per guild
type LavalinkService struct {
	Client     disgolink.Client
	Config     *configs.Config
	NowPlaying NowPlayingFunc

	mu     sync.Mutex
	queues map[snowflake.ID]*Queue
	homes  map[snowflake.ID]string
	locks  map[snowflake.ID]*sync.Mutex
}

func newService(config *configs.Config) *LavalinkService {
	return &LavalinkService{
		Config: config,
		queues: make(map[snowflake.ID]*Queue),
		homes:  make(map[snowflake.ID]string),
		locks:  make(map[snowflake.ID]*sync.Mutex),
	}
}

// NodeConfigs builds one node per non-empty host, named node-1, node-2 and so on
func NodeConfigs(hosts []string, password string, secure bool) []disgolink.NodeConfig {
	var nodes []disgolink.NodeConfig
	for _, host := range hosts {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}

		nodes = append(nodes, disgolink.NodeConfig{
			Name:     fmt.Sprintf("node-%d", len(nodes)+1),
			Address:  host,
			Password: password,
			Secure:   secure,
		})
	}

	return nodes
}

// InitService connects to every configured Lavalink node. It fails only when none connect.
func InitService(ctx context.Context, config *configs.Config, appID string, hosts []string, password string, secure bool) (*LavalinkService, error) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	id, err := snowflake.Parse(appID)
	if err != nil {
		return nil, errors.Wrap(err, "parsing application id")
	}

	nodes := NodeConfigs(hosts, password, secure)
	if len(nodes) == 0 {
		return nil, ErrNoNode
	}

	ls := newService(config)
	ls.Client = disgolink.New(id,
		disgolink.WithListenerFunc(ls.onTrackStart),
		disgolink.WithListenerFunc(ls.onTrackEnd),
	)

	connected := 0
	var lastErr error
	for _, nodeConfig := range nodes {
		nodeCtx := logging.AddValues(ctx,
			zap.String("node", nodeConfig.Name),
			zap.String("address", nodeConfig.Address),
		)

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := ls.Client.AddNode(connectCtx, nodeConfig)
		cancel()

		if err != nil {
			lastErr = err
			nodeCtx = logging.AddValues(nodeCtx, zap.NamedError("error", err), zap.String("error_message", "Failed to add lavalink node"))
			logger := logging.Logger(nodeCtx)
			logger.Warn("voice_log")
			continue
		}

		connected++
		logger := logging.Logger(nodeCtx)
		logger.Info("voice_log")
	}

	if connected == 0 {
		return nil, errors.Wrap(lastErr, "adding lavalink nodes")
	}

	return ls, nil
}

// SearchQuery passes URLs through and turns anything else into a YouTube search
func SearchQuery(query string) string {
	query = strings.TrimSpace(query)
	if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
		return query
	}

	return "ytsearch:" + query
}

// Load resolves a query to one track, the first search hit, or a whole playlist
func (ls *LavalinkService) Load(ctx context.Context, query string) (*LoadResult, error) {
	node := ls.Client.BestNode()
	if node == nil {
		return nil, ErrNoNode
	}

	var result LoadResult
	var loadErr error

	node.LoadTracksHandler(ctx, SearchQuery(query), disgolink.NewResultHandler(
		func(track lavalink.Track) {
			result.Tracks = []lavalink.Track{track}
		},
		func(playlist lavalink.Playlist) {
			result.Tracks = playlist.Tracks
			result.PlaylistName = playlist.Info.Name
		},
		func(tracks []lavalink.Track) {
			if len(tracks) > 0 {
				result.Tracks = tracks[:1]
			}
		},
		func() {},
		func(err error) {
			loadErr = err
		},
	))

	if loadErr != nil {
		return nil, errors.Wrap(loadErr, "loading tracks")
	}

	if len(result.Tracks) == 0 {
		return nil, ErrNoResults
	}

	return &result, nil
}

// HomeChannel returns the text channel the guild's player was started from
func (ls *LavalinkService) HomeChannel(guildID string) (string, bool) {
	id, err := snowflake.Parse(guildID)
	if err != nil {
		return "", false
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	channelID, ok := ls.homes[id]
	return channelID, ok
}

// guildLock serialises starting tracks in one guild
func (ls *LavalinkService) guildLock(guildID snowflake.ID) *sync.Mutex {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	l, ok := ls.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		ls.locks[guildID] = l
	}

	return l
}

func (ls *LavalinkService) queue(guildID snowflake.ID) *Queue {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	q, ok := ls.queues[guildID]
	if !ok {
		q = &Queue{}
		ls.queues[guildID] = q
	}

	return q
}

// QueueLength reports how many tracks are waiting in a guild
func (ls *LavalinkService) QueueLength(guildID string) int {
	id, err := snowflake.Parse(guildID)
	if err != nil {
		return 0
	}

	return ls.queue(id).Len()
}

// Enqueue adds tracks and starts playback when the player is idle. It reports whether playback started.
func (ls *LavalinkService) Enqueue(ctx context.Context, guildID string, channelID string, tracks []lavalink.Track) (bool, error) {
	id, err := snowflake.Parse(guildID)
	if err != nil {
		return false, errors.Wrap(err, "parsing guild id")
	}

	ls.mu.Lock()
	if _, ok := ls.homes[id]; !ok {
		ls.homes[id] = channelID
	}
	ls.mu.Unlock()

	l := ls.guildLock(id)
	l.Lock()
	defer l.Unlock()

	ls.queue(id).Push(tracks...)

	player := ls.Client.Player(id)
	if player.Track() != nil {
		return false, nil
	}

	return ls.playNext(ctx, player, true)
}

func (ls *LavalinkService) playNext(ctx context.Context, player disgolink.Player, idle bool) (bool, error) {
	track, ok := ls.queue(player.GuildID()).Pop()
	if !ok {
		if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
			return false, errors.Wrap(err, "stopping player")
		}

		return false, nil
	}

	opts := []lavalink.PlayerUpdateOpt{lavalink.WithTrack(track)}
	if idle && ls.Config.Music.DefaultVolume > 0 {
		opts = append(opts, lavalink.WithVolume(ls.Config.Music.DefaultVolume))
	}

	if err := player.Update(ctx, opts...); err != nil {
		return false, errors.Wrap(err, "playing track")
	}

	return true, nil
}

func (ls *LavalinkService) existingPlayer(guildID string) (disgolink.Player, error) {
	id, err := snowflake.Parse(guildID)
	if err != nil {
		return nil, errors.Wrap(err, "parsing guild id")
	}

	player := ls.Client.ExistingPlayer(id)
	if player == nil {
		return nil, ErrNoPlayer
	}

	return player, nil
}

// Skip plays the next queued track or stops when the queue is empty
func (ls *LavalinkService) Skip(ctx context.Context, guildID string) error {
	player, err := ls.existingPlayer(guildID)
	if err != nil {
		return err
	}

	l := ls.guildLock(player.GuildID())
	l.Lock()
	defer l.Unlock()

	_, err = ls.playNext(ctx, player, false)
	return err
}

// TogglePause returns the new paused state
func (ls *LavalinkService) TogglePause(ctx context.Context, guildID string) (bool, error) {
	player, err := ls.existingPlayer(guildID)
	if err != nil {
		return false, err
	}

	paused := !player.Paused()
	if err := player.Update(ctx, lavalink.WithPaused(paused)); err != nil {
		return false, errors.Wrap(err, "toggling pause")
	}

	return paused, nil
}

// SetVolume func
func (ls *LavalinkService) SetVolume(ctx context.Context, guildID string, volume int) error {
	player, err := ls.existingPlayer(guildID)
	if err != nil {
		return err
	}

	return errors.WrapIf(player.Update(ctx, lavalink.WithVolume(volume)), "setting volume")
}

// Nightcore speeds up and pitches up playback with a timescale filter
func (ls *LavalinkService) Nightcore(ctx context.Context, guildID string) error {
	player, err := ls.existingPlayer(guildID)
	if err != nil {
		return err
	}

	filters := player.Filters()
	filters.Timescale = &lavalink.Timescale{
		Speed: ls.Config.Music.Nightcore.Speed,
		Pitch: ls.Config.Music.Nightcore.Pitch,
		Rate:  ls.Config.Music.Nightcore.Rate,
	}

	return errors.WrapIf(player.Update(ctx, lavalink.WithFilters(filters)), "setting nightcore")
}

// ResetFilters func
func (ls *LavalinkService) ResetFilters(ctx context.Context, guildID string) error {
	player, err := ls.existingPlayer(guildID)
	if err != nil {
		return err
	}

	return errors.WrapIf(player.Update(ctx, lavalink.WithFilters(lavalink.Filters{})), "resetting filters")
}

// Disconnect destroys the player and forgets the guild's queue and home channel
func (ls *LavalinkService) Disconnect(ctx context.Context, guildID string) error {
	id, err := snowflake.Parse(guildID)
	if err != nil {
		return errors.Wrap(err, "parsing guild id")
	}

	ls.forget(id)

	player := ls.Client.ExistingPlayer(id)
	if player == nil {
		return nil
	}

	return errors.WrapIf(player.Destroy(ctx), "destroying player")
}

// forget clears the guild's queue and home channel
func (ls *LavalinkService) forget(guildID snowflake.ID) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if q, ok := ls.queues[guildID]; ok {
		q.Clear()
	}

	delete(ls.queues, guildID)
	delete(ls.homes, guildID)
}

// OnVoiceStateUpdate forwards the bot's own voice state to Lavalink
func (ls *LavalinkService) OnVoiceStateUpdate(ctx context.Context, guildID string, channelID string, sessionID string) {
	gID, err := snowflake.Parse(guildID)
	if err != nil {
		return
	}

	var cID *snowflake.ID
	if channelID != "" {
		if id, err := snowflake.Parse(channelID); err == nil {
			cID = &id
		}
	}

	ls.Client.OnVoiceStateUpdate(ctx, gID, cID, sessionID)

	if cID == nil {
		ls.forget(gID)
	}
}

// OnVoiceServerUpdate func
func (ls *LavalinkService) OnVoiceServerUpdate(ctx context.Context, guildID string, token string, endpoint string) {
	gID, err := snowflake.Parse(guildID)
	if err != nil {
		return
	}

	ls.Client.OnVoiceServerUpdate(ctx, gID, token, endpoint)
}

// Close func
func (ls *LavalinkService) Close() {
	ls.Client.Close()
}

func (ls *LavalinkService) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	ctx := logging.AddValues(context.Background(),
		zap.String("scope", logging.GetFuncName()),
		zap.String("guild_id", player.GuildID().String()),
		zap.String("track", event.Track.Info.Title),
		zap.Int("queued", ls.QueueLength(player.GuildID().String())),
	)

	logger := logging.Logger(ctx)
	logger.Info("voice_log")

	if ls.NowPlaying == nil {
		return
	}

	channelID, ok := ls.HomeChannel(player.GuildID().String())
	if !ok {
		return
	}

	ls.NowPlaying(ctx, player.GuildID().String(), channelID, event.Track)
}

func (ls *LavalinkService) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	ctx := logging.AddValues(context.Background(),
		zap.String("scope", logging.GetFuncName()),
		zap.String("guild_id", player.GuildID().String()),
		zap.String("reason", string(event.Reason)),
	)

	if !event.Reason.MayStartNext() {
		return
	}

	l := ls.guildLock(player.GuildID())
	l.Lock()
	defer l.Unlock()

	if _, err := ls.playNext(ctx, player, false); err != nil {
		ctx = logging.AddValues(ctx, zap.NamedError("error", err), zap.String("error_message", "Failed to start next track"))
		logger := logging.Logger(ctx)
		logger.Error("error_log")
	}
}
