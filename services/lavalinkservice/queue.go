package lavalinkservice

import (
	"sync"

	"github.com/disgoorg/disgolink/v3/lavalink"
)

// Queue is a FIFO of tracks waiting to play in one guild
type Queue struct {
	mu     sync.Mutex
	tracks []lavalink.Track
}

// Push appends tracks in order
func (q *Queue) Push(tracks ...lavalink.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = append(q.tracks, tracks...)
}

// Pop removes and returns the oldest track
func (q *Queue) Pop() (lavalink.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return lavalink.Track{}, false
	}

	track := q.tracks[0]
	q.tracks[0] = lavalink.Track{}
	q.tracks = q.tracks[1:]

	return track, true
}

// Len func
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tracks)
}

// Clear func
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = nil
}
