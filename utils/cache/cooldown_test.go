package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/mediocregopher/radix/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCooldownsBlockWithinWindow(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCooldowns()
	defer mc.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	ok, _, err := mc.Acquire(ctx, "pew:1", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(30 * time.Second)
	ok, remaining, err := mc.Acquire(ctx, "pew:1", 2*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 90*time.Second, remaining)

	ok, _, err = mc.Acquire(ctx, "pew:2", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other users are not affected")
}

func TestMemoryCooldownsExpiredEntryIsReclaimed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCooldowns()
	defer mc.Close()

	now := time.Now()
	mc.now = func() time.Time { return now }

	ok, _, err := mc.Acquire(ctx, "coin:1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Hour)
	ok, _, err = mc.Acquire(ctx, "coin:1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCooldownsRelease(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCooldowns()
	defer mc.Close()

	ok, _, err := mc.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mc.Release(ctx, "k"))
	require.NoError(t, mc.Release(ctx, "missing"))

	ok, _, err = mc.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

// fakeRedis answers the handful of commands the cooldown store sends
type fakeRedis struct {
	mu   sync.Mutex
	keys map[string]int
}

func (f *fakeRedis) handle(args []string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch args[0] {
	case "SET":
		key := args[1]
		if _, ok := f.keys[key]; ok {
			return nil
		}
		ttl := -1
		for i := 3; i < len(args)-1; i++ {
			if args[i] == "EX" {
				ttl, _ = strconv.Atoi(args[i+1])
			}
		}
		f.keys[key] = ttl
		return "OK"
	case "TTL":
		ttl, ok := f.keys[args[1]]
		if !ok {
			return -2
		}
		return ttl
	case "DEL":
		if _, ok := f.keys[args[1]]; ok {
			delete(f.keys, args[1])
			return 1
		}
		return 0
	}

	return nil
}

func TestRedisCooldowns(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{keys: map[string]int{}}
	stub := radix.Stub("tcp", "127.0.0.1:6379", fake.handle)
	rc := &RedisCooldowns{Cache: &Cache{Client: stub}}

	ok, _, err := rc.Acquire(ctx, "cooldown:pew:1", 120*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 120, fake.keys["cooldown:pew:1"])

	ok, remaining, err := rc.Acquire(ctx, "cooldown:pew:1", 120*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 120*time.Second, remaining)

	require.NoError(t, rc.Release(ctx, "cooldown:pew:1"))
	ok, _, err = rc.Acquire(ctx, "cooldown:pew:1", 120*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "cooldown", GenerateKey("cooldown"))
	assert.Equal(t, "cooldown:pew:42", GenerateKey("cooldown", "pew", 42))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, "1", seconds(10*time.Millisecond))
	assert.Equal(t, "120", seconds(2*time.Minute))
	assert.Equal(t, "2", seconds(1500*time.Millisecond))
}
