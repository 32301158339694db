package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ReneKroon/ttlcache/v2"
)

// CooldownStore claims keys for a fixed time window
type CooldownStore interface {
	// Acquire claims key for ttl. When the key is already held it returns false and the time left.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error)
	// Release drops a claim early
	Release(ctx context.Context, key string) error
}

// RedisCooldowns shares cooldowns across bot processes through Redis
type RedisCooldowns struct {
	Cache *Cache
}

// Acquire uses SET NX EX so concurrent callers cannot both win
func (rc *RedisCooldowns) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	ok, err := rc.Cache.SetNX(ctx, key, "1", ttl)
	if err != nil {
		return false, 0, err
	}

	if ok {
		return true, 0, nil
	}

	remaining, err := rc.Cache.TTL(ctx, key)
	if err != nil {
		return false, 0, err
	}

	if remaining < 0 {
		remaining = 0
	}

	return false, remaining, nil
}

// Release func
func (rc *RedisCooldowns) Release(ctx context.Context, key string) error {
	if err := rc.Cache.Expire(ctx, key); err != nil {
		return err
	}

	return nil
}

// MemoryCooldowns keeps cooldowns in process memory
type MemoryCooldowns struct {
	mu    sync.Mutex
	cache *ttlcache.Cache
	now   func() time.Time
}

// NewMemoryCooldowns func
func NewMemoryCooldowns() *MemoryCooldowns {
	c := ttlcache.NewCache()
	c.SkipTTLExtensionOnHit(true)

	return &MemoryCooldowns{
		cache: c,
		now:   time.Now,
	}
}

// Acquire func
func (mc *MemoryCooldowns) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()

	val, err := mc.cache.Get(key)
	switch {
	case err == nil:
		if expires, ok := val.(time.Time); ok && expires.After(now) {
			return false, expires.Sub(now), nil
		}
	case !errors.Is(err, ttlcache.ErrNotFound):
		return false, 0, err
	}

	if err := mc.cache.SetWithTTL(key, now.Add(ttl), ttl); err != nil {
		return false, 0, err
	}

	return true, 0, nil
}

// Release func
func (mc *MemoryCooldowns) Release(ctx context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if err := mc.cache.Remove(key); err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
		return err
	}

	return nil
}

// Close stops the expiry goroutine
func (mc *MemoryCooldowns) Close() error {
	return mc.cache.Close()
}
