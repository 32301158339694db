package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mediocregopher/radix/v3"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// Cache struct
type Cache struct {
	Client radix.Client
}

// GetClient instantiates and returns a connection pool
func GetClient(ctx context.Context, host string, port int, poolSize int) (*radix.Pool, *CacheError) {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	hostWithPort := fmt.Sprintf("%s:%d", host, port)
	pool, err := radix.NewPool("tcp", hostWithPort, poolSize)
	if err != nil {
		return nil, &CacheError{
			Message: "Unable to create a new cache pool",
			Err:     err,
		}
	}

	logger := logging.Logger(ctx)
	logger.Info("cache_log", zap.String("address", hostWithPort), zap.Int("pool", poolSize))

	return pool, nil
}

// SetNX sets a key only when it does not exist yet and reports whether it was set
func (c *Cache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, *CacheError) {
	args := []string{key, value}
	if ttl > 0 {
		args = append(args, "EX", seconds(ttl))
	}
	args = append(args, "NX")

	var reply string
	mn := radix.MaybeNil{Rcv: &reply}
	if err := c.Client.Do(radix.Cmd(&mn, "SET", args...)); err != nil {
		return false, &CacheError{
			Err:     err,
			Message: fmt.Sprintf("Unable to SETNX key: %s", key),
		}
	}

	return !mn.Nil, nil
}

// Expire a key immediately
func (c *Cache) Expire(ctx context.Context, key string) *CacheError {
	if err := c.Client.Do(radix.Cmd(nil, "DEL", key)); err != nil {
		return &CacheError{
			Err:     err,
			Message: fmt.Sprintf("Unable to expire key: %s", key),
		}
	}

	return nil
}

// TTL gets the remaining lifetime of a key. Redis returns -2 for missing keys and -1 for keys without expiry.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, *CacheError) {
	var ttl int
	if err := c.Client.Do(radix.Cmd(&ttl, "TTL", key)); err != nil {
		return -1, &CacheError{
			Err:     err,
			Message: fmt.Sprintf("Unable to get TTL of key: %s", key),
		}
	}

	if ttl < 0 {
		return time.Duration(ttl), nil
	}

	return time.Duration(ttl) * time.Second, nil
}

// seconds rounds a TTL up to whole seconds, never below one
func seconds(ttl time.Duration) string {
	s := int64((ttl + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}

	return strconv.FormatInt(s, 10)
}
