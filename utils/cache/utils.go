package cache

import (
	"fmt"
	"time"

	"gitlab.com/BIC_Dev/trabajo-bot/configs"
)

// GenerateKey func
func GenerateKey(base string, ids ...interface{}) string {
	key := base
	for _, id := range ids {
		key = fmt.Sprintf("%s:%s", key, fmt.Sprint(id))
	}

	return key
}

// SettingTTL parses a cache setting TTL such as "24h" or a bare number of seconds
func SettingTTL(settings configs.CacheSetting) (time.Duration, error) {
	if settings.TTL == "" {
		return 0, nil
	}

	if d, err := time.ParseDuration(settings.TTL); err == nil {
		return d, nil
	}

	var secs int64
	if _, err := fmt.Sscanf(settings.TTL, "%d", &secs); err != nil {
		return 0, fmt.Errorf("invalid cache ttl %q", settings.TTL)
	}

	return time.Duration(secs) * time.Second, nil
}
