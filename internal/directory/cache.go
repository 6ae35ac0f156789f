package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CollegeNoticeBoard/internal/config"

	"github.com/redis/go-redis/v9"
)

// NameCache keeps resolved profiles in redis for a while.
type NameCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewNameCache(client *redis.Client, cfg *config.DirectoryConfig) *NameCache {
	return &NameCache{client: client, prefix: "directory:", ttl: cfg.CacheTTL}
}

func (c *NameCache) key(uid string) string {
	return c.prefix + uid
}

// Get returns the cached profiles among ids. Absent keys are skipped.
func (c *NameCache) Get(ctx context.Context, ids []string) (map[string]Profile, error) {
	found := make(map[string]Profile, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return found, fmt.Errorf("read name cache: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var p Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil || p.UID == "" {
			continue
		}
		found[p.UID] = p
	}
	return found, nil
}

// Set stores profiles with the configured TTL.
func (c *NameCache) Set(ctx context.Context, profiles []Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, p := range profiles {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		pipe.Set(ctx, c.key(p.UID), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write name cache: %w", err)
	}
	return nil
}
