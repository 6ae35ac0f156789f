package directory

import (
	"context"
	"testing"
	"time"

	"CollegeNoticeBoard/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*NameCache, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewNameCache(client, &config.DirectoryConfig{CacheTTL: time.Minute}), s
}

func TestNameCache_SetAndGet(t *testing.T) {
	cache, s := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, []Profile{
		{UID: "u1", DisplayName: "Asha", Role: "student"},
		{UID: "u2", DisplayName: "Dr. Rao", Role: "teacher"},
	}))

	got, err := cache.Get(ctx, []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Dr. Rao", got["u2"].DisplayName)
	assert.True(t, s.Exists("directory:u1"))
	assert.Equal(t, time.Minute, s.TTL("directory:u1"))
}

func TestNameCache_Expiry(t *testing.T) {
	cache, s := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, []Profile{{UID: "u1", DisplayName: "Asha"}}))
	s.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNameCache_SkipsCorruptEntries(t *testing.T) {
	cache, s := setupTestCache(t)
	require.NoError(t, s.Set("directory:u1", "not json"))

	got, err := cache.Get(context.Background(), []string{"u1"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNameCache_Unavailable(t *testing.T) {
	cache, _ := setupTestCache(t)
	require.NoError(t, cache.client.Close())

	_, err := cache.Get(context.Background(), []string{"u1"})
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), []Profile{{UID: "u1"}}))
}
