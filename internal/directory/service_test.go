package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"CollegeNoticeBoard/internal/config"
	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLookup struct {
	mu          sync.Mutex
	batches     [][]string
	findByIDsFn func(context.Context, []string) ([]User, error)
}

func (f *fakeLookup) FindByIDs(ctx context.Context, ids []string) ([]User, error) {
	f.mu.Lock()
	f.batches = append(f.batches, append([]string(nil), ids...))
	f.mu.Unlock()
	if f.findByIDsFn != nil {
		return f.findByIDsFn(ctx, ids)
	}
	users := make([]User, 0, len(ids))
	for _, id := range ids {
		users = append(users, User{UID: id, DisplayName: "Name " + id, Role: "student"})
	}
	return users, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]Profile
	getErr  error
}

func (c *fakeCache) Get(_ context.Context, ids []string) (map[string]Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	out := map[string]Profile{}
	for _, id := range ids {
		if p, ok := c.entries[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *fakeCache) Set(_ context.Context, profiles []Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]Profile{}
	}
	for _, p := range profiles {
		c.entries[p.UID] = p
	}
	return nil
}

func uids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("u%02d", i)
	}
	return out
}

func newTestDirectory(users Lookup, cache Cache) (*Service, *metrics.Metrics) {
	m := metrics.NewForTest()
	return NewService(users, cache, &config.DirectoryConfig{BatchSize: 10}, m, zap.NewNop()), m
}

func TestChunks(t *testing.T) {
	assert.Nil(t, Chunks(nil, 10))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, Chunks([]string{"a", "b", "c"}, 2))
	assert.Len(t, Chunks(uids(21), 10), 3)
	assert.Len(t, Chunks(uids(20), 10), 2)
}

func TestGetByIDs_BatchesOfTen(t *testing.T) {
	users := &fakeLookup{}
	svc, m := newTestDirectory(users, &fakeCache{})

	got, err := svc.GetByIDs(context.Background(), append(uids(23), "u00", ""))
	require.NoError(t, err)
	assert.Len(t, got, 23)
	assert.Equal(t, "u00", got[0].UID)

	require.Len(t, users.batches, 3)
	total := 0
	for _, b := range users.batches {
		assert.LessOrEqual(t, len(b), 10)
		total += len(b)
	}
	assert.Equal(t, 23, total)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DirectoryBatches))
}

func TestGetByIDs_UsesCache(t *testing.T) {
	users := &fakeLookup{}
	cache := &fakeCache{}
	svc, m := newTestDirectory(users, cache)

	_, err := svc.GetByIDs(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	got, err := svc.GetByIDs(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Len(t, got, 3)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, users.batches)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DirectoryCacheHits))
}

func TestGetByIDs_CacheFailureFallsThrough(t *testing.T) {
	users := &fakeLookup{}
	svc, _ := newTestDirectory(users, &fakeCache{getErr: errors.New("redis down")})

	got, err := svc.GetByIDs(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetByIDs_PartialFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	users := &fakeLookup{findByIDsFn: func(_ context.Context, ids []string) ([]User, error) {
		if ids[0] == "u10" {
			return nil, boom
		}
		out := make([]User, 0, len(ids))
		for _, id := range ids {
			out = append(out, User{UID: id, DisplayName: id})
		}
		return out, nil
	}}
	svc, m := newTestDirectory(users, nil)

	got, err := svc.GetByIDs(context.Background(), uids(15))
	assert.Len(t, got, 10)
	require.Error(t, err)
	assert.True(t, core.IsResolution(err))
	assert.ErrorIs(t, err, boom)

	var rerr *core.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, uids(15)[10:], rerr.IDs)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryFailures))
}

func TestGetByIDs_UnknownUsersAreAbsent(t *testing.T) {
	users := &fakeLookup{findByIDsFn: func(context.Context, []string) ([]User, error) { return nil, nil }}
	svc, _ := newTestDirectory(users, nil)

	got, err := svc.GetByIDs(context.Background(), []string{"ghost"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
