package directory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"CollegeNoticeBoard/internal/config"
	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Lookup finds users by id. The backing store caps how many ids one query takes.
type Lookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
}

type Cache interface {
	Get(ctx context.Context, ids []string) (map[string]Profile, error)
	Set(ctx context.Context, profiles []Profile) error
}

// Service answers batched profile lookups through the name cache.
type Service struct {
	users     Lookup
	cache     Cache
	batchSize int
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewService(users Lookup, cache Cache, cfg *config.DirectoryConfig, m *metrics.Metrics, logger *zap.Logger) *Service {
	size := cfg.BatchSize
	if size <= 0 {
		size = 10
	}
	return &Service{users: users, cache: cache, batchSize: size, metrics: m, logger: logger.Named("directory")}
}

// GetByIDs returns the profiles found for ids. Lookups go out in batches
// of at most batchSize, all at once. When some batches fail, the profiles
// from the rest are still returned alongside a core.ResolutionError naming
// the ids that could not be resolved.
func (s *Service) GetByIDs(ctx context.Context, ids []string) ([]Profile, error) {
	wanted := dedupe(ids)
	if len(wanted) == 0 {
		return nil, nil
	}

	found := make(map[string]Profile, len(wanted))
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, wanted)
		if err != nil {
			s.logger.Warn("name cache read", zap.Error(err))
		}
		for uid, p := range cached {
			found[uid] = p
		}
		s.metrics.DirectoryCacheHits.Add(float64(len(cached)))
	}

	var missing []string
	for _, uid := range wanted {
		if _, ok := found[uid]; !ok {
			missing = append(missing, uid)
		}
	}

	var (
		mu     sync.Mutex
		fresh  []Profile
		failed []string
		errs   []error
		g      errgroup.Group
	)
	for _, batch := range Chunks(missing, s.batchSize) {
		s.metrics.DirectoryBatches.Inc()
		g.Go(func() error {
			users, err := s.users.FindByIDs(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.metrics.DirectoryFailures.Inc()
				failed = append(failed, batch...)
				errs = append(errs, err)
				return err
			}
			for _, u := range users {
				fresh = append(fresh, u.Profile())
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range fresh {
		found[p.UID] = p
	}
	if s.cache != nil && len(fresh) > 0 {
		if err := s.cache.Set(ctx, fresh); err != nil {
			s.logger.Warn("name cache write", zap.Error(err))
		}
	}

	out := make([]Profile, 0, len(found))
	for _, uid := range wanted {
		if p, ok := found[uid]; ok {
			out = append(out, p)
		}
	}
	if len(errs) > 0 {
		sort.Strings(failed)
		s.logger.Warn("directory lookup failed", zap.Strings("uids", failed), zap.Errors("errors", errs))
		return out, core.NewResolutionError(failed, errors.Join(errs...))
	}
	return out, nil
}

// Chunks splits ids into consecutive groups of at most size.
func Chunks(ids []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var out [][]string
	for len(ids) > 0 {
		n := min(size, len(ids))
		out = append(out, ids[:n:n])
		ids = ids[n:]
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
