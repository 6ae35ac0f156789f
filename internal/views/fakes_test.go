package views

import (
	"context"
	"sort"
	"sync"
	"time"

	"CollegeNoticeBoard/internal/auth"
	"CollegeNoticeBoard/internal/directory"
	"CollegeNoticeBoard/internal/notice"
	"CollegeNoticeBoard/internal/store"
	"CollegeNoticeBoard/internal/testutil"

	"go.uber.org/zap"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func at(m int) time.Time { return t0.Add(time.Duration(m) * time.Minute) }

var nopLogger = zap.NewNop()

// memViews keeps view records keyed like the mongo collection.
type memViews struct {
	mu        sync.Mutex
	records   map[string]notice.ViewEvent
	changes   *testutil.Changes
	upserts   int
	upsertErr error
	listErr   error
}

func newMemViews() *memViews {
	return &memViews{records: map[string]notice.ViewEvent{}, changes: testutil.NewChanges()}
}

func (s *memViews) Upsert(_ context.Context, noticeID string, ev notice.ViewEvent) error {
	s.mu.Lock()
	s.upserts++
	if s.upsertErr != nil {
		s.mu.Unlock()
		return s.upsertErr
	}
	s.records[recordID(noticeID, ev.UID)] = ev
	s.mu.Unlock()
	s.changes.Notify()
	return nil
}

func (s *memViews) ListByNotice(_ context.Context, noticeID string) ([]notice.ViewEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []notice.ViewEvent
	for id, ev := range s.records {
		if len(id) > len(noticeID) && id[:len(noticeID)+1] == noticeID+"/" {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (s *memViews) WatchNotice(context.Context, string) (store.Changes, error) {
	return s.changes, nil
}

func (s *memViews) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *memViews) upsertCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

// fakeFeed hands out subscriptions the test pushes snapshots into.
type fakeFeed struct {
	mu       sync.Mutex
	role     auth.Role
	onUpdate func([]notice.Notice)
	onError  func(error)
	stopped  bool
}

func (f *fakeFeed) Subscribe(_ context.Context, role auth.Role, onUpdate func([]notice.Notice), onError func(error)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.role, f.onUpdate, f.onError = role, onUpdate, onError
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stopped = true
	}
}

func (f *fakeFeed) push(feed ...notice.Notice) {
	f.mu.Lock()
	fn := f.onUpdate
	f.mu.Unlock()
	fn(feed)
}

func (f *fakeFeed) fail(err error) {
	f.mu.Lock()
	fn := f.onError
	f.mu.Unlock()
	fn(err)
}

func (f *fakeFeed) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeDirectory struct {
	mu         sync.Mutex
	calls      [][]string
	getByIDsFn func(context.Context, []string) ([]directory.Profile, error)
}

func (d *fakeDirectory) GetByIDs(ctx context.Context, ids []string) ([]directory.Profile, error) {
	d.mu.Lock()
	d.calls = append(d.calls, append([]string(nil), ids...))
	d.mu.Unlock()
	if d.getByIDsFn != nil {
		return d.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (d *fakeDirectory) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// directoryOf answers from a fixed set of profiles.
func directoryOf(profiles ...directory.Profile) *fakeDirectory {
	byUID := map[string]directory.Profile{}
	for _, p := range profiles {
		byUID[p.UID] = p
	}
	return &fakeDirectory{getByIDsFn: func(_ context.Context, ids []string) ([]directory.Profile, error) {
		var out []directory.Profile
		for _, id := range ids {
			if p, ok := byUID[id]; ok {
				out = append(out, p)
			}
		}
		return out, nil
	}}
}
