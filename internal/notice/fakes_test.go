package notice

import (
	"context"
	"errors"
	"sync"
	"time"

	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/store"
	"CollegeNoticeBoard/internal/testutil"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func at(h int) time.Time { return t0.Add(time.Duration(h) * time.Hour) }

// memStore keeps notices in memory and records the writes it receives.
type memStore struct {
	mu        sync.Mutex
	notices   map[string]Notice
	updates   map[string]bson.M
	changes   *testutil.Changes
	createErr error
	listErr   error
}

func newMemStore(notices ...Notice) *memStore {
	s := &memStore{notices: map[string]Notice{}, updates: map[string]bson.M{}, changes: testutil.NewChanges()}
	for _, n := range notices {
		s.notices[n.ID] = n
	}
	return s
}

func (s *memStore) Create(_ context.Context, n Notice) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	n.ID = primitive.NewObjectID().Hex()
	s.notices[n.ID] = n
	return n.ID, nil
}

func (s *memStore) Update(_ context.Context, id string, fields bson.M) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notices[id]; !ok {
		return core.ErrNotFound
	}
	s.updates[id] = fields
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notices[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.notices, id)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notices[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &n, nil
}

// List returns the notices unordered; callers must sort.
func (s *memStore) List(context.Context) ([]Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Notice, 0, len(s.notices))
	for _, n := range s.notices {
		out = append(out, n)
	}
	return out, nil
}

func (s *memStore) Watch(context.Context) (store.Changes, error) {
	return s.changes, nil
}

func (s *memStore) put(n Notice) {
	s.mu.Lock()
	s.notices[n.ID] = n
	s.mu.Unlock()
	s.changes.Notify()
}

type fakeBlobs struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (b *fakeBlobs) Upload(_ context.Context, pathHint string, file Upload) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return "", b.uploadErr
	}
	url := "http://blobs.local/" + pathHint + "/" + file.Name
	b.uploaded = append(b.uploaded, url)
	return url, nil
}

func (b *fakeBlobs) Delete(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, url)
	return b.deleteErr
}

var errDown = errors.New("store unavailable")

var nopLogger = zap.NewNop()
