package views

import (
	"context"
	"errors"
	"time"

	"CollegeNoticeBoard/internal/auth"
	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/directory"
	"CollegeNoticeBoard/internal/metrics"
	"CollegeNoticeBoard/internal/notice"
	"CollegeNoticeBoard/internal/store"

	"go.uber.org/zap"
)

type Directory interface {
	GetByIDs(ctx context.Context, ids []string) ([]directory.Profile, error)
}

// Feed is the live role-filtered notice feed.
type Feed interface {
	Subscribe(ctx context.Context, role auth.Role, onUpdate func([]notice.Notice), onError func(error)) func()
}

// Ledger records views and assembles the viewer list of a notice.
type Ledger struct {
	store     Store
	feed      Feed
	directory Directory
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewLedger(s Store, feed Feed, dir Directory, m *metrics.Metrics, logger *zap.Logger) *Ledger {
	return &Ledger{store: s, feed: feed, directory: dir, metrics: m, logger: logger.Named("views"), now: time.Now}
}

// RecordView registers that viewer opened the notice. Repeating it only
// refreshes the existing record.
func (l *Ledger) RecordView(ctx context.Context, noticeID string, viewer auth.Identity) error {
	if viewer.UID == "" {
		return core.NewValidationError(errors.New("viewer has no uid"), core.FieldError{Field: "uid", Error: "required"})
	}
	ev := notice.ViewEvent{
		UID:         viewer.UID,
		DisplayName: firstNonEmpty(viewer.DisplayName, PlaceholderName),
		Role:        string(viewer.Role),
		SeenAt:      l.now(),
	}
	if err := l.store.Upsert(ctx, noticeID, ev); err != nil {
		l.metrics.ViewRecordFailures.Inc()
		l.logger.Error("record view", zap.String("notice", noticeID), zap.String("uid", viewer.UID), zap.Error(err))
		return core.NewWriteError("record view", err)
	}
	l.metrics.ViewsRecorded.Inc()
	return nil
}

// SubscribeViews delivers every live view of the notice on each change.
// Failure semantics match the notice feed.
func (l *Ledger) SubscribeViews(ctx context.Context, noticeID string, onUpdate func([]notice.ViewEvent), onError func(error)) func() {
	src := store.Source[notice.ViewEvent]{
		Name:  CollectionName,
		List:  func(ctx context.Context) ([]notice.ViewEvent, error) { return l.store.ListByNotice(ctx, noticeID) },
		Watch: func(ctx context.Context) (store.Changes, error) { return l.store.WatchNotice(ctx, noticeID) },
	}
	return store.Subscribe(ctx, src, onUpdate, func(err error) {
		l.logger.Warn("view subscription ended", zap.String("notice", noticeID), zap.Error(err))
		if onError != nil {
			onError(err)
		}
	})
}

// ResolveMissingNames looks up the viewers that still carry a placeholder.
// On a core.ResolutionError the profiles that did resolve are returned too.
func (l *Ledger) ResolveMissingNames(ctx context.Context, viewers []MergedViewer) (map[string]directory.Profile, error) {
	resolved, _, err := l.resolve(ctx, Unnamed(viewers))
	return resolved, err
}

// resolve returns the profiles found for ids and the ids whose lookup failed.
func (l *Ledger) resolve(ctx context.Context, ids []string) (map[string]directory.Profile, []string, error) {
	resolved := make(map[string]directory.Profile, len(ids))
	if len(ids) == 0 {
		return resolved, nil, nil
	}
	profiles, err := l.directory.GetByIDs(ctx, ids)
	for _, p := range profiles {
		resolved[p.UID] = p
	}
	if err == nil {
		return resolved, nil, nil
	}
	var rerr *core.ResolutionError
	if errors.As(err, &rerr) {
		return resolved, rerr.IDs, err
	}
	return resolved, ids, core.NewResolutionError(ids, err)
}

// Snapshot returns the merged viewers of n as they are now.
func (l *Ledger) Snapshot(ctx context.Context, n notice.Notice) ([]MergedViewer, error) {
	live, err := l.store.ListByNotice(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	viewers := Merge(n.LegacyViewers, live, nil)
	names, err := l.ResolveMissingNames(ctx, viewers)
	if err != nil {
		l.logger.Warn("resolve viewer names", zap.String("notice", n.ID), zap.Error(err))
	}
	if len(names) == 0 {
		return viewers, nil
	}
	return Merge(n.LegacyViewers, live, names), nil
}
