package notice

import (
	"context"
	"sync"

	"CollegeNoticeBoard/internal/auth"
	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/metrics"
	"CollegeNoticeBoard/internal/store"

	"go.uber.org/zap"
)

// Feed is the live, role-filtered, ordered view of the notices collection.
type Feed struct {
	store   Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	arrange func([]Notice, auth.Role) []Notice
}

func NewFeed(s Store, m *metrics.Metrics, logger *zap.Logger) *Feed {
	return &Feed{store: s, metrics: m, logger: logger.Named("feed"), arrange: arrangeFeed}
}

func arrangeFeed(all []Notice, role auth.Role) []Notice {
	visible := FilterVisible(all, role)
	SortFeed(visible)
	return visible
}

// Subscribe delivers the complete visible feed for role on every change to
// the collection. A stream failure reaches onError once and ends the
// subscription; the caller has to subscribe again. Once the returned
// function returns no callback starts, and it may be called from inside one.
func (f *Feed) Subscribe(ctx context.Context, role auth.Role, onUpdate func([]Notice), onError func(error)) func() {
	var gate core.Gate
	f.metrics.FeedSubscriptions.Inc()
	src := store.Source[Notice]{
		Name:  CollectionName,
		List:  f.store.List,
		Watch: f.store.Watch,
	}
	stop := store.Subscribe(ctx, src, func(all []Notice) {
		visible := f.arrange(all, role)
		gate.Run(func() {
			f.metrics.FeedEmissions.Inc()
			onUpdate(visible)
		})
	}, func(err error) {
		f.logger.Warn("notice subscription ended", zap.String("role", string(role)), zap.Error(err))
		if onError != nil {
			gate.Run(func() { onError(err) })
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			gate.Close()
			stop()
			f.metrics.FeedSubscriptions.Dec()
		})
	}
}
