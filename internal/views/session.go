package views

import (
	"context"
	"sync"

	"CollegeNoticeBoard/internal/auth"
	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/directory"
	"CollegeNoticeBoard/internal/notice"

	"go.uber.org/zap"
)

// resolution is the outcome of one directory lookup started by a session.
type resolution struct {
	profiles map[string]directory.Profile
	failed   []string
}

// session is the state behind one open notice page. Only run touches it.
type session struct {
	ledger   *Ledger
	viewer   auth.Identity
	noticeID string
	emit     func(Detail)

	feed        []notice.Notice
	feedLoaded  bool
	live        []notice.ViewEvent
	viewsLoaded bool
	names       map[string]directory.Profile
	requested   map[string]bool
	retry       []string
	recorded    bool
	recordErr   error

	resolved     chan resolution
	recordFailed chan error
}

// Open follows one notice for viewer. It delivers a fresh Detail whenever
// the feed, the notice's views, or a name lookup changes. The view is
// recorded once, after both feeds have loaded, if the notice is visible and
// viewer is not already listed; a failed write shows up in
// Detail.RecordError and the session carries on. A subscription failure
// reaches onError and ends the session. The returned function releases
// everything; once it returns no further callback starts.
func (l *Ledger) Open(ctx context.Context, viewer auth.Identity, noticeID string, onUpdate func(Detail), onError func(error)) func() {
	ctx, cancel := context.WithCancel(ctx)
	var gate core.Gate

	feedIn := core.NewLatest[[]notice.Notice]()
	viewsIn := core.NewLatest[[]notice.ViewEvent]()
	failures := make(chan error, 2)
	fail := func(err error) {
		select {
		case failures <- err:
		default:
		}
	}

	stopFeed := l.feed.Subscribe(ctx, viewer.Role, feedIn.Put, fail)
	stopViews := l.SubscribeViews(ctx, noticeID, viewsIn.Put, fail)
	l.metrics.DetailSessionsOpen.Inc()

	s := &session{
		ledger:   l,
		viewer:   viewer,
		noticeID: noticeID,
		emit: func(d Detail) {
			gate.Run(func() { onUpdate(d) })
		},
		names:        map[string]directory.Profile{},
		requested:    map[string]bool{},
		resolved:     make(chan resolution),
		recordFailed: make(chan error),
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case feed := <-feedIn.C():
				s.feed, s.feedLoaded = feed, true
				s.allowRetry()
			case live := <-viewsIn.C():
				s.live, s.viewsLoaded = live, true
				s.allowRetry()
			case r := <-s.resolved:
				for uid, p := range r.profiles {
					s.names[uid] = p
				}
				s.retry = append(s.retry, r.failed...)
			case err := <-s.recordFailed:
				s.recordErr = err
			case err := <-failures:
				if onError != nil {
					gate.Run(func() { onError(err) })
				}
				cancel()
				return
			}
			s.recompute(ctx)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			gate.Close()
			stopFeed()
			stopViews()
			cancel()
			l.metrics.DetailSessionsOpen.Dec()
		})
	}
}

// allowRetry makes uids whose lookup failed eligible again. It runs on
// source updates only, so a failing directory is not hammered.
func (s *session) allowRetry() {
	for _, uid := range s.retry {
		delete(s.requested, uid)
	}
	s.retry = nil
}

func (s *session) recompute(ctx context.Context) {
	pos := notice.Locate(s.feed, s.noticeID)
	var legacy []notice.ViewEvent
	if pos.Found() {
		legacy = pos.Current.LegacyViewers
	}
	viewers := Merge(legacy, s.live, s.names)
	d := Detail{Position: pos, Viewers: viewers}
	if s.recordErr != nil {
		d.RecordError = s.recordErr.Error()
	}
	s.emit(d)

	if !s.recorded && s.feedLoaded && s.viewsLoaded && pos.Found() && !Contains(viewers, s.viewer.UID) {
		s.recorded = true
		// Success shows up through the views subscription. A failure does not
		// clear recorded, so the write is not retried in this session.
		go func() {
			if err := s.ledger.RecordView(ctx, s.noticeID, s.viewer); err != nil {
				select {
				case s.recordFailed <- err:
				case <-ctx.Done():
				}
			}
		}()
	}

	var pending []string
	for _, uid := range Unnamed(viewers) {
		if !s.requested[uid] {
			s.requested[uid] = true
			pending = append(pending, uid)
		}
	}
	if len(pending) == 0 {
		return
	}
	go func() {
		profiles, failed, err := s.ledger.resolve(ctx, pending)
		if err != nil {
			s.ledger.logger.Warn("resolve viewer names", zap.String("notice", s.noticeID), zap.Error(err))
		}
		select {
		case s.resolved <- resolution{profiles: profiles, failed: failed}:
		case <-ctx.Done():
		}
	}()
}
