package store

import (
	"context"
	"errors"
	"sync"

	"CollegeNoticeBoard/internal/core"

	"go.mongodb.org/mongo-driver/mongo"
)

// Changes is the part of *mongo.ChangeStream a subscription needs.
type Changes interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

var _ Changes = (*mongo.ChangeStream)(nil)

// Source lists a full ordered snapshot and watches for changes to it.
type Source[T any] struct {
	Name  string
	List  func(ctx context.Context) ([]T, error)
	Watch func(ctx context.Context) (Changes, error)
}

// Subscribe delivers the full snapshot once, then again after every change
// event. The first failure is reported once through onError as a
// core.SubscriptionError and ends the subscription. The returned function
// is idempotent; once it returns, no new callback starts. It may be called
// from inside a callback.
func Subscribe[T any](parent context.Context, src Source[T], onUpdate func([]T), onError func(error)) func() {
	ctx, cancel := context.WithCancel(parent)
	var gate core.Gate
	var once sync.Once

	deliver := func(items []T) {
		if ctx.Err() != nil {
			return
		}
		gate.Run(func() { onUpdate(items) })
	}
	fail := func(err error) {
		if ctx.Err() != nil || onError == nil {
			return
		}
		gate.Run(func() { onError(core.NewSubscriptionError(src.Name, err)) })
	}

	go func() {
		// Watch before the first list so no change slips between them.
		changes, err := src.Watch(ctx)
		if err != nil {
			fail(err)
			return
		}
		defer changes.Close(context.Background())

		relist := func() bool {
			items, err := src.List(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					fail(err)
				}
				return false
			}
			deliver(items)
			return true
		}

		if !relist() {
			return
		}
		for changes.Next(ctx) {
			if !relist() {
				return
			}
		}
		if err := changes.Err(); err != nil && !errors.Is(err, context.Canceled) {
			fail(err)
		}
	}()

	return func() {
		once.Do(func() {
			gate.Close()
			cancel()
		})
	}
}
