package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterSource struct {
	mu      sync.Mutex
	items   []int
	listErr error
	changes *testutil.Changes
}

func (c *counterSource) set(items ...int) {
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

func (c *counterSource) source() Source[int] {
	return Source[int]{
		Name: "counters",
		List: func(context.Context) ([]int, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.listErr != nil {
				return nil, c.listErr
			}
			return append([]int(nil), c.items...), nil
		},
		Watch: func(context.Context) (Changes, error) { return c.changes, nil },
	}
}

func TestSubscribe_DeliversInitialAndEveryChange(t *testing.T) {
	src := &counterSource{changes: testutil.NewChanges()}
	src.set(1)

	updates := make(chan []int, 8)
	stop := Subscribe(context.Background(), src.source(), func(items []int) { updates <- items }, nil)
	defer stop()

	assert.Equal(t, []int{1}, <-updates)

	src.set(1, 2)
	src.changes.Notify()
	assert.Equal(t, []int{1, 2}, <-updates)

	src.set(2)
	src.changes.Notify()
	assert.Equal(t, []int{2}, <-updates)
}

func TestSubscribe_StreamFailureIsTerminal(t *testing.T) {
	src := &counterSource{changes: testutil.NewChanges()}
	src.set(1)

	updates := make(chan []int, 8)
	errs := make(chan error, 2)
	stop := Subscribe(context.Background(), src.source(), func(items []int) { updates <- items }, func(err error) { errs <- err })
	defer stop()

	<-updates
	src.changes.Fail(errors.New("permission denied"))

	select {
	case err := <-errs:
		assert.True(t, core.IsSubscription(err))
		assert.Contains(t, err.Error(), "counters")
	case <-time.After(time.Second):
		t.Fatal("expected subscription error")
	}
	require.Eventually(t, src.changes.Closed, time.Second, 5*time.Millisecond)
}

func TestSubscribe_ListFailureIsReported(t *testing.T) {
	src := &counterSource{changes: testutil.NewChanges(), listErr: errors.New("unavailable")}

	errs := make(chan error, 1)
	stop := Subscribe(context.Background(), src.source(), func([]int) { t.Error("unexpected update") }, func(err error) { errs <- err })
	defer stop()

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "unavailable")
	case <-time.After(time.Second):
		t.Fatal("expected list error")
	}
}

func TestSubscribe_WatchFailureIsReported(t *testing.T) {
	src := Source[int]{
		Name:  "broken",
		List:  func(context.Context) ([]int, error) { return nil, nil },
		Watch: func(context.Context) (Changes, error) { return nil, errors.New("no replica set") },
	}

	errs := make(chan error, 1)
	stop := Subscribe(context.Background(), src, func([]int) {}, func(err error) { errs <- err })
	defer stop()

	select {
	case err := <-errs:
		assert.True(t, core.IsSubscription(err))
	case <-time.After(time.Second):
		t.Fatal("expected watch error")
	}
}

func TestSubscribe_UnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	src := &counterSource{changes: testutil.NewChanges()}
	src.set(1)

	var calls atomic.Int32
	first := make(chan struct{}, 1)
	stop := Subscribe(context.Background(), src.source(), func([]int) {
		calls.Add(1)
		select {
		case first <- struct{}{}:
		default:
		}
	}, func(error) { t.Error("cancellation must not be reported") })

	<-first
	stop()
	stop()

	src.changes.Notify()
	require.Eventually(t, src.changes.Closed, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubscribe_UnsubscribeFromCallback(t *testing.T) {
	src := &counterSource{changes: testutil.NewChanges()}
	src.set(1)

	var stop func()
	var ready sync.WaitGroup
	ready.Add(1)
	returned := make(chan struct{})
	stop = Subscribe(context.Background(), src.source(), func([]int) {
		ready.Wait()
		stop()
		close(returned)
	}, nil)
	ready.Done()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("unsubscribe inside the callback deadlocked")
	}
	require.Eventually(t, src.changes.Closed, time.Second, 5*time.Millisecond)
}

func TestSubscribe_UnsubscribeAfterListSkipsDelivery(t *testing.T) {
	changes := testutil.NewChanges()
	listed := make(chan struct{}, 1)
	release := make(chan struct{})
	var lists atomic.Int32
	src := Source[int]{
		Name: "counters",
		List: func(context.Context) ([]int, error) {
			if lists.Add(1) == 2 {
				listed <- struct{}{}
				<-release
			}
			return []int{1}, nil
		},
		Watch: func(context.Context) (Changes, error) { return changes, nil },
	}

	var calls atomic.Int32
	stop := Subscribe(context.Background(), src, func([]int) { calls.Add(1) }, nil)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	changes.Notify()
	<-listed
	stop()
	close(release)

	require.Eventually(t, changes.Closed, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
