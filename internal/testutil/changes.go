// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"sync"
)

// Changes is an in-memory change stream. Each Notify wakes one Next call.
type Changes struct {
	events chan struct{}
	mu     sync.Mutex
	err    error
	closed bool
}

func NewChanges() *Changes {
	return &Changes{events: make(chan struct{}, 16)}
}

func (c *Changes) Notify() {
	c.events <- struct{}{}
}

// Fail makes the stream stop with err.
func (c *Changes) Fail(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	close(c.events)
}

func (c *Changes) Next(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		c.mu.Lock()
		if c.err == nil {
			c.err = ctx.Err()
		}
		c.mu.Unlock()
		return false
	case _, ok := <-c.events:
		return ok
	}
}

func (c *Changes) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Changes) Close(context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *Changes) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
