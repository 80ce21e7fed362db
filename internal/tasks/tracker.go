// Package tasks tracks background work so the scanner can hold back while
// the application is busy or stopping.
package tasks

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker counts running tasks and carries the shutdown flag. The zero
// value is ready to use.
type Tracker struct {
	active   atomic.Int64
	stopping atomic.Bool
	wg       sync.WaitGroup
}

// Begin registers a task and returns the func that ends it. The returned
// func is safe to call more than once.
func (t *Tracker) Begin() (done func()) {
	t.active.Add(1)
	t.wg.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			t.active.Add(-1)
			t.wg.Done()
		})
	}
}

// Go runs fn as a tracked task. It is not started once shutdown began.
func (t *Tracker) Go(fn func()) bool {
	if t.stopping.Load() {
		return false
	}
	done := t.Begin()
	go func() {
		defer done()
		fn()
	}()
	return true
}

// ActiveTasks returns the number of running tasks.
func (t *Tracker) ActiveTasks() int {
	return int(t.active.Load())
}

// ShuttingDown reports whether Shutdown was called.
func (t *Tracker) ShuttingDown() bool {
	return t.stopping.Load()
}

// Shutdown flags the tracker as stopping and waits for running tasks until
// ctx ends.
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.stopping.Store(true)

	finished := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
