// Package loop runs all lesson state mutation on a single goroutine.
//
// Engines never touch their state from a capture or timer goroutine; they
// hand a closure to Post and the loop runs it in order. Timers created with
// AfterFunc also fire on the loop, so a Stop that returns before the timer
// callback runs guarantees the callback never runs.
package loop

import (
	"context"
	"sync"
	"time"
)

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer; stopping a fired or stopped timer is a no-op.
	Stop() bool
}

// Scheduler serializes callbacks onto one goroutine.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop is the production Scheduler. Callbacks run inside Run.
type Loop struct {
	queue chan func()
	once  sync.Once
	done  chan struct{}
}

// New creates a loop with room for backlog queued callbacks.
func New(backlog int) *Loop {
	if backlog < 1 {
		backlog = 64
	}
	return &Loop{
		queue: make(chan func(), backlog),
		done:  make(chan struct{}),
	}
}

// Post queues fn. Posting after Run has returned drops fn.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.queue <- fn:
	}
}

// Run executes queued callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return context.Canceled
	case <-finished:
		return nil
	}
}

type loopTimer struct {
	t *time.Timer

	// stopped is only read and written on the loop goroutine.
	stopped bool
}

// AfterFunc schedules fn on the loop after d. Stop must be called from the
// loop goroutine.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if lt.stopped {
				return
			}
			lt.stopped = true
			fn()
		})
	})
	return lt
}

func (lt *loopTimer) Stop() bool {
	if lt.stopped {
		return false
	}
	lt.stopped = true
	lt.t.Stop()
	return true
}
