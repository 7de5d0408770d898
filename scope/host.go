package scope

import (
	"context"
	"sync"
)

// Host runs functions at some later time, after the caller has returned.
// Scopes use it to flush work queued with [Scope.EvalAsync] when no digest
// is otherwise pending.
type Host interface {
	Defer(fn func())
}

// Loop is a cooperative [Host]. Deferred functions accumulate in FIFO order
// until the owner calls Flush or Run.
//
// Defer may be called from any goroutine. Flush and Run must be called from
// the goroutine that owns the scopes using the loop.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Defer queues fn.
func (l *Loop) Defer(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.tasks)
}

// Flush runs queued functions until the queue is empty, including any
// queued while flushing, and returns how many ran.
func (l *Loop) Flush() int {
	n := 0

	for {
		l.mu.Lock()

		if len(l.tasks) == 0 {
			l.mu.Unlock()

			return n
		}

		fn := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		fn()

		n++
	}
}

// Run flushes the loop whenever functions are deferred, until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Flush()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
