// Package dispatch provides the execution contexts producers run work
// and deliver results on.
package dispatch

import (
	"sync"
)

// Executor runs fn, possibly on another goroutine.
type Executor interface {
	Execute(fn func())
}

// ExecutorFunc adapts a func to the Executor interface.
type ExecutorFunc func(fn func())

// Execute calls f(fn).
func (f ExecutorFunc) Execute(fn func()) { f(fn) }

var (
	// Global runs each task on its own goroutine.
	Global Executor = ExecutorFunc(func(fn func()) { go fn() })

	// Immediate runs each task on the calling goroutine.
	Immediate Executor = ExecutorFunc(func(fn func()) { fn() })
)

// Queue is a serial executor: tasks run one at a time, in submission
// order, on a single goroutine owned by the Queue. It plays the role of
// a foreground context that results are delivered on.
//
// Execute never blocks, so tasks may submit more tasks to their own
// Queue, and Close may be called from a task.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
	exited  bool
	done    chan struct{}
}

// NewQueue starts a Queue with room for size pending tasks before its
// backlog has to grow.
func NewQueue(size int) *Queue {
	q := &Queue{
		pending: make([]func(), 0, max(size, 0)),
		done:    make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	go q.loop()

	return q
}

// Execute enqueues fn. Tasks submitted after Close still run on the
// Queue while it drains; once it has stopped, fn runs on the calling
// goroutine so no task is ever dropped.
func (q *Queue) Execute(fn func()) {
	q.mu.Lock()
	if q.exited {
		q.mu.Unlock()
		fn()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	q.cond.Signal()
}

// Close stops the Queue once its pending tasks ran. It doesn't wait
// for them; use Wait for that.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
}

// Wait blocks until the Queue was closed and drained. It must not be
// called from a task running on q.
func (q *Queue) Wait() {
	<-q.done
}

func (q *Queue) loop() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			q.exited = true
			q.mu.Unlock()
			return
		}

		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
	}
}
