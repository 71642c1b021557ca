// Package future implements a lazy, single-value, cancelable producer.
//
// A [Producer] does nothing until subscribed. Every subscription runs
// the producer's work again and receives exactly one value or one error,
// unless it is cancelled first:
//
//	p := future.New(func(ctx context.Context) (int, error) { return 42, nil })
//	sub := p.Subscribe(ctx, func(v int) { ... }, func(err error) { ... })
//	defer sub.Cancel()
//
// Work runs on the subscribing goroutine unless the producer was built
// with [Producer.SubscribeOn]; delivery happens wherever the work
// completes unless [Producer.ReceiveOn] is used.
package future

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrCancelled is returned by [Producer.Await] when its context ends
// before a result is delivered.
var ErrCancelled = errors.New("subscription cancelled")

// Executor runs a task. It is satisfied by the dispatch package's executors.
type Executor interface {
	Execute(fn func())
}

// emitFn receives the single result of a run.
type emitFn[T any] func(T, error)

// Producer is a lazy single-value asynchronous result.
type Producer[T any] struct {
	run func(ctx context.Context, emit emitFn[T])
}

// New returns a Producer that calls fn once per subscription.
func New[T any](fn func(ctx context.Context) (T, error)) *Producer[T] {
	return &Producer[T]{
		run: func(ctx context.Context, emit emitFn[T]) {
			emit(fn(ctx))
		},
	}
}

// Just returns a Producer that always emits v.
func Just[T any](v T) *Producer[T] {
	return New(func(context.Context) (T, error) { return v, nil })
}

// Fail returns a Producer that always emits err.
func Fail[T any](err error) *Producer[T] {
	return New(func(context.Context) (T, error) {
		var zero T
		return zero, err
	})
}

// Map transforms the value of p with fn. Errors from p skip fn.
func Map[T, U any](p *Producer[T], fn func(T) (U, error)) *Producer[U] {
	return &Producer[U]{
		run: func(ctx context.Context, emit emitFn[U]) {
			p.run(ctx, func(v T, err error) {
				if err != nil {
					var zero U
					emit(zero, err)
					return
				}
				emit(fn(v))
			})
		},
	}
}

// SubscribeOn returns a Producer whose work starts on exec.
func (p *Producer[T]) SubscribeOn(exec Executor) *Producer[T] {
	return &Producer[T]{
		run: func(ctx context.Context, emit emitFn[T]) {
			exec.Execute(func() { p.run(ctx, emit) })
		},
	}
}

// ReceiveOn returns a Producer that delivers its result on exec.
func (p *Producer[T]) ReceiveOn(exec Executor) *Producer[T] {
	return &Producer[T]{
		run: func(ctx context.Context, emit emitFn[T]) {
			p.run(ctx, func(v T, err error) {
				exec.Execute(func() { emit(v, err) })
			})
		},
	}
}

// Subscribe starts the producer's work. Exactly one of onValue or
// onError is called, unless the Subscription is cancelled first.
// Either callback may be nil.
func (p *Producer[T]) Subscribe(ctx context.Context, onValue func(T), onError func(error)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	p.run(ctx, func(v T, err error) {
		if !s.finished.CompareAndSwap(false, true) {
			return
		}
		defer close(s.done)
		defer cancel()

		if s.cancelled.Load() {
			return
		}

		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}

		if onValue != nil {
			onValue(v)
		}
	})

	return s
}

// Await subscribes and blocks until the result arrives or ctx ends.
func (p *Producer[T]) Await(ctx context.Context) (T, error) {
	type result struct {
		v   T
		err error
	}

	ch := make(chan result, 1)
	sub := p.Subscribe(ctx,
		func(v T) { ch <- result{v: v} },
		func(err error) { ch <- result{err: err} },
	)

	select {
	case r := <-ch:
		return r.v, r.err
	default:
	}

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		sub.Cancel()
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	}
}

// Subscription tracks one run of a Producer.
type Subscription struct {
	cancel    context.CancelFunc
	done      chan struct{}
	finished  atomic.Bool
	cancelled atomic.Bool
}

// Cancel aborts the run and suppresses delivery if it hasn't happened yet.
// Calling it after delivery, or from inside a handler, only marks the
// subscription cancelled.
func (s *Subscription) Cancel() {
	s.cancelled.Store(true)
	s.cancel()
	if s.finished.CompareAndSwap(false, true) {
		close(s.done)
	}
}

// Done returns a channel closed once a handler returned or the
// subscription was cancelled before delivery.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Cancelled reports whether Cancel was called.
func (s *Subscription) Cancelled() bool { return s.cancelled.Load() }
