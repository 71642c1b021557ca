package future_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adamwoolhether/httpspec/dispatch"
	"github.com/adamwoolhether/httpspec/future"
)

func TestProducer_Lazy(t *testing.T) {
	var calls atomic.Int32
	p := future.New(func(context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	})

	if calls.Load() != 0 {
		t.Fatal("expected no work before subscription")
	}

	for range 3 {
		if _, err := p.Await(t.Context()); err != nil {
			t.Fatalf("await: %v", err)
		}
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("expected one run per subscription, got %d", got)
	}
}

func TestProducer_ExactlyOnce(t *testing.T) {
	errBoom := errors.New("boom")

	testCases := map[string]struct {
		p      *future.Producer[string]
		expVal string
		expErr error
	}{
		"value": {p: future.Just("hi"), expVal: "hi"},
		"error": {p: future.Fail[string](errBoom), expErr: errBoom},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var values, errs atomic.Int32
			var gotVal string
			var gotErr error

			sub := tc.p.SubscribeOn(dispatch.Global).Subscribe(t.Context(),
				func(v string) { values.Add(1); gotVal = v },
				func(err error) { errs.Add(1); gotErr = err },
			)

			select {
			case <-sub.Done():
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for delivery")
			}

			if values.Load()+errs.Load() != 1 {
				t.Fatalf("expected exactly one delivery, got %d values and %d errors", values.Load(), errs.Load())
			}
			if gotVal != tc.expVal {
				t.Errorf("exp value %q, got %q", tc.expVal, gotVal)
			}
			if !errors.Is(gotErr, tc.expErr) {
				t.Errorf("exp err %v, got %v", tc.expErr, gotErr)
			}
		})
	}
}

func TestProducer_Map(t *testing.T) {
	errParse := errors.New("parse")

	double := func(v int) (int, error) { return v * 2, nil }
	fail := func(int) (int, error) { return 0, errParse }

	if v, err := future.Map(future.Just(21), double).Await(t.Context()); err != nil || v != 42 {
		t.Errorf("exp 42, got %d, %v", v, err)
	}

	if _, err := future.Map(future.Just(1), fail).Await(t.Context()); !errors.Is(err, errParse) {
		t.Errorf("exp map error, got %v", err)
	}

	var called bool
	upstream := errors.New("upstream")
	_, err := future.Map(future.Fail[int](upstream), func(v int) (int, error) {
		called = true
		return v, nil
	}).Await(t.Context())
	if !errors.Is(err, upstream) || called {
		t.Errorf("exp upstream error without calling fn, got %v (called=%v)", err, called)
	}
}

func TestProducer_CancelSuppressesDelivery(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	p := future.New(func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	}).SubscribeOn(dispatch.Global)

	var delivered atomic.Bool
	sub := p.Subscribe(t.Context(),
		func(int) { delivered.Store(true) },
		func(error) { delivered.Store(true) },
	)

	<-started
	sub.Cancel()

	select {
	case <-sub.Done():
	default:
		t.Fatal("expected Done to be closed after Cancel")
	}

	close(release)
	time.Sleep(10 * time.Millisecond)

	if delivered.Load() {
		t.Error("expected no delivery after cancel")
	}
	if !sub.Cancelled() {
		t.Error("expected subscription to report cancelled")
	}
}

func TestProducer_CancelFromHandler(t *testing.T) {
	errBoom := errors.New("boom")

	q := dispatch.NewQueue(0)
	defer q.Close()

	testCases := map[string]struct {
		fail bool
		exec future.Executor
	}{
		"value":        {exec: dispatch.Immediate},
		"error":        {fail: true, exec: dispatch.Immediate},
		"valueOnQueue": {exec: q},
		"errorOnQueue": {fail: true, exec: q},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gate := make(chan struct{})
			p := future.New(func(context.Context) (int, error) {
				<-gate
				if tc.fail {
					return 0, errBoom
				}
				return 1, nil
			}).SubscribeOn(dispatch.Global).ReceiveOn(tc.exec)

			var (
				calls atomic.Int32
				sub   *future.Subscription
			)
			handle := func() {
				calls.Add(1)
				sub.Cancel()
				sub.Cancel()
			}

			sub = p.Subscribe(t.Context(), func(int) { handle() }, func(error) { handle() })
			close(gate)

			select {
			case <-sub.Done():
			case <-time.After(2 * time.Second):
				t.Fatal("cancel from inside the handler never returned")
			}

			if got := calls.Load(); got != 1 {
				t.Errorf("expected one handler call, got %d", got)
			}
			if !sub.Cancelled() {
				t.Error("expected subscription to report cancelled")
			}
		})
	}

	// The queue keeps serving after a handler cancelled on it.
	ran := make(chan struct{})
	q.Execute(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stalled after cancel from a handler")
	}
}

func TestProducer_CancelAbortsContext(t *testing.T) {
	ctxErr := make(chan error, 1)
	started := make(chan struct{})

	p := future.New(func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		ctxErr <- ctx.Err()
		return 0, ctx.Err()
	}).SubscribeOn(dispatch.Global)

	sub := p.Subscribe(t.Context(), nil, nil)
	<-started
	sub.Cancel()

	select {
	case err := <-ctxErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("exp context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("work context was not cancelled")
	}
}

func TestProducer_AwaitContextEnds(t *testing.T) {
	p := future.New(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return 0, nil
	}).SubscribeOn(dispatch.Global)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Await(ctx)
	if !errors.Is(err, future.ErrCancelled) {
		t.Fatalf("exp ErrCancelled, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("exp deadline exceeded in chain, got %v", err)
	}
}

func TestProducer_ReceiveOn(t *testing.T) {
	q := dispatch.NewQueue(1)
	defer q.Close()

	var onQueue atomic.Bool
	marker := make(chan struct{}, 1)

	// The queue runs tasks serially, so a task observed running on it
	// proves delivery happened there.
	exec := dispatch.ExecutorFunc(func(fn func()) {
		q.Execute(func() {
			onQueue.Store(true)
			fn()
			onQueue.Store(false)
		})
	})

	p := future.Just(7).SubscribeOn(dispatch.Global).ReceiveOn(exec)

	p.Subscribe(t.Context(), func(v int) {
		if !onQueue.Load() {
			t.Error("expected delivery on the queue")
		}
		marker <- struct{}{}
	}, nil)

	select {
	case <-marker:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}
