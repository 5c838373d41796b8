// Package async models a single in-flight operation as an explicit request object
// that moves from pending to either success or failure exactly once.
package async

import (
	"context"
	"sync"
)

// Status is the lifecycle position of a [Request].
type Status uint8

const (
	Pending Status = iota
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Snapshot is a point-in-time view of a [Request].
type Snapshot[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Request is the handle to an operation started with [Start]. All methods are safe
// for concurrent use.
type Request[T any] struct {
	mu   sync.Mutex
	snap Snapshot[T]
	subs []func(Snapshot[T])
	done chan struct{}
}

// Start runs fn on a new goroutine and returns its handle. Cancelling ctx is the
// only way to abandon fn; the request still completes with fn's result.
func Start[T any](ctx context.Context, fn func(context.Context) (T, error)) *Request[T] {
	r := &Request[T]{done: make(chan struct{})}
	go func() {
		data, err := fn(ctx)
		r.complete(data, err)
	}()
	return r
}

// Resolved returns a request that has already succeeded with data.
func Resolved[T any](data T) *Request[T] {
	r := &Request[T]{done: make(chan struct{})}
	r.complete(data, nil)
	return r
}

func (r *Request[T]) complete(data T, err error) {
	r.mu.Lock()
	if err != nil {
		var zero T
		r.snap = Snapshot[T]{Status: Failed, Data: zero, Err: err}
	} else {
		r.snap = Snapshot[T]{Status: Succeeded, Data: data}
	}
	snap := r.snap
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	close(r.done)
}

// Snapshot returns the current state.
func (r *Request[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Subscribe calls fn once when the request completes. If it already has, fn is
// called before Subscribe returns.
func (r *Request[T]) Subscribe(fn func(Snapshot[T])) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	if r.snap.Status == Pending {
		r.subs = append(r.subs, fn)
		r.mu.Unlock()
		return
	}
	snap := r.snap
	r.mu.Unlock()
	fn(snap)
}

// Done is closed once the request has completed and its subscribers have run.
func (r *Request[T]) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the request completes or ctx is done.
func (r *Request[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		snap := r.Snapshot()
		return snap.Data, snap.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
