package executor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Future represents an in-flight fork/join task graph node. App uses it to
// run the frame of a sub-app that allows overlapping updates in the
// background; App waits on it only once that sub-app's bound of outstanding
// frames is reached, or in WaitForOverlappingUpdates.
type Future struct {
	group *errgroup.Group
	ctx   context.Context
}

// Fork starts a new fork/join group bound to ctx. Go schedules fn to run
// immediately; Wait blocks until every forked fn has returned.
func Fork(ctx context.Context) *Future {
	g, gctx := errgroup.WithContext(ctx)
	return &Future{group: g, ctx: gctx}
}

// Go schedules fn to run concurrently with every other Go call on this
// Future. fn should observe f.Context().Done() for cooperative cancellation
// once a sibling task fails.
func (f *Future) Go(fn func(ctx context.Context) error) {
	f.group.Go(func() error {
		return fn(f.ctx)
	})
}

// Context returns the context passed to every forked fn, cancelled as soon
// as the first one returns a non-nil error.
func (f *Future) Context() context.Context {
	return f.ctx
}

// Wait blocks until every forked task has returned, and reports the first
// non-nil error any of them returned.
func (f *Future) Wait() error {
	return f.group.Wait()
}

// Join runs every task concurrently and waits for all of them, returning the
// first error encountered. A convenience wrapper around Fork/Go/Wait for
// callers that already have their task list in hand.
func Join(ctx context.Context, tasks ...func(ctx context.Context) error) error {
	f := Fork(ctx)
	for _, t := range tasks {
		f.Go(t)
	}
	return f.Wait()
}
