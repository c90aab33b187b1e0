// Package syncutil collects small generic synchronization helpers used by
// pkg/log's async write core and similar background-task callers.
package syncutil

import "context"

// AsyncTaskNotifier coordinates a single background goroutine's lifecycle:
// the goroutine watches Context() for cancellation, the owner calls Cancel
// to request a stop and BlockUntilFinish to wait for the goroutine to
// report back via Finish.
type AsyncTaskNotifier[T any] struct {
	ctx      context.Context
	cancel   context.CancelFunc
	finishCh chan T
}

// NewAsyncTaskNotifier returns a notifier ready for a single background
// task; Finish must be called exactly once by that task.
func NewAsyncTaskNotifier[T any]() *AsyncTaskNotifier[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncTaskNotifier[T]{
		ctx:      ctx,
		cancel:   cancel,
		finishCh: make(chan T, 1),
	}
}

// Context is canceled once Cancel is called; the background task should
// select on Context().Done() to know when to stop.
func (n *AsyncTaskNotifier[T]) Context() context.Context {
	return n.ctx
}

// Cancel requests the background task stop. It does not wait for it to do
// so; pair with BlockUntilFinish for that.
func (n *AsyncTaskNotifier[T]) Cancel() {
	n.cancel()
}

// Finish reports the background task's result. Must be called exactly
// once, after which the task is considered done.
func (n *AsyncTaskNotifier[T]) Finish(result T) {
	n.finishCh <- result
}

// BlockUntilFinish waits for the background task's Finish call and
// returns its result.
func (n *AsyncTaskNotifier[T]) BlockUntilFinish() T {
	return <-n.finishCh
}
