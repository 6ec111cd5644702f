package scene

import "sync"

// Future is a value that resolves at most once, with either a result or
// an error. Resolution and callbacks happen on the render thread.
type Future[T any] struct {
	done      bool
	value     T
	err       error
	callbacks []func(T, error)
}

// NewFuture creates an unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// Resolved returns a future already completed with value.
func Resolved[T any](value T) *Future[T] {
	return &Future[T]{done: true, value: value}
}

// Failed returns a future already completed with err.
func Failed[T any](err error) *Future[T] {
	return &Future[T]{done: true, err: err}
}

// Done reports whether the future has been completed.
func (f *Future[T]) Done() bool { return f.done }

// Result returns the value and error; both are zero while pending.
func (f *Future[T]) Result() (T, error) { return f.value, f.err }

// Succeed completes the future with value.
func (f *Future[T]) Succeed(value T) error {
	return f.complete(value, nil)
}

// Fail completes the future with err.
func (f *Future[T]) Fail(err error) error {
	var zero T
	return f.complete(zero, err)
}

func (f *Future[T]) complete(value T, err error) error {
	if f.done {
		return ErrAlreadyResolved
	}
	f.done, f.value, f.err = true, value, err
	cbs := f.callbacks
	f.callbacks = nil
	for _, cb := range cbs {
		cb(value, err)
	}
	return nil
}

// OnComplete registers cb to run when the future completes, or runs it
// immediately if it already has.
func (f *Future[T]) OnComplete(cb func(T, error)) {
	if f.done {
		cb(f.value, f.err)
		return
	}
	f.callbacks = append(f.callbacks, cb)
}

// RenderQueue hands work from any goroutine to the render thread.
// Posted tasks run in order when the render thread calls Drain.
type RenderQueue struct {
	mu    sync.Mutex
	tasks []func()
	spare []func()
}

// NewRenderQueue creates an empty queue.
func NewRenderQueue() *RenderQueue {
	return &RenderQueue{}
}

// Post queues fn to run on the render thread. Safe for concurrent use.
func (q *RenderQueue) Post(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

// Len returns the number of queued tasks.
func (q *RenderQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs every queued task on the calling (render) goroutine and
// returns how many ran. Tasks posted while draining run on the next Drain.
func (q *RenderQueue) Drain() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = q.spare[:0]
	q.mu.Unlock()

	for i, fn := range tasks {
		fn()
		tasks[i] = nil
	}

	q.mu.Lock()
	q.spare = tasks[:0]
	q.mu.Unlock()
	return len(tasks)
}
