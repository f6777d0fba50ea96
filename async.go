package weblate

import (
	"context"
	"sync"
)

// taskRunner is the strategy for executing refresh work. The synchronous
// runner executes on the calling goroutine; the asynchronous runner hands
// tasks to a single background worker, which serializes all outbound
// remote calls for one source and avoids request storms.
type taskRunner interface {
	// submit schedules the task. The synchronous runner passes the
	// caller's context and blocks until the task returns; the
	// asynchronous runner substitutes a background context and returns
	// immediately.
	submit(ctx context.Context, task func(ctx context.Context))

	// close stops the runner and waits for in-flight work.
	close()
}

// syncRunner runs tasks inline on the calling goroutine.
type syncRunner struct{}

func (syncRunner) submit(ctx context.Context, task func(ctx context.Context)) {
	task(ctx)
}

func (syncRunner) close() {}

// asyncRunner runs tasks on one background goroutine. Submissions beyond
// the queue capacity are dropped: the cache keeps serving the last
// committed state and the next read schedules the refresh again.
type asyncRunner struct {
	tasks chan func(ctx context.Context)
	done  chan struct{}
	once  sync.Once
}

func newAsyncRunner(capacity int) *asyncRunner {
	r := &asyncRunner{
		tasks: make(chan func(ctx context.Context), capacity),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *asyncRunner) loop() {
	defer close(r.done)
	for task := range r.tasks {
		task(context.Background())
	}
}

func (r *asyncRunner) submit(_ context.Context, task func(ctx context.Context)) {
	select {
	case r.tasks <- task:
	default:
	}
}

func (r *asyncRunner) close() {
	r.once.Do(func() {
		close(r.tasks)
	})
	<-r.done
}

// Verify both strategies implement taskRunner
var (
	_ taskRunner = syncRunner{}
	_ taskRunner = (*asyncRunner)(nil)
)
