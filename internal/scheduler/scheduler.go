// Package scheduler implements BoundedScheduler: a fixed-concurrency
// window over a stream of tasks, grounded on the weighted-semaphore
// pattern used for crawl concurrency in the teacher's sibling package
// (golang.org/x/sync/semaphore, datasrcs/sources.go's maxCrawlSem).
package scheduler

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Task is a unit of scheduled work. It returns a result and an error; an
// error never halts the stream, it is just attached to the Result (§4.7).
type Task func(ctx context.Context) (interface{}, error)

// Result pairs a task's outcome with its originating index, for callers
// that want to correlate results back to their submitted task.
type Result struct {
	Index int
	Value interface{}
	Err   error
}

// Scheduler runs tasks with at most Window concurrently in flight,
// yielding results in completion order rather than submission order.
type Scheduler struct {
	Window   int
	progress func(done, total int)
}

// New returns a Scheduler with the given concurrency window. Typical
// values are 1000 for DNS work and 100 for HTTP (§4.7).
func New(window int) *Scheduler {
	if window <= 0 {
		window = 1
	}
	return &Scheduler{Window: window}
}

// OnProgress registers a callback invoked after each task completes,
// reporting how many of the total have finished — the progress count
// surfaced to the logging collaborator per §4.7.
func (s *Scheduler) OnProgress(fn func(done, total int)) {
	s.progress = fn
}

// Run submits every task in tasks, enforcing the concurrency window, and
// returns a channel yielding one Result per task as it completes. The
// channel is closed once every task has completed. A task that panics or
// returns an error is reported as a completed Result; it does not stop
// the remaining tasks from running (§4.7).
func (s *Scheduler) Run(ctx context.Context, tasks []Task) <-chan Result {
	out := make(chan Result, len(tasks))
	if len(tasks) == 0 {
		close(out)
		return out
	}

	sem := semaphore.NewWeighted(int64(s.Window))
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0
	total := len(tasks)

	for i, task := range tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled: report the remaining tasks as errored
			// without running them, preserving one Result per task.
			out <- Result{Index: i, Err: ctx.Err()}
			continue
		}
		wg.Add(1)
		go func(idx int, t Task) {
			defer wg.Done()
			defer sem.Release(1)

			value, err := s.runOne(ctx, t)
			out <- Result{Index: idx, Value: value, Err: err}

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if s.progress != nil {
				s.progress(n, total)
			}
		}(i, task)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// runOne recovers a panicking task into an error result so a single
// misbehaving task cannot take down the scheduler's goroutine pool.
func (s *Scheduler) runOne(ctx context.Context, t Task) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{r}
		}
	}()
	return t(ctx)
}

type panicError struct {
	v interface{}
}

func (p panicError) Error() string {
	return "scheduler: task panicked"
}
