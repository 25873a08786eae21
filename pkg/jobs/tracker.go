// Package jobs runs background work keyed by an id so it can be deduplicated, canceled and awaited.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrJobRunning = errors.New("a job is already running for this key")
	ErrNoJob      = errors.New("no job is running for this key")
)

type Func func(ctx context.Context) error

// DoneFunc runs after Func returns, still inside the job, with its result.
type DoneFunc func(ctx context.Context, err error)

type Job struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Done is closed once the job and its DoneFunc have returned.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err is only meaningful after Done is closed.
func (j *Job) Err() error { return j.err }

type Tracker struct {
	mu   sync.Mutex
	base context.Context
	jobs map[string]*Job
	wg   sync.WaitGroup
}

// NewTracker derives every job context from base, so canceling base stops all jobs.
func NewTracker(base context.Context) *Tracker {
	if base == nil {
		base = context.Background()
	}
	return &Tracker{
		base: base,
		jobs: make(map[string]*Job),
	}
}

// Start runs fn in a goroutine under key. A second Start for a live key fails with ErrJobRunning.
func (t *Tracker) Start(key string, fn Func, onDone DoneFunc) (*Job, error) {
	t.mu.Lock()
	if _, running := t.jobs[key]; running {
		t.mu.Unlock()
		return nil, ErrJobRunning
	}
	ctx, cancel := context.WithCancel(t.base)
	job := &Job{cancel: cancel, done: make(chan struct{})}
	t.jobs[key] = job
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		defer close(job.done)
		defer t.remove(key, job)
		defer cancel()

		job.err = run(ctx, fn)
		if onDone != nil {
			onDone(ctx, job.err)
		}
	}()
	return job, nil
}

// Run is Start followed by waiting for the job. It is how synchronous flows share the per-key guard.
func (t *Tracker) Run(ctx context.Context, key string, fn Func) error {
	job, err := t.Start(key, fn, nil)
	if err != nil {
		return err
	}
	select {
	case <-job.done:
		return job.err
	case <-ctx.Done():
		job.cancel()
		<-job.done
		return ctx.Err()
	}
}

func (t *Tracker) Cancel(key string) error {
	t.mu.Lock()
	job, ok := t.jobs[key]
	t.mu.Unlock()
	if !ok {
		return ErrNoJob
	}
	job.cancel()
	return nil
}

func (t *Tracker) Running(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.jobs[key]
	return ok
}

// Wait blocks until the job under key settles. It returns nil at once when nothing is running.
func (t *Tracker) Wait(key string) error {
	t.mu.Lock()
	job, ok := t.jobs[key]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	<-job.done
	return job.err
}

// Shutdown cancels every job and waits for them or for ctx.
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	for _, job := range t.jobs {
		job.cancel()
	}
	t.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) remove(key string, job *Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.jobs[key] == job {
		delete(t.jobs, key)
	}
}

func run(ctx context.Context, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx)
}
