package download

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// WorkFunc is the signature for async work.
type WorkFunc func(ctx context.Context) error

// Queue manages a batch of concurrent async work items. Every
// started item runs in its own goroutine, gated by a semaphore.
type Queue struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	sem      chan struct{}
	shutdown atomic.Bool
	errs     []error
}

// NewQueue creates a Queue with the given concurrency limit.
// If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{}
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}
	return q
}

// Wait blocks until all work in the queue completes.
// Returns all errors joined via errors.Join.
func (g *Queue) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}

// Shutdown prevents queued work that has not acquired a slot yet from executing.
func (g *Queue) Shutdown() {
	g.shutdown.Store(true)
}

// Start launches fn in a new goroutine managed by the queue
// and returns a Result for tracking the individual item.
// fn only runs once a semaphore slot is free; if ctx ends
// first, the item finishes with ctx.Err() without running.
func (g *Queue) Start(ctx context.Context, fn WorkFunc) *Result {
	ctx, cancel := context.WithCancel(ctx)
	r := &Result{
		done:   make(chan struct{}),
		cancel: cancel,
		group:  g,
	}

	g.wg.Add(1)
	go func() {
		defer func() {
			cancel()
			close(r.done)
			g.wg.Done()
		}()

		if g.sem != nil {
			select {
			case g.sem <- struct{}{}:
				defer func() {
					<-g.sem
				}()
			case <-ctx.Done():
				r.err = ctx.Err()
				g.recordErr(r.err)
				return
			}
		}

		if g.shutdown.Load() {
			r.err = ErrQueueShutdown
			g.recordErr(r.err)
			return
		}

		r.err = fn(ctx)
		if r.err != nil {
			g.recordErr(r.err)
		}
	}()

	return r
}
