// Package worker runs blocking I/O off the state machine goroutine
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// ErrClosed is delivered for jobs submitted after Close
var ErrClosed = errors.New("worker pool closed")

// Pool runs jobs in background goroutines, at most size at a time
type Pool struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	lock   sync.Mutex
	closed bool
}

func New(size int64) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{sem: semaphore.NewWeighted(size), ctx: ctx, cancel: cancel}
}

// Go schedules fn and returns a channel that receives its result
// exactly once. The context passed to fn is cancelled on Close.
func (p *Pool) Go(name string, fn func(ctx context.Context) error) <-chan error {
	resultC := make(chan error, 1)

	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		resultC <- ErrClosed
		return resultC
	}
	p.wg.Add(1)
	p.lock.Unlock()

	go func() {
		defer p.wg.Done()

		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			log.Error().Err(err).Str("job", name).Msg("unable to acquire semaphore")
			resultC <- err
			return
		}
		defer p.sem.Release(1)

		err := fn(p.ctx)
		if err != nil {
			log.Error().Err(err).Str("job", name).Msg("background job failed")
		}
		resultC <- err
	}()

	return resultC
}

// Close cancels running jobs and waits for them to return
func (p *Pool) Close() {
	p.lock.Lock()
	p.closed = true
	p.lock.Unlock()

	p.cancel()
	p.wg.Wait()
}

// Drain waits for scheduled jobs without cancelling them, then closes the pool
func (p *Pool) Drain() {
	p.lock.Lock()
	p.closed = true
	p.lock.Unlock()

	p.wg.Wait()
	p.cancel()
}
