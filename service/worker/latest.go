package worker

import (
	"context"
	"sync"
)

// Latest runs fn on the pool for offered values, one at a time.
// Values offered while a run is in flight are coalesced, only the
// most recent one is handled next, so writes land in offer order.
type Latest[T any] struct {
	pool *Pool
	name string
	fn   func(context.Context, T) error

	lock    sync.Mutex
	pending *T
	running bool
	idleC   chan struct{} // closed when nothing is pending or running
}

func NewLatest[T any](pool *Pool, name string, fn func(context.Context, T) error) *Latest[T] {
	idle := make(chan struct{})
	close(idle)
	return &Latest[T]{pool: pool, name: name, fn: fn, idleC: idle}
}

// Offer schedules v, replacing any value not yet handled. It never blocks.
func (l *Latest[T]) Offer(v T) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.pending = &v
	if l.running {
		return
	}

	l.running = true
	l.idleC = make(chan struct{})
	l.schedule()
}

// schedule must be called with lock held and a pending value
func (l *Latest[T]) schedule() {
	v := *l.pending
	l.pending = nil

	resultC := l.pool.Go(l.name, func(ctx context.Context) error {
		return l.fn(ctx, v)
	})

	go func() {
		<-resultC

		l.lock.Lock()
		defer l.lock.Unlock()

		if l.pending != nil {
			l.schedule()
			return
		}
		l.running = false
		close(l.idleC)
	}()
}

// Wait blocks until every offered value was handled or ctx is done
func (l *Latest[T]) Wait(ctx context.Context) error {
	for {
		l.lock.Lock()
		idle := l.idleC
		l.lock.Unlock()

		select {
		case <-idle:
			l.lock.Lock()
			done := !l.running
			l.lock.Unlock()
			if done {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
