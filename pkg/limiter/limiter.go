package limiter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter caps how many tasks run at once. Excess tasks queue and are
// admitted in FIFO order. There is no priority and no way to cancel a task
// other than through its context.
type Limiter struct {
	sem *semaphore.Weighted
}

func New(n int64) *Limiter {
	return &Limiter{sem: semaphore.NewWeighted(n)}
}

// Do waits for a free slot, runs fn, and returns whatever fn returns. If ctx
// is cancelled while waiting, fn never runs and the context error is
// returned instead.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn()
}
