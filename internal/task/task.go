// Package task runs simulated long-running work: a delay that can be
// cancelled, followed by the real effect.
package task

import (
	"context"
	"time"
)

// Run waits for delay and then calls fn. If ctx is done first, fn is not
// called and ctx.Err() is returned.
func Run[T any](ctx context.Context, delay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if err := Sleep(ctx, delay); err != nil {
		return zero, err
	}
	return fn()
}

// Sleep pauses for delay or until ctx is done
func Sleep(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
