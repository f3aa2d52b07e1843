package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_CallsAfterDelay(t *testing.T) {
	start := time.Now()
	got, err := Run(context.Background(), 20*time.Millisecond, func() (string, error) {
		return "done", nil
	})

	require.NoError(t, err)
	require.Equal(t, "done", got)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	called := false
	_, err := Run(ctx, time.Minute, func() (int, error) {
		called = true
		return 1, nil
	})

	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, 0, func() (struct{}, error) {
		t.Fatal("fn must not run")
		return struct{}{}, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), 0, func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
}
