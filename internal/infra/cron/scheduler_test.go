package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsJobsUntilStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, time.Second, nil)

	var runs atomic.Int32
	require.NoError(t, s.Every("@every 1s", "tick", func(context.Context) error {
		runs.Add(1)
		return errors.New("keeps going")
	}))
	require.Error(t, s.Every("not a spec", "bad", func(context.Context) error { return nil }))

	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
