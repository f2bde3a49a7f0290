package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueRunsOnWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := New(nil, 2, 8)
	svc.Start(ctx)

	var ran atomic.Int32
	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		require.True(t, svc.Enqueue("test", func(context.Context) (any, error) {
			ran.Add(1)
			done <- struct{}{}
			return nil, nil
		}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}
	cancel()
	svc.Wait()
	assert.Equal(t, int32(3), ran.Load())
}

func TestEnqueueFullQueueDrops(t *testing.T) {
	svc := New(nil, 1, 1)
	noop := func(context.Context) (any, error) { return nil, nil }
	assert.True(t, svc.Enqueue("a", noop))
	assert.False(t, svc.Enqueue("b", noop))
}

func TestShutdownDrainsQueue(t *testing.T) {
	svc := New(nil, 1, 4)
	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		svc.Enqueue("drain", func(context.Context) (any, error) {
			ran.Add(1)
			return nil, nil
		})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Start(ctx)
	svc.Wait()
	assert.Equal(t, int32(3), ran.Load())
}

func TestRunNowRecoversPanic(t *testing.T) {
	svc := New(nil, 1, 1)
	_, err := svc.RunNow(context.Background(), "boom", func(context.Context) (any, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errPanicked))

	out, err := svc.RunNow(context.Background(), "ok", func(context.Context) (any, error) {
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
}
