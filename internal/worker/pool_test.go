package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsEveryJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewWorkerPool(3)
	pool.Start(ctx)

	var done atomic.Int32
	for i := 0; i < 20; i++ {
		fail := i%5 == 0
		require.NoError(t, pool.Submit(ctx, func(context.Context) error {
			done.Add(1)
			if fail {
				return errors.New("boom")
			}
			return nil
		}))
	}

	pool.Stop()
	require.Equal(t, int32(20), done.Load())
}

func TestWorkerPool_SubmitWaitsForCapacity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewWorkerPool(1)
	release := make(chan struct{})
	pool.Start(ctx)

	// one running job plus a full buffer of two
	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Submit(ctx, func(context.Context) error {
			<-release
			return nil
		}))
	}

	submitCtx, submitCancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer submitCancel()
	err := pool.Submit(submitCtx, func(context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	pool.Stop()
}

func TestNewWorkerPool_MinimumOneWorker(t *testing.T) {
	pool := NewWorkerPool(0)
	require.Equal(t, 1, pool.workerCount)
}
