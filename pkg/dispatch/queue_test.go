package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestWorkerPoolRunsSubmittedTasks(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{WorkerCount: 2, QueueSize: 16}, testLogger())
	require.NoError(t, pool.Start(context.Background()))

	var ran atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := pool.Submit(Task{
			Name: "test.task",
			Run: func(ctx context.Context) {
				ran.Add(1)
				wg.Done()
			},
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int32(10), ran.Load())

	require.NoError(t, pool.Stop(context.Background()))
}

func TestWorkerPoolDrainsBufferedTasksOnStop(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{WorkerCount: 1, QueueSize: 16}, testLogger())
	require.NoError(t, pool.Start(context.Background()))

	var ran atomic.Int32
	for i := 0; i < 8; i++ {
		err := pool.Submit(Task{
			Name: "test.drain",
			Run: func(ctx context.Context) {
				time.Sleep(5 * time.Millisecond)
				ran.Add(1)
			},
		})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))

	assert.Equal(t, int32(8), ran.Load())
}

func TestWorkerPoolRejectsAfterStop(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{WorkerCount: 1, QueueSize: 4}, testLogger())
	require.NoError(t, pool.Start(context.Background()))
	require.NoError(t, pool.Stop(context.Background()))

	err := pool.Submit(Task{Name: "test.late", Run: func(ctx context.Context) {}})
	assert.ErrorIs(t, err, ErrQueueStopped)
}

func TestWorkerPoolRejectsWhenFull(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{WorkerCount: 1, QueueSize: 1}, testLogger())
	require.NoError(t, pool.Start(context.Background()))

	started := make(chan struct{})
	release := make(chan struct{})

	// Occupy the single worker
	require.NoError(t, pool.Submit(Task{
		Name: "test.block",
		Run: func(ctx context.Context) {
			close(started)
			<-release
		},
	}))
	<-started

	// Fill the one buffer slot
	require.NoError(t, pool.Submit(Task{Name: "test.buffered", Run: func(ctx context.Context) {}}))

	err := pool.Submit(Task{Name: "test.overflow", Run: func(ctx context.Context) {}})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(release)
	require.NoError(t, pool.Stop(context.Background()))
}

func TestWorkerPoolRecoversFromPanickingTask(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{WorkerCount: 1, QueueSize: 4}, testLogger())
	require.NoError(t, pool.Start(context.Background()))

	require.NoError(t, pool.Submit(Task{
		Name: "test.panic",
		Run:  func(ctx context.Context) { panic("boom") },
	}))

	done := make(chan struct{})
	require.NoError(t, pool.Submit(Task{
		Name: "test.after",
		Run:  func(ctx context.Context) { close(done) },
	}))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool stopped processing after a panicking task")
	}

	require.NoError(t, pool.Stop(context.Background()))
}

func TestImmediateQueueRunsInline(t *testing.T) {
	queue := NewImmediateQueue()

	ran := false
	err := queue.Submit(Task{
		Name: "test.inline",
		Run:  func(ctx context.Context) { ran = true },
	})

	require.NoError(t, err)
	assert.True(t, ran)
}
