package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolBasic(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxMoveWorkers: 2, MaxMatchWorkers: 1})

	require.NoError(t, pool.AcquireMove(context.Background()))
	assert.Equal(t, int64(1), pool.Stats().ActiveMoves)

	pool.ReleaseMove()
	stats := pool.Stats()
	assert.Equal(t, int64(0), stats.ActiveMoves)
	assert.Equal(t, int64(1), stats.TotalMoves)
}

func TestWorkerPoolMatchLane(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxMoveWorkers: 10, MaxMatchWorkers: 2})

	require.NoError(t, pool.AcquireMatch(context.Background()))
	require.True(t, pool.TryAcquireMatch())
	assert.Equal(t, int64(2), pool.Stats().ActiveMatches)

	// Lane is full
	assert.False(t, pool.TryAcquireMatch())

	pool.ReleaseMatch()
	pool.ReleaseMatch()
	assert.Equal(t, int64(2), pool.Stats().TotalMatches)
}

func TestWorkerPoolContextCancellation(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxMoveWorkers: 1, MaxMatchWorkers: 1})
	require.NoError(t, pool.AcquireMove(context.Background()))
	defer pool.ReleaseMove()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, pool.AcquireMove(ctx))

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.NoError(t, pool.AcquireMatch(context.Background()))
	assert.Equal(t, context.DeadlineExceeded, pool.AcquireMatch(ctx))
	pool.ReleaseMatch()
}

func TestWorkerPoolConcurrency(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxMoveWorkers: 5, MaxMatchWorkers: 2})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !assert.NoError(t, pool.AcquireMove(context.Background())) {
				return
			}
			assert.LessOrEqual(t, pool.Stats().ActiveMoves, int64(5))
			time.Sleep(10 * time.Millisecond)
			pool.ReleaseMove()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), pool.Stats().TotalMoves)
}

func TestWorkerPoolDefaults(t *testing.T) {
	stats := NewWorkerPool(PoolConfig{}).Stats()
	assert.Equal(t, 100, stats.MaxMoves)
	assert.Equal(t, 4, stats.MaxMatches)

	stats = NewWorkerPool(PoolConfig{MaxMoveWorkers: 10, MaxMatchWorkers: 3}).Stats()
	assert.Equal(t, 10, stats.MaxMoves)
	assert.Equal(t, 3, stats.MaxMatches)
}
