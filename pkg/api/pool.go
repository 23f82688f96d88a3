package api

import (
	"context"
	"sync/atomic"
)

// lane is a counting semaphore with statistics.
type lane struct {
	sem    chan struct{}
	queued int64
	active int64
	total  int64
}

func newLane(size int) *lane {
	return &lane{sem: make(chan struct{}, size)}
}

func (l *lane) acquire(ctx context.Context) error {
	atomic.AddInt64(&l.queued, 1)
	defer atomic.AddInt64(&l.queued, -1)

	select {
	case l.sem <- struct{}{}:
		atomic.AddInt64(&l.active, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *lane) tryAcquire() bool {
	select {
	case l.sem <- struct{}{}:
		atomic.AddInt64(&l.active, 1)
		return true
	default:
		return false
	}
}

func (l *lane) release() {
	atomic.AddInt64(&l.active, -1)
	atomic.AddInt64(&l.total, 1)
	<-l.sem
}

// WorkerPool bounds concurrent searches. Single move requests share a wide
// lane; matches, which run many games, share a narrow one.
type WorkerPool struct {
	moves   *lane
	matches *lane
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxMoveWorkers  int // Max concurrent move searches (default: 100)
	MaxMatchWorkers int // Max concurrent matches (default: 4)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxMoveWorkers:  100,
		MaxMatchWorkers: 4,
	}
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	defaults := DefaultPoolConfig()
	if config.MaxMoveWorkers <= 0 {
		config.MaxMoveWorkers = defaults.MaxMoveWorkers
	}
	if config.MaxMatchWorkers <= 0 {
		config.MaxMatchWorkers = defaults.MaxMatchWorkers
	}
	return &WorkerPool{
		moves:   newLane(config.MaxMoveWorkers),
		matches: newLane(config.MaxMatchWorkers),
	}
}

// AcquireMove waits for a move slot or for ctx to be done.
func (p *WorkerPool) AcquireMove(ctx context.Context) error { return p.moves.acquire(ctx) }

// ReleaseMove releases a move slot.
func (p *WorkerPool) ReleaseMove() { p.moves.release() }

// AcquireMatch waits for a match slot or for ctx to be done.
func (p *WorkerPool) AcquireMatch(ctx context.Context) error { return p.matches.acquire(ctx) }

// ReleaseMatch releases a match slot.
func (p *WorkerPool) ReleaseMatch() { p.matches.release() }

// TryAcquireMatch takes a match slot without blocking.
func (p *WorkerPool) TryAcquireMatch() bool { return p.matches.tryAcquire() }

// PoolStats reports pool usage.
type PoolStats struct {
	ActiveMoves   int64 `json:"active_moves"`
	ActiveMatches int64 `json:"active_matches"`
	QueuedMoves   int64 `json:"queued_moves"`
	QueuedMatches int64 `json:"queued_matches"`
	TotalMoves    int64 `json:"total_moves"`
	TotalMatches  int64 `json:"total_matches"`
	MaxMoves      int   `json:"max_moves"`
	MaxMatches    int   `json:"max_matches"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveMoves:   atomic.LoadInt64(&p.moves.active),
		ActiveMatches: atomic.LoadInt64(&p.matches.active),
		QueuedMoves:   atomic.LoadInt64(&p.moves.queued),
		QueuedMatches: atomic.LoadInt64(&p.matches.queued),
		TotalMoves:    atomic.LoadInt64(&p.moves.total),
		TotalMatches:  atomic.LoadInt64(&p.matches.total),
		MaxMoves:      cap(p.moves.sem),
		MaxMatches:    cap(p.matches.sem),
	}
}
