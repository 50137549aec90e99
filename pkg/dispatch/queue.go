// Package dispatch runs ledger sync tasks after local commits. Tasks are
// enqueued during request handling and executed by a worker pool; nothing
// here ever blocks or fails the caller's request.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
)

var (
	// ErrQueueStopped is returned when the pool is not accepting tasks
	ErrQueueStopped = errors.New("dispatch queue stopped")

	// ErrQueueFull is returned when the task buffer is at capacity
	ErrQueueFull = errors.New("dispatch queue full")
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 4

	// DefaultQueueSize is the default task buffer capacity
	DefaultQueueSize = 256
)

// Task is one unit of ledger sync work. Run must record its own outcome;
// the pool only executes it.
type Task struct {
	Name string
	Run  func(ctx context.Context)
}

// TaskQueue accepts sync tasks for asynchronous execution.
type TaskQueue interface {
	Submit(task Task) error
}

// PoolConfig holds worker pool configuration
type PoolConfig struct {
	WorkerCount int
	QueueSize   int
}

// DefaultPoolConfig returns the default worker pool configuration
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount: DefaultWorkerCount,
		QueueSize:   DefaultQueueSize,
	}
}

// WorkerPool executes tasks on a fixed set of workers. Tasks run with the
// pool's base context, not the submitting request's: an accepted task runs
// to completion even after its request finishes. Stop drains the buffer
// before returning.
type WorkerPool struct {
	config PoolConfig
	logger ectologger.Logger

	tasksCh  chan Task
	stopCh   chan struct{}
	stoppedC chan struct{}

	running bool
	mu      sync.RWMutex
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(config PoolConfig, logger ectologger.Logger) *WorkerPool {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultWorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}

	return &WorkerPool{
		config:   config,
		logger:   logger,
		tasksCh:  make(chan Task, config.QueueSize),
		stopCh:   make(chan struct{}),
		stoppedC: make(chan struct{}),
	}
}

// Start starts the worker pool
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("worker pool already running")
	}
	p.running = true
	p.mu.Unlock()

	p.logger.WithContext(ctx).Infof("Starting sync worker pool: workers=%d queue=%d",
		p.config.WorkerCount, p.config.QueueSize)

	var wg sync.WaitGroup
	for i := 0; i < p.config.WorkerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg, i)
	}

	go func() {
		<-p.stopCh
		close(p.tasksCh)
		wg.Wait()
		close(p.stoppedC)
	}()

	return nil
}

// Stop stops the pool gracefully, draining buffered tasks first.
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.mu.Unlock()

	p.logger.WithContext(ctx).Info("Stopping sync worker pool...")

	close(p.stopCh)

	select {
	case <-p.stoppedC:
		p.logger.WithContext(ctx).Info("Sync worker pool stopped gracefully")
	case <-ctx.Done():
		p.logger.WithContext(ctx).Warn("Sync worker pool shutdown timed out")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the pool is accepting tasks
func (p *WorkerPool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Depth returns the number of buffered tasks
func (p *WorkerPool) Depth() int {
	return len(p.tasksCh)
}

// Submit enqueues a task without blocking. A full buffer is an error so the
// caller can record the failure instead of waiting.
func (p *WorkerPool) Submit(task Task) error {
	// Holding the read lock through the send keeps Stop from closing the
	// channel between the running check and the send.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		return ErrQueueStopped
	}

	select {
	case p.tasksCh <- task:
		metrics.SyncQueueDepth.Set(float64(len(p.tasksCh)))
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *WorkerPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()

	p.logger.WithContext(ctx).Debugf("Sync worker %d started", id)

	for task := range p.tasksCh {
		metrics.SyncQueueDepth.Set(float64(len(p.tasksCh)))
		p.runTask(ctx, task)
	}

	p.logger.WithContext(ctx).Debugf("Sync worker %d stopped", id)
}

func (p *WorkerPool) runTask(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithContext(ctx).Errorf("sync task %s panicked: %v", task.Name, r)
		}
	}()

	start := time.Now()
	task.Run(ctx)
	p.logger.WithContext(ctx).Debugf("sync task %s finished in %s", task.Name, time.Since(start))
}

// ImmediateQueue runs tasks synchronously on the caller's goroutine. Used
// in tests and single-process tooling where asynchrony only obscures
// ordering.
type ImmediateQueue struct{}

func NewImmediateQueue() *ImmediateQueue {
	return &ImmediateQueue{}
}

func (q *ImmediateQueue) Submit(task Task) error {
	task.Run(context.Background())
	return nil
}
