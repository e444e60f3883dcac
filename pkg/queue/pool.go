package queue

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultQueueCapacity bounds the number of queued-but-unstarted jobs.
const DefaultQueueCapacity = 64

// WorkerPool manages a fixed set of workers draining the job queue.
type WorkerPool struct {
	workerCount int
	runner      StageRunner
	jobs        chan *JobRecord
	stopCh      chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup

	// Session cancel registry: session_id → cancel function
	mu      sync.RWMutex
	records map[string]*JobRecord
	cancels map[string]context.CancelFunc
	started bool
}

// NewWorkerPool creates a pool with the given concurrency.
func NewWorkerPool(runner StageRunner, workerCount int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
		runner:      runner,
		jobs:        make(chan *JobRecord, DefaultQueueCapacity),
		stopCh:      make(chan struct{}),
		records:     make(map[string]*JobRecord),
		cancels:     make(map[string]context.CancelFunc),
	}
}

// Start spawns the worker goroutines. Safe to call multiple times;
// subsequent calls are no-ops.
func (p *WorkerPool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		slog.Warn("Worker pool already started, ignoring duplicate Start call")
		return
	}
	p.started = true
	p.mu.Unlock()

	slog.Info("Starting worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		w := newWorker(i, p.runner, p)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run(ctx, p.jobs, p.stopCh)
		}()
	}
}

// Stop signals all workers to stop and waits for them to finish.
// Workers finish their current jobs before exiting.
func (p *WorkerPool) Stop() {
	slog.Info("Stopping worker pool gracefully")
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
	slog.Info("Worker pool stopped")
}

// Submit enqueues a job. The session must not already be queued or running;
// a finished record for the same session is replaced (resume path).
func (p *WorkerPool) Submit(job Job) (*JobRecord, error) {
	select {
	case <-p.stopCh:
		return nil, ErrPoolStopped
	default:
	}

	record := newJobRecord(job)

	p.mu.Lock()
	if existing, ok := p.records[job.Input.SessionID]; ok && existing.Status() != JobStatusFinished {
		p.mu.Unlock()
		return nil, ErrDuplicateSession
	}
	p.records[job.Input.SessionID] = record
	p.mu.Unlock()

	select {
	case p.jobs <- record:
		return record, nil
	default:
		p.mu.Lock()
		delete(p.records, job.Input.SessionID)
		p.mu.Unlock()
		return nil, ErrQueueFull
	}
}

// Get returns the job record for a session, if any.
func (p *WorkerPool) Get(sessionID string) (*JobRecord, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	record, ok := p.records[sessionID]
	return record, ok
}

// CancelSession triggers context cancellation for a running session.
// Returns true if the session was found and cancelled.
func (p *WorkerPool) CancelSession(sessionID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if cancel, ok := p.cancels[sessionID]; ok {
		cancel()
		return true
	}
	return false
}

// Health returns the current pool health snapshot.
func (p *WorkerPool) Health() PoolHealth {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PoolHealth{
		ActiveWorkers:  p.workerCount,
		ActiveSessions: len(p.cancels),
		QueueDepth:     len(p.jobs),
	}
}

// registerSession stores a cancel function for manual cancellation.
func (p *WorkerPool) registerSession(sessionID string, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancels[sessionID] = cancel
}

// unregisterSession removes the cancel function when processing ends.
func (p *WorkerPool) unregisterSession(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cancels, sessionID)
}
