// Package queue provides in-memory job queue management for stage runs.
// One job is one stage execution (fresh or resumed); workers pull jobs
// and drive them through the stage executor.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/codeready-toolchain/inquest/pkg/stage"
)

// Sentinel errors for queue operations.
var (
	// ErrQueueFull indicates the job buffer is at capacity.
	ErrQueueFull = errors.New("queue full")

	// ErrDuplicateSession indicates a job for this session is already queued or running.
	ErrDuplicateSession = errors.New("session already queued")

	// ErrPoolStopped indicates the pool is no longer accepting jobs.
	ErrPoolStopped = errors.New("pool stopped")
)

// JobStatus tracks a job through its lifecycle.
type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusFinished JobStatus = "finished"
)

// Job is one unit of work: run (or resume) a stage for a session.
type Job struct {
	Input stage.Input

	// Prior is non-nil to resume a paused stage run.
	Prior *stage.Result
}

// JobRecord tracks a submitted job. Result and Err are valid only after
// Done is closed.
type JobRecord struct {
	Job Job

	mu       sync.RWMutex
	status   JobStatus
	result   *stage.Result
	err      error
	started  time.Time
	finished time.Time

	// Done is closed when the job reaches a terminal state.
	Done chan struct{}
}

func newJobRecord(job Job) *JobRecord {
	return &JobRecord{
		Job:    job,
		status: JobStatusQueued,
		Done:   make(chan struct{}),
	}
}

// Status returns the current job status.
func (r *JobRecord) Status() JobStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Result returns the stage result and error after the job finishes.
func (r *JobRecord) Result() (*stage.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result, r.err
}

// Duration returns the job's run time, or zero if it has not finished.
func (r *JobRecord) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.finished.IsZero() {
		return 0
	}
	return r.finished.Sub(r.started)
}

func (r *JobRecord) markRunning() {
	r.mu.Lock()
	r.status = JobStatusRunning
	r.started = time.Now()
	r.mu.Unlock()
}

func (r *JobRecord) markFinished(result *stage.Result, err error) {
	r.mu.Lock()
	r.status = JobStatusFinished
	r.result = result
	r.err = err
	r.finished = time.Now()
	r.mu.Unlock()
	close(r.Done)
}

// StageRunner is the interface workers use to execute jobs.
// *stage.Executor satisfies it; tests substitute their own.
type StageRunner interface {
	Run(ctx context.Context, input stage.Input) (*stage.Result, error)
	Resume(ctx context.Context, input stage.Input, prior *stage.Result) (*stage.Result, error)
}

// PoolHealth contains health information for the worker pool.
type PoolHealth struct {
	ActiveWorkers  int `json:"active_workers"`
	ActiveSessions int `json:"active_sessions"`
	QueueDepth     int `json:"queue_depth"`
}
