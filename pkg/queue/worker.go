package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeready-toolchain/inquest/pkg/stage"
)

// sessionRegistry is the subset of WorkerPool used by workers for
// cancellation bookkeeping.
type sessionRegistry interface {
	registerSession(sessionID string, cancel context.CancelFunc)
	unregisterSession(sessionID string)
}

// worker drains the job channel and runs jobs through the stage runner.
type worker struct {
	id     string
	runner StageRunner
	pool   sessionRegistry
}

func newWorker(index int, runner StageRunner, pool sessionRegistry) *worker {
	return &worker{
		id:     fmt.Sprintf("worker-%d", index),
		runner: runner,
		pool:   pool,
	}
}

// run is the main worker loop. Exits when the stop channel closes or the
// context is cancelled; the current job always finishes first.
func (w *worker) run(ctx context.Context, jobs <-chan *JobRecord, stopCh <-chan struct{}) {
	log := slog.With("worker_id", w.id)
	log.Info("Worker started")

	for {
		select {
		case <-stopCh:
			log.Info("Worker shutting down")
			return
		case <-ctx.Done():
			log.Info("Context cancelled, worker shutting down")
			return
		case record := <-jobs:
			w.process(ctx, record, log)
		}
	}
}

// process runs one job to completion.
func (w *worker) process(ctx context.Context, record *JobRecord, log *slog.Logger) {
	sessionID := record.Job.Input.SessionID
	log = log.With("session_id", sessionID, "stage_name", record.Job.Input.StageName)

	// Per-job cancellable context so individual sessions can be cancelled
	// without touching the pool.
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.pool.registerSession(sessionID, cancel)
	defer w.pool.unregisterSession(sessionID)

	record.markRunning()
	log.Info("Processing job", "resume", record.Job.Prior != nil)

	var result *stage.Result
	var err error
	if record.Job.Prior != nil {
		result, err = w.runner.Resume(jobCtx, record.Job.Input, record.Job.Prior)
	} else {
		result, err = w.runner.Run(jobCtx, record.Job.Input)
	}

	record.markFinished(result, err)

	if err != nil {
		log.Error("Job failed to start", "error", err)
		return
	}
	log.Info("Job finished",
		"status", string(result.Status),
		"duration", record.Duration())
}
