package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gsarma/runbox/internal/store"
)

// Job statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// JobExecutor executes a single job by type and payload. A returned error
// makes the job eligible for another attempt.
type JobExecutor interface {
	ExecuteJob(ctx context.Context, jobID uuid.UUID, jobType string, payload json.RawMessage) error
}

// Config controls the polling loops.
type Config struct {
	Concurrency int
	Tick        time.Duration
	Logger      *zap.Logger
}

// Worker polls the database for pending jobs and executes them concurrently.
type Worker struct {
	store       store.Querier
	executor    JobExecutor
	concurrency int
	tick        time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

func New(q store.Querier, executor JobExecutor, cfg Config) *Worker {
	w := &Worker{
		store:       q,
		executor:    executor,
		concurrency: cfg.Concurrency,
		tick:        cfg.Tick,
		logger:      cfg.Logger,
		now:         time.Now,
	}
	if w.concurrency <= 0 {
		w.concurrency = 1
	}
	if w.tick <= 0 {
		w.tick = 500 * time.Millisecond
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Start spawns concurrency goroutines that each poll for jobs every tick.
// It blocks until ctx is cancelled and every loop has returned.
func (w *Worker) Start(ctx context.Context) {
	var g errgroup.Group
	for i := 0; i < w.concurrency; i++ {
		logger := w.logger.With(zap.Int("loop", i))
		g.Go(func() error {
			w.loop(ctx, logger)
			return nil
		})
	}
	g.Wait()
}

func (w *Worker) loop(ctx context.Context, logger *zap.Logger) {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processNext(ctx, logger)
		}
	}
}

func (w *Worker) processNext(ctx context.Context, logger *zap.Logger) {
	job, err := w.store.ClaimNextJob(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || ctx.Err() != nil {
			return
		}
		logger.Error("claim job", zap.Error(err))
		return
	}
	logger = logger.With(zap.Stringer("jobID", job.ID), zap.String("jobType", job.JobType),
		zap.Int32("attempt", job.Attempt))
	logger.Debug("job claimed")

	execErr := w.executor.ExecuteJob(ctx, job.ID, job.JobType, json.RawMessage(job.Payload))

	now := w.now()
	params := store.UpdateJobStatusParams{ID: job.ID, RunAt: job.RunAt}
	switch {
	case execErr == nil:
		params.Status = StatusCompleted
		params.CompletedAt = &now
	case job.Attempt < job.MaxAttempts:
		params.Status = StatusPending
		params.Error = pgtype.Text{String: execErr.Error(), Valid: true}
		params.RunAt = now.Add(Backoff(job.Attempt))
	default:
		params.Status = StatusFailed
		params.Error = pgtype.Text{String: execErr.Error(), Valid: true}
	}
	jobsTotal.WithLabelValues(params.Status).Inc()

	if execErr != nil {
		logger.Warn("job attempt failed", zap.String("next", params.Status),
			zap.Time("runAt", params.RunAt), zap.Error(execErr))
	} else {
		logger.Info("job completed")
	}

	// The job outcome must be recorded even when shutdown cancelled ctx.
	if _, err := w.store.UpdateJobStatus(context.WithoutCancel(ctx), params); err != nil {
		logger.Error("update job status", zap.String("status", params.Status), zap.Error(err))
	}
}

// Backoff is the delay before retrying a job whose attempt-th try failed.
func Backoff(attempt int32) time.Duration {
	return time.Duration(int64(1)<<uint(attempt)) * 10 * time.Second
}
