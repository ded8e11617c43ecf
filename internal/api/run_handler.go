package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/gsarma/runbox/internal/code"
	"github.com/gsarma/runbox/internal/run"
	"github.com/gsarma/runbox/internal/status"
	"github.com/gsarma/runbox/internal/store"
)

// CreateRun queues a code execution job (async by default) or runs immediately with ?sync=true.
//
// Request body:
//
//	{
//	  "language_id":   71,
//	  "source_code":   "print(input())",
//	  "inputs":        ["3", "5"],
//	  "input_enabled": true,
//	  "stdin":         "optional, overrides inputs"
//	}
//
// Async (default): returns 202 {"job_id": "...", "status": "queued"}.
// Sync (?sync=true): returns 200 {"run_id": "...", "result": {...}}.
func (h *Handler) CreateRun(c *gin.Context) {
	var body code.JobPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := newRequest(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	if c.Query("sync") == "true" {
		runID := uuid.NewString()
		res := h.runner.Run(ctx, req, run.ObserverFuncs{
			Status: func(s string) { h.setStatus(ctx, runID, s) },
		})
		c.JSON(http.StatusOK, gin.H{"run_id": runID, "result": res})
		return
	}

	if h.queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "async runs are disabled, use ?sync=true"})
		return
	}
	payloadJSON, _ := json.Marshal(body)
	job, err := h.queries.CreateJob(ctx, store.CreateJobParams{
		JobType:     code.JobType,
		Payload:     payloadJSON,
		MaxAttempts: h.maxAttempts,
	})
	if err != nil {
		h.logger.Error("queue run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue job"})
		return
	}
	h.setStatus(ctx, job.ID.String(), run.StatusQueued)
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "status": "queued"})
}

// GetRun returns a queued run's job row and, once an attempt finished, its
// stored execution.
func (h *Handler) GetRun(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	job, err := h.queries.GetJob(ctx, jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		h.logger.Error("get job", zap.Stringer("jobID", jobID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}

	resp := gin.H{"job": newJobView(job)}
	exec, err := h.queries.GetCodeExecution(ctx, jobID)
	switch {
	case err == nil:
		resp["execution"] = newExecutionView(exec)
	case !errors.Is(err, pgx.ErrNoRows):
		h.logger.Error("get execution", zap.Stringer("jobID", jobID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load execution"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRunStatus returns the live status of a run. Runs whose board entry is
// gone are answered from the job table.
func (h *Handler) GetRunStatus(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if h.board != nil {
		s, err := h.board.Get(ctx, id)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"run_id": id, "status": s})
			return
		}
		if !errors.Is(err, status.ErrNotFound) {
			h.logger.Warn("read run status", zap.String("runID", id), zap.Error(err))
		}
	}

	jobID, err := uuid.Parse(id)
	if err != nil || h.queries == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "status not found"})
		return
	}
	s, err := h.statusFromStore(ctx, jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "status not found"})
		return
	}
	if err != nil {
		h.logger.Error("derive run status", zap.Stringer("jobID", jobID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": id, "status": s})
}

func (h *Handler) statusFromStore(ctx context.Context, jobID uuid.UUID) (string, error) {
	job, err := h.queries.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	switch job.Status {
	case "pending":
		return run.StatusQueued, nil
	case "running":
		return run.StatusRunning, nil
	}
	exec, err := h.queries.GetCodeExecution(ctx, jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return run.StatusFailed, nil
	}
	if err != nil {
		return "", err
	}
	return newExecutionView(exec).terminalStatus(), nil
}

func (h *Handler) jobID(c *gin.Context) (uuid.UUID, bool) {
	if h.queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "async runs are disabled"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return uuid.Nil, false
	}
	return id, true
}
