package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/gsarma/runbox/internal/code"
	"github.com/gsarma/runbox/internal/run"
	"github.com/gsarma/runbox/internal/store"
)

// ExecuteJob runs a queued code.execute job and stores its result.
// It implements worker.JobExecutor. Only transport failures and runs cut
// short by shutdown are returned, so that the worker retries them; every
// other result is final.
func (h *Handler) ExecuteJob(ctx context.Context, jobID uuid.UUID, jobType string, payload json.RawMessage) error {
	if jobType != code.JobType {
		return fmt.Errorf("unknown job type: %s", jobType)
	}
	var p code.JobPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid code job payload: %w", err)
	}
	req, err := newRequest(p)
	if err != nil {
		return err
	}

	runID := jobID.String()
	res := h.runner.Run(ctx, req, run.ObserverFuncs{
		Status: func(s string) { h.setStatus(ctx, runID, s) },
	})

	// Results of runs interrupted by shutdown are recorded too.
	storeCtx := context.WithoutCancel(ctx)
	if _, err := h.queries.UpsertCodeExecution(storeCtx, executionParams(jobID, req.Language.ID, res)); err != nil {
		return fmt.Errorf("store execution: %w", err)
	}
	if res.Outcome != run.OutcomeError {
		return nil
	}
	switch res.ErrorClass {
	case run.ClassTransport, run.ClassCanceled:
		h.markRequeued(storeCtx, jobID)
		return res.Err
	}
	return nil
}

// markRequeued resets the board to Queued when the worker will try the job
// again. The last attempt keeps its terminal status.
func (h *Handler) markRequeued(ctx context.Context, jobID uuid.UUID) {
	job, err := h.queries.GetJob(ctx, jobID)
	if err != nil {
		h.logger.Warn("load job for requeue status", zap.Stringer("jobID", jobID), zap.Error(err))
		return
	}
	if job.Attempt < job.MaxAttempts {
		h.setStatus(ctx, jobID.String(), run.StatusQueued)
	}
}

func executionParams(jobID uuid.UUID, languageID int, res run.Result) store.UpsertCodeExecutionParams {
	p := store.UpsertCodeExecutionParams{
		JobID:      jobID,
		LanguageID: int32(languageID),
		Token:      optText(res.Token),
		State:      res.State.String(),
		Outcome:    string(res.Outcome),
		ErrorClass: optText(string(res.ErrorClass)),
		Output:     res.Output,
		Polls:      int32(res.Polls),
		DurationMs: res.Duration.Milliseconds(),
	}
	if res.Status != nil {
		p.StatusID = pgtype.Int4{Int32: int32(res.Status.ID), Valid: true}
		p.StatusDescription = optText(res.Status.Description)
	}
	if res.Time != nil {
		p.Time = pgtype.Text{String: *res.Time, Valid: true}
	}
	if res.Memory != nil {
		p.Memory = pgtype.Int4{Int32: int32(*res.Memory), Valid: true}
	}
	return p
}

func optText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func optString(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

type jobView struct {
	ID          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	Attempt     int32           `json:"attempt"`
	MaxAttempts int32           `json:"max_attempts"`
	Payload     json.RawMessage `json:"payload"`
	Error       *string         `json:"error,omitempty"`
	RunAt       time.Time       `json:"run_at"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func newJobView(j store.Job) jobView {
	return jobView{
		ID:          j.ID,
		Status:      j.Status,
		Attempt:     j.Attempt,
		MaxAttempts: j.MaxAttempts,
		Payload:     json.RawMessage(j.Payload),
		Error:       optString(j.Error),
		RunAt:       j.RunAt,
		CreatedAt:   j.CreatedAt,
		CompletedAt: j.CompletedAt,
	}
}

type executionView struct {
	LanguageID int                    `json:"language_id"`
	State      string                 `json:"state"`
	Outcome    string                 `json:"outcome"`
	Output     string                 `json:"output"`
	ErrorClass *string                `json:"error_class,omitempty"`
	Status     *code.SubmissionStatus `json:"status,omitempty"`
	Token      *string                `json:"token,omitempty"`
	Time       *string                `json:"time,omitempty"`
	Memory     *int                   `json:"memory,omitempty"`
	Polls      int32                  `json:"polls"`
	DurationMs int64                  `json:"duration_ms"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

func newExecutionView(e store.CodeExecution) executionView {
	v := executionView{
		LanguageID: int(e.LanguageID),
		State:      e.State,
		Outcome:    e.Outcome,
		Output:     e.Output,
		ErrorClass: optString(e.ErrorClass),
		Token:      optString(e.Token),
		Time:       optString(e.Time),
		Polls:      e.Polls,
		DurationMs: e.DurationMs,
		UpdatedAt:  e.UpdatedAt,
	}
	if e.StatusID.Valid {
		v.Status = &code.SubmissionStatus{ID: int(e.StatusID.Int32), Description: e.StatusDescription.String}
	}
	if e.Memory.Valid {
		m := int(e.Memory.Int32)
		v.Memory = &m
	}
	return v
}

// terminalStatus is the status string the run ended with.
func (v executionView) terminalStatus() string {
	if v.Outcome == string(run.OutcomeError) || v.Status == nil {
		return run.StatusFailed
	}
	return v.Status.String()
}
