package runbox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RunsService submits programs and looks up their results.
type RunsService struct {
	c *Client
}

// Create queues a run. The returned job id is used with Get, Status and Wait.
func (s *RunsService) Create(ctx context.Context, req RunRequest) (*QueuedRun, error) {
	return doRequest[QueuedRun](ctx, s.c, http.MethodPost, "/runs", req, http.StatusAccepted)
}

// Execute runs a program and blocks until its result is known.
func (s *RunsService) Execute(ctx context.Context, req RunRequest) (*SyncRun, error) {
	return doRequest[SyncRun](ctx, s.c, http.MethodPost, "/runs?sync=true", req, http.StatusOK)
}

// Get returns a queued run's job and, once an attempt finished, its execution.
func (s *RunsService) Get(ctx context.Context, jobID string) (*Run, error) {
	path := fmt.Sprintf("/runs/%s", url.PathEscape(jobID))
	return doRequest[Run](ctx, s.c, http.MethodGet, path, nil, http.StatusOK)
}

// Status returns the live status text of a run, e.g. "Running...".
func (s *RunsService) Status(ctx context.Context, runID string) (*RunStatus, error) {
	path := fmt.Sprintf("/runs/%s/status", url.PathEscape(runID))
	return doRequest[RunStatus](ctx, s.c, http.MethodGet, path, nil, http.StatusOK)
}

// Wait polls Get every interval until the job is completed or failed.
func (s *RunsService) Wait(ctx context.Context, jobID string, interval time.Duration) (*Run, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		r, err := s.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if r.Job.Done() {
			return r, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
