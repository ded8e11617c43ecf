package run

import (
	"context"
	"sync"
)

// SessionObserver receives progress of the runs started through a Session,
// tagged with the run id returned by Start.
type SessionObserver interface {
	OnStatusChange(runID uint64, status string)
	OnResult(runID uint64, res Result)
}

// Session serializes what one user sees. Each Start supersedes the previous
// run: its context is cancelled and anything it reports afterwards is
// dropped, so a late response can never overwrite a newer run's output.
//
// Observer callbacks run with the session lock held and must not call Start.
type Session struct {
	runner Runner
	obs    SessionObserver

	mu      sync.Mutex
	current uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewSession creates a session that executes runs with runner.
func NewSession(runner Runner, obs SessionObserver) *Session {
	return &Session{runner: runner, obs: obs}
}

// Start launches a run in the background and returns its id. The request is
// snapshotted before Start returns.
func (s *Session) Start(ctx context.Context, req Request) uint64 {
	req = req.Snapshot()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.current++
	id := s.current
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.runner.Run(runCtx, req, &sessionRun{s: s, id: id})
	}()
	return id
}

// Current returns the id of the most recently started run, 0 if none.
func (s *Session) Current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close cancels the current run and waits for all runs to return.
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

type sessionRun struct {
	s  *Session
	id uint64
}

func (r *sessionRun) OnStatusChange(status string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.id != r.s.current {
		return
	}
	r.s.obs.OnStatusChange(r.id, status)
}

func (r *sessionRun) OnResult(res Result) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.id != r.s.current {
		return
	}
	r.s.obs.OnResult(r.id, res)
}
