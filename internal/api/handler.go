package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gsarma/runbox/internal/code"
	"github.com/gsarma/runbox/internal/run"
	"github.com/gsarma/runbox/internal/store"
)

// StatusBoard records the latest user-visible status of each run.
type StatusBoard interface {
	Set(ctx context.Context, runID, status string) error
	Get(ctx context.Context, runID string) (string, error)
}

// Handler serves the runbox REST and WebSocket API. It also executes queued
// jobs for the worker.
type Handler struct {
	queries     store.Querier
	runner      run.Runner
	board       StatusBoard
	logger      *zap.Logger
	maxAttempts int32
}

// Deps are the collaborators of a Handler. Queries and Board may be nil: without
// Queries only synchronous runs are served, without Board statuses are not
// recorded.
type Deps struct {
	Queries     store.Querier
	Runner      run.Runner
	Board       StatusBoard
	Logger      *zap.Logger
	MaxAttempts int
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		queries:     d.Queries,
		runner:      d.Runner,
		board:       d.Board,
		logger:      d.Logger,
		maxAttempts: int32(d.MaxAttempts),
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.maxAttempts <= 0 {
		h.maxAttempts = 3
	}
	return h
}

// Health reports that the process is serving.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var errUnknownLanguage = errors.New("unknown language")

// newRequest turns a submitted payload into a run request.
func newRequest(p code.JobPayload) (run.Request, error) {
	lang, ok := code.Lookup(p.LanguageID)
	if !ok {
		return run.Request{}, fmt.Errorf("%w: %d", errUnknownLanguage, p.LanguageID)
	}
	return run.Request{
		Language:     lang,
		Source:       p.SourceCode,
		Inputs:       code.InputSet(p.Inputs),
		InputEnabled: p.InputEnabled,
		Stdin:        p.Stdin,
	}, nil
}

// setStatus records status on the board. Failures are logged only: the
// board is advisory.
func (h *Handler) setStatus(ctx context.Context, runID, status string) {
	if h.board == nil {
		return
	}
	if err := h.board.Set(ctx, runID, status); err != nil {
		h.logger.Warn("record run status", zap.String("runID", runID), zap.String("status", status), zap.Error(err))
	}
}
