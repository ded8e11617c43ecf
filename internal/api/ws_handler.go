package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gsarma/runbox/internal/code"
	"github.com/gsarma/runbox/internal/run"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Socket message types.
const (
	msgStatus = "status"
	msgResult = "result"
	msgError  = "error"
)

type socketMessage struct {
	Type   string      `json:"type"`
	RunID  uint64      `json:"run_id,omitempty"`
	Status string      `json:"status,omitempty"`
	Result *run.Result `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// socketObserver forwards the current run's progress to the writer.
type socketObserver struct {
	ctx context.Context
	out chan<- socketMessage
}

func (o socketObserver) send(m socketMessage) {
	select {
	case o.out <- m:
	case <-o.ctx.Done():
	}
}

func (o socketObserver) OnStatusChange(runID uint64, s string) {
	o.send(socketMessage{Type: msgStatus, RunID: runID, Status: s})
}

func (o socketObserver) OnResult(runID uint64, res run.Result) {
	o.send(socketMessage{Type: msgResult, RunID: runID, Result: &res})
}

// RunSocket serves an interactive session. Every message received starts a
// new run that supersedes the previous one; only the latest run reports.
func (h *Handler) RunSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade", zap.Error(err))
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan socketMessage, 64)
	sess := run.NewSession(h.runner, socketObserver{ctx: ctx, out: out})

	go h.writeLoop(ctx, cancel, conn, out)
	h.readLoop(ctx, conn, sess, out)

	cancel()
	sess.Close()
	conn.Close()
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, sess *run.Session, out chan<- socketMessage) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		var p code.JobPayload
		if err := conn.ReadJSON(&p); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("ws read", zap.Error(err))
			}
			return
		}
		req, err := newRequest(p)
		if err != nil {
			select {
			case out <- socketMessage{Type: msgError, Error: err.Error()}:
			case <-ctx.Done():
				return
			}
			continue
		}
		id := sess.Start(ctx, req)
		h.logger.Debug("ws run started", zap.Uint64("runID", id), zap.Int("languageID", p.LanguageID))
	}
}

func (h *Handler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan socketMessage) {
	defer cancel()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				h.logger.Debug("ws write", zap.Error(err))
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
