package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsarma/runbox/internal/run"
)

// dialRunSocket connects to a test server. Handlers outlive the test on
// hijacked connections, so h must not log through t.
func dialRunSocket(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(socketURL(t, h, "")+"/runs/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// socketURL serves h behind authToken and returns the ws:// base url.
func socketURL(t *testing.T, h *Handler, authToken string) string {
	t.Helper()
	r := gin.New()
	RegisterRoutes(r, h, authToken)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readMessage(t *testing.T, conn *websocket.Conn) socketMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var m socketMessage
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

// readResult skips status messages until a result or error arrives.
func readResult(t *testing.T, conn *websocket.Conn) socketMessage {
	t.Helper()
	for {
		m := readMessage(t, conn)
		if m.Type != msgStatus {
			return m
		}
	}
}

func TestRunSocket_DiscardsSupersededRun(t *testing.T) {
	release := make(chan struct{})
	runner := &stubRunner{runFn: func(_ context.Context, req run.Request, obs run.Observer) run.Result {
		obs.OnStatusChange(run.StatusCompiling)
		if req.Source == "slow" {
			<-release
		}
		return run.Result{State: run.StateCompleted, Outcome: run.OutcomeSuccess, Output: "from " + req.Source}
	}}
	conn := dialRunSocket(t, NewHandler(Deps{Runner: runner}))

	require.NoError(t, conn.WriteJSON(map[string]any{"language_id": 71, "source_code": "slow"}))
	first := readMessage(t, conn)
	assert.Equal(t, msgStatus, first.Type)
	assert.Equal(t, run.StatusCompiling, first.Status)

	require.NoError(t, conn.WriteJSON(map[string]any{"language_id": 71, "source_code": "fast"}))
	res := readResult(t, conn)
	require.Equal(t, msgResult, res.Type)
	assert.Equal(t, first.RunID+1, res.RunID)
	assert.Equal(t, "from fast", res.Result.Output)

	// The first run completes now; its result must never be delivered.
	close(release)
	require.NoError(t, conn.WriteJSON(map[string]any{"language_id": 71, "source_code": "last"}))
	res = readResult(t, conn)
	require.Equal(t, msgResult, res.Type)
	assert.Equal(t, "from last", res.Result.Output)
	assert.Equal(t, first.RunID+2, res.RunID)
}

func TestRunSocket_UnknownLanguage(t *testing.T) {
	conn := dialRunSocket(t, NewHandler(Deps{Runner: &stubRunner{}}))

	require.NoError(t, conn.WriteJSON(map[string]any{"language_id": 4242, "source_code": "x"}))
	m := readMessage(t, conn)
	assert.Equal(t, msgError, m.Type)
	assert.Contains(t, m.Error, "unknown language")

	require.NoError(t, conn.WriteJSON(map[string]any{"language_id": 63, "source_code": "console.log(1)"}))
	m = readResult(t, conn)
	assert.Equal(t, msgResult, m.Type)
	assert.Equal(t, "ok", m.Result.Output)
}

func TestRunSocket_TokenAuth(t *testing.T) {
	base := socketURL(t, NewHandler(Deps{Runner: &stubRunner{}}), "secret")

	_, resp, err := websocket.DefaultDialer.Dial(base+"/runs/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"/runs/ws?access_token=wrong", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/runs/ws?access_token=secret", nil)
	require.NoError(t, err)
	conn.Close()

	header := http.Header{"Authorization": []string{"Bearer secret"}}
	conn, _, err = websocket.DefaultDialer.Dial(base+"/runs/ws", header)
	require.NoError(t, err)
	conn.Close()
}
