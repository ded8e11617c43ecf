package code

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Judge0Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewJudge0Client(Judge0Config{URL: srv.URL + "/", AuthToken: "secret", Timeout: 2 * time.Second})
}

func TestJudge0Submit(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submissions", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("base64_encoded"))
		assert.Empty(t, r.URL.Query().Get("wait"))
		assert.Equal(t, "secret", r.Header.Get("X-Auth-Token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"abc-123"}`))
	})

	h, err := c.Submit(context.Background(), SubmissionRequest{
		LanguageID: 71,
		SourceCode: "print(input())",
		Stdin:      "1\n2",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", h.Token)
	assert.Equal(t, float64(71), body["language_id"])
	assert.Equal(t, string(Encode("print(input())")), body["source_code"])
	assert.Equal(t, string(Encode("1\n2")), body["stdin"])
}

func TestJudge0SubmitMissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"error":"nope"}`))
	})
	_, err := c.Submit(context.Background(), SubmissionRequest{LanguageID: 71})
	require.Error(t, err)
	assert.True(t, IsProtocol(err))
}

func TestJudge0SubmitHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"language_id":["language with id 999 doesn't exist"]}`))
	})
	_, err := c.Submit(context.Background(), SubmissionRequest{LanguageID: 999})
	require.Error(t, err)
	assert.True(t, IsTransport(err))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnprocessableEntity, te.StatusCode)
	assert.Contains(t, te.Error(), "doesn't exist")
}

func TestJudge0SubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewJudge0Client(Judge0Config{URL: url})
	_, err := c.Submit(context.Background(), SubmissionRequest{LanguageID: 71})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestJudge0FetchStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/submissions/abc-123", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("base64_encoded"))
		assert.Contains(t, r.URL.Query().Get("fields"), "compile_output")
		w.Write([]byte(`{
			"status": {"id": 6, "description": "Compilation Error"},
			"stdout": null,
			"stderr": null,
			"compile_output": "` + string(Encode("error: ';' expected")) + `",
			"time": null,
			"memory": null
		}`))
	})

	report, err := c.FetchStatus(context.Background(), Handle{Token: "abc-123"})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", report.Token)
	assert.Equal(t, 6, report.Status.ID)
	assert.True(t, report.Status.Terminal())
	assert.False(t, report.Status.Accepted())
	assert.Nil(t, report.Stdout)
	require.NotNil(t, report.CompileOutput)

	text, ok, err := Decode("compile_output", report.CompileOutput)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "error: ';' expected", text)
}

func TestJudge0FetchStatusMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"no status", `{"token":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := c.FetchStatus(context.Background(), Handle{Token: "abc"})
			require.Error(t, err)
			assert.True(t, IsProtocol(err))
		})
	}
}

func TestSubmissionStatusPartition(t *testing.T) {
	for id := 1; id <= 14; id++ {
		s := SubmissionStatus{ID: id}
		assert.Equal(t, id >= 3, s.Terminal(), "status %d", id)
	}
	assert.Equal(t, "status 9", SubmissionStatus{ID: 9}.String())
	assert.Equal(t, "Accepted", SubmissionStatus{ID: 3, Description: "Accepted"}.String())
}
