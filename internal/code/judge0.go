package code

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// statusFields limits the GET response to what a run needs.
const statusFields = "token,status,stdout,stderr,compile_output,message,time,memory"

// SubmissionRequest is one program to execute. It is built once per run and
// not modified afterwards.
type SubmissionRequest struct {
	LanguageID int
	SourceCode string
	Stdin      string
}

// Handle identifies an accepted submission on the service.
type Handle struct {
	Token string
}

// StatusReport is a decoded GET /submissions/{token} response. Output fields
// stay in wire form until the caller decides which one to surface.
type StatusReport struct {
	Token         string           `json:"token"`
	Status        SubmissionStatus `json:"status"`
	Stdout        *WireText        `json:"stdout"`
	Stderr        *WireText        `json:"stderr"`
	CompileOutput *WireText        `json:"compile_output"`
	Message       *WireText        `json:"message"`
	Time          *string          `json:"time"`
	Memory        *int             `json:"memory"`
}

// SubmissionClient performs the two remote operations of a run. Each call is
// a single round trip; retries are the caller's business.
type SubmissionClient interface {
	Submit(ctx context.Context, req SubmissionRequest) (Handle, error)
	FetchStatus(ctx context.Context, h Handle) (*StatusReport, error)
}

// Judge0Config holds the connection settings for a Judge0 CE instance.
// URL is the base URL of the Judge0 server (e.g. "http://judge0-server:2358").
// AuthToken is optional; send it as X-Auth-Token when AUTHN_TOKEN is configured.
type Judge0Config struct {
	URL       string        `json:"url"`
	AuthToken string        `json:"auth_token,omitempty"`
	Timeout   time.Duration `json:"-"`
}

// Judge0Client calls the Judge0 CE REST API with base64_encoded=true.
type Judge0Client struct {
	url       string
	authToken string
	client    *http.Client
}

var _ SubmissionClient = (*Judge0Client)(nil)

// NewJudge0Client constructs a Judge0Client from the given config.
func NewJudge0Client(cfg Judge0Config) *Judge0Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Judge0Client{
		url:       strings.TrimRight(cfg.URL, "/"),
		authToken: cfg.AuthToken,
		client:    &http.Client{Timeout: timeout},
	}
}

// Submit creates a submission without waiting for it to finish.
func (c *Judge0Client) Submit(ctx context.Context, req SubmissionRequest) (Handle, error) {
	const op = "submit"

	body, err := json.Marshal(struct {
		SourceCode WireText `json:"source_code"`
		LanguageID int      `json:"language_id"`
		Stdin      WireText `json:"stdin"`
	}{
		SourceCode: Encode(req.SourceCode),
		LanguageID: req.LanguageID,
		Stdin:      Encode(req.Stdin),
	})
	if err != nil {
		return Handle{}, &ProtocolError{Op: op, Reason: "marshal request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.url+"/submissions?base64_encoded=true", bytes.NewReader(body))
	if err != nil {
		return Handle{}, &TransportError{Op: op, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var raw struct {
		Token string `json:"token"`
	}
	if err := c.do(op, httpReq, &raw); err != nil {
		return Handle{}, err
	}
	if raw.Token == "" {
		return Handle{}, &ProtocolError{Op: op, Reason: "response has no token"}
	}
	return Handle{Token: raw.Token}, nil
}

// FetchStatus reads the current state of a submission.
func (c *Judge0Client) FetchStatus(ctx context.Context, h Handle) (*StatusReport, error) {
	const op = "fetch status"

	q := url.Values{}
	q.Set("base64_encoded", "true")
	q.Set("fields", statusFields)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.url+"/submissions/"+url.PathEscape(h.Token)+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	var report StatusReport
	if err := c.do(op, httpReq, &report); err != nil {
		return nil, err
	}
	if report.Status.ID == 0 {
		return nil, &ProtocolError{Op: op, Reason: "response has no status id"}
	}
	if report.Token == "" {
		report.Token = h.Token
	}
	return &report, nil
}

func (c *Judge0Client) do(op string, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("X-Auth-Token", c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		te := &TransportError{Op: op, StatusCode: resp.StatusCode}
		if s := strings.TrimSpace(string(snippet)); s != "" {
			te.Err = errors.New(s)
		}
		return te
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProtocolError{Op: op, Reason: "decode judge0 response", Err: err}
	}
	return nil
}
