package runbox

import (
	"encoding/json"
	"time"
)

// Judge0 language ids supported by the server.
const (
	Java       = 62
	CPP        = 54
	Python     = 71
	JavaScript = 63
)

// HealthResponse is returned by the /health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// --- Languages ---

// Language is a supported language profile.
type Language struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Extension     string `json:"extension"`
	EditorSyntax  string `json:"editor_syntax"`
	DefaultSource string `json:"default_source,omitempty"`
}

// LanguageList is returned by GET /languages.
type LanguageList struct {
	Languages []Language `json:"languages"`
	Default   int        `json:"default"`
}

// --- Runs ---

// RunRequest submits a program. Inputs are joined with newlines into stdin
// when InputEnabled is set; Stdin, when non-nil, is sent verbatim instead.
type RunRequest struct {
	LanguageID   int      `json:"language_id"`
	SourceCode   string   `json:"source_code"`
	Inputs       []string `json:"inputs,omitempty"`
	InputEnabled bool     `json:"input_enabled"`
	Stdin        *string  `json:"stdin,omitempty"`
}

// QueuedRun is returned when a run is queued asynchronously.
type QueuedRun struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// SubmissionStatus is the Judge0 verdict of a submission.
type SubmissionStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Result is the outcome of a synchronous run.
type Result struct {
	State      string            `json:"state"`
	Outcome    string            `json:"outcome"`
	Output     string            `json:"output"`
	ErrorClass string            `json:"error_class,omitempty"`
	Status     *SubmissionStatus `json:"status,omitempty"`
	Token      string            `json:"token,omitempty"`
	Time       *string           `json:"time,omitempty"`
	Memory     *int              `json:"memory,omitempty"`
	Polls      int               `json:"polls"`
	Duration   time.Duration     `json:"duration"`
}

// OK reports whether the program ran successfully.
func (r Result) OK() bool {
	return r.Outcome == "success"
}

// SyncRun is returned by POST /runs?sync=true.
type SyncRun struct {
	RunID  string `json:"run_id"`
	Result Result `json:"result"`
}

// Job is a queued run's job row.
type Job struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"` // pending | running | completed | failed
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts"`
	Payload     json.RawMessage `json:"payload"`
	Error       *string         `json:"error,omitempty"`
	RunAt       time.Time       `json:"run_at"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Done reports whether the job will not be attempted again.
func (j Job) Done() bool {
	return j.Status == "completed" || j.Status == "failed"
}

// Execution is the stored result of a queued run's latest attempt.
type Execution struct {
	LanguageID int               `json:"language_id"`
	State      string            `json:"state"`
	Outcome    string            `json:"outcome"`
	Output     string            `json:"output"`
	ErrorClass *string           `json:"error_class,omitempty"`
	Status     *SubmissionStatus `json:"status,omitempty"`
	Token      *string           `json:"token,omitempty"`
	Time       *string           `json:"time,omitempty"`
	Memory     *int              `json:"memory,omitempty"`
	Polls      int               `json:"polls"`
	DurationMs int64             `json:"duration_ms"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Run is returned by GET /runs/:id.
type Run struct {
	Job       Job        `json:"job"`
	Execution *Execution `json:"execution,omitempty"`
}

// RunStatus is returned by GET /runs/:id/status.
type RunStatus struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}
