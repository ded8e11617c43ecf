package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gsarma/runbox/internal/code"
)

// NoOutputMessage replaces empty stdout on an accepted run.
const NoOutputMessage = "Program compiled and ran successfully, but produced no output."

// errorPrefix starts every user-visible message for a run that could not
// reach a verdict.
const errorPrefix = "Error during compilation or execution: "

// Outcome is the variant of a Result.
type Outcome string

const (
	// OutcomeSuccess carries the program's stdout.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure carries the compiler or runtime diagnostic.
	OutcomeFailure Outcome = "failure"
	// OutcomeError means no verdict was obtained from the service.
	OutcomeError Outcome = "error"
)

// ErrorClass narrows down an OutcomeError.
type ErrorClass string

const (
	ClassTransport ErrorClass = "transport"
	ClassProtocol  ErrorClass = "protocol"
	ClassCodec     ErrorClass = "codec"
	ClassTimeout   ErrorClass = "timeout"
	ClassCanceled  ErrorClass = "canceled"
)

// TimeoutError is returned when the poll loop gives up waiting for a
// terminal status.
type TimeoutError struct {
	Elapsed time.Duration
	Limit   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no result after %s (limit %s)", e.Elapsed.Round(time.Millisecond), e.Limit)
}

// Result is the single terminal report of a run.
type Result struct {
	State      State                  `json:"state"`
	Outcome    Outcome                `json:"outcome"`
	Output     string                 `json:"output"`
	ErrorClass ErrorClass             `json:"error_class,omitempty"`
	Status     *code.SubmissionStatus `json:"status,omitempty"`
	Token      string                 `json:"token,omitempty"`
	Time       *string                `json:"time,omitempty"`
	Memory     *int                   `json:"memory,omitempty"`
	Polls      int                    `json:"polls"`
	Duration   time.Duration          `json:"duration"`

	Err error `json:"-"`
}

// OK reports whether the program ran successfully.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

func errorResult(err error, ctxErr error) Result {
	class := classify(err, ctxErr)
	return Result{
		State:      StateFailed,
		Outcome:    OutcomeError,
		ErrorClass: class,
		Output:     errorPrefix + err.Error(),
		Err:        err,
	}
}

func classify(err error, ctxErr error) ErrorClass {
	var te *TimeoutError
	switch {
	case errors.As(err, &te):
		return ClassTimeout
	case ctxErr != nil, errors.Is(err, context.Canceled):
		return ClassCanceled
	case code.IsProtocol(err):
		return ClassProtocol
	case code.IsCodec(err):
		return ClassCodec
	default:
		return ClassTransport
	}
}
