package code

import "fmt"

// Judge0 status ids. Anything above StatusAccepted is a terminal failure of
// some kind; this package does not tell them apart.
const (
	StatusInQueue             = 1
	StatusProcessing          = 2
	StatusAccepted            = 3
	StatusWrongAnswer         = 4
	StatusTimeLimitExceeded   = 5
	StatusCompilationError    = 6
	StatusRuntimeErrorSIGSEGV = 7
	StatusInternalError       = 13
	StatusExecFormatError     = 14
)

// SubmissionStatus is the status object the service attaches to a submission.
type SubmissionStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Terminal reports whether the submission will not change state any more.
func (s SubmissionStatus) Terminal() bool {
	return s.ID > StatusProcessing
}

// Accepted reports whether the program compiled and ran successfully.
func (s SubmissionStatus) Accepted() bool {
	return s.ID == StatusAccepted
}

func (s SubmissionStatus) String() string {
	if s.Description != "" {
		return s.Description
	}
	return fmt.Sprintf("status %d", s.ID)
}
