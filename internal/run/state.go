package run

import "fmt"

// State is a step of the run state machine.
//
//	Idle -> Submitting -> Polling -> Completed
//	Idle -> Submitting -> Failed
//	Polling -> Failed
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StatePolling
	StateCompleted
	StateFailed
)

var stateNames = [...]string{"idle", "submitting", "polling", "completed", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, n := range stateNames {
		if n == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown run state %q", b)
}

// Status strings shown to the user while a run progresses.
const (
	StatusQueued    = "Queued"
	StatusCompiling = "Compiling..."
	StatusRunning   = "Running..."
	StatusFailed    = "Failed"
)
