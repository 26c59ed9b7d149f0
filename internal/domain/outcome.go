package domain

import "time"

// State is the terminal state of one attempted transfer.
type State int

const (
	Succeeded State = iota + 1
	SkippedExists
	Failed
	Unresolved
)

func (s State) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case SkippedExists:
		return "skipped"
	case Failed:
		return "failed"
	case Unresolved:
		return "unresolved"
	default:
		return "pending"
	}
}

// Outcome is the logged result of one image in a job.
type Outcome struct {
	Section     string
	State       State
	Text        string
	Source      string
	Destination string
	Time        time.Time
}
