package state

// Status is the lifecycle state of one download entry.
//
// Transitions: Pending -> Running (on spawn), Running -> Running (on each
// progress update), Running -> Finished/Failed/Cancelled (on process exit).
// Terminal states are sticky; no transition ever leaves them.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusFinished
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusFinished, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}
