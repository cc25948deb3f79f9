// Package sync implements the push/pull protocol client, the sync cycle
// state machine and its retry/backoff scheduling.
package sync

// State names a phase of one sync cycle. SyncOnce drives the cycle through
// these states with a single dispatch loop so transition coverage is
// directly testable.
type State int

const (
	StateIdle State = iota
	StateDueCheck
	StatePushing
	StatePulling
	StateSettled
	StateBackoff
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDueCheck:
		return "due_check"
	case StatePushing:
		return "pushing"
	case StatePulling:
		return "pulling"
	case StateSettled:
		return "settled"
	case StateBackoff:
		return "backoff"
	default:
		return "unknown"
	}
}
