package store

import "strconv"

// State describes the outcome of the most recent write of a collection key.
type State int

const (
	// StateNormal: the full snapshot was written.
	StateNormal State = iota
	// StateDegraded: only a reduced snapshot fit into storage.
	StateDegraded
	// StateFailed: nothing was written; memory is ahead of storage.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "Normal"
	case StateDegraded:
		return "Degraded"
	case StateFailed:
		return "Failed"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}
