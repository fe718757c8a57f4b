package session

// State is the session lifecycle state.
type State int32

const (
	StateInit State = iota
	StateRunning
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}
