package simulator

// State is the lifecycle state of a run
type State int32

const (
	StateIdle State = iota
	StateCountdown
	StateRunning
	StatePaused
	StateCompleted
	StateStopped
	StateAborting
	StateError
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StateCountdown: "countdown",
	StateRunning:   "running",
	StatePaused:    "paused",
	StateCompleted: "completed",
	StateStopped:   "stopped",
	StateAborting:  "aborting",
	StateError:     "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Active reports whether a run is in progress
func (s State) Active() bool {
	switch s {
	case StateCountdown, StateRunning, StatePaused, StateAborting:
		return true
	}
	return false
}

// Terminal reports whether s ends a run
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateStopped, StateError:
		return true
	}
	return false
}

// ParseState maps a state name back to its State
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return StateIdle, false
}
