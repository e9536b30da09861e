package component

import "strings"

// State is the lifecycle position of a component instance.
// States are ordered; a running instance only ever moves forward except for
// the PRELOOP/LOOP/POSTLOOP cycle.
type State int32

const (
	StateIdle State = iota
	StatePreInit
	StateInit
	StatePostInit
	StatePreLoop
	StateLoop
	StatePostLoop
	StatePreExit
	StateExit
	StatePostExit
	StateCompletedSuccess
	StateCompletedFailure

	// StateIllegal is returned by lookups that find no instance.
	StateIllegal State = -1
)

var stateNames = map[State]string{
	StateIdle:             "IDLE",
	StatePreInit:          "PREINIT",
	StateInit:             "INIT",
	StatePostInit:         "POSTINIT",
	StatePreLoop:          "PRELOOP",
	StateLoop:             "LOOP",
	StatePostLoop:         "POSTLOOP",
	StatePreExit:          "PREEXIT",
	StateExit:             "EXIT",
	StatePostExit:         "POSTEXIT",
	StateCompletedSuccess: "COMPLETED_SUCCESS",
	StateCompletedFailure: "COMPLETED_FAILURE",
	StateIllegal:          "ILLEGAL",
}

// String returns the upper-case state name, e.g. "POSTINIT".
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return stateNames[StateIllegal]
}

// IsTerminal returns true once no further transitions will happen.
func (s State) IsTerminal() bool {
	return s == StateCompletedSuccess || s == StateCompletedFailure
}

// ParseState converts a state name (case-insensitive) back to a State.
// Returns StateIllegal and false for unknown names.
func ParseState(name string) (State, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for state, n := range stateNames {
		if n == upper && state != StateIllegal {
			return state, true
		}
	}
	return StateIllegal, false
}

// Phase names one of the six callback slots at a phase boundary.
type Phase int

const (
	PhasePreInit Phase = iota
	PhasePostInit
	PhasePreLoop
	PhasePostLoop
	PhasePreExit
	PhasePostExit

	// PhaseCount is the number of callback slots.
	PhaseCount

	// PhaseAll addresses every slot at once when registering a callback.
	PhaseAll Phase = -1
)

// String returns the name of the state the phase callback fires in.
func (p Phase) String() string {
	if p == PhaseAll {
		return "ALL"
	}
	if s, ok := p.State(); ok {
		return s.String()
	}
	return "UNKNOWN"
}

// State returns the lifecycle state in which the phase callback is invoked.
func (p Phase) State() (State, bool) {
	switch p {
	case PhasePreInit:
		return StatePreInit, true
	case PhasePostInit:
		return StatePostInit, true
	case PhasePreLoop:
		return StatePreLoop, true
	case PhasePostLoop:
		return StatePostLoop, true
	case PhasePreExit:
		return StatePreExit, true
	case PhasePostExit:
		return StatePostExit, true
	default:
		return StateIllegal, false
	}
}

// Handle is the per-instance capability handed to handlers and phase callbacks.
// It replaces recovering the owning instance from a private data address.
type Handle interface {
	// Name returns the component identity.
	Name() string
	// SID returns the instance string id (the name unless overridden).
	SID() string
	// ID returns the numeric instance id, unique within a run.
	ID() uint32
	// State returns the current lifecycle state.
	State() State
	// PData returns the pointer to the instance's private data.
	PData() any
}
