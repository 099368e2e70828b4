package workflow

// State represents an expense's position in the approval lifecycle.
type State string

const (
	StateDraft           State = "DRAFT"
	StateSubmitted       State = "SUBMITTED"
	StateWaitingApproval State = "WAITING_APPROVAL"
	StateApproved        State = "APPROVED"
	StateRejected        State = "REJECTED"
	StatePaid            State = "PAID"
)

var validStates = map[State]bool{
	StateDraft:           true,
	StateSubmitted:       true,
	StateWaitingApproval: true,
	StateApproved:        true,
	StateRejected:        true,
	StatePaid:            true,
}

var terminalStates = map[State]bool{
	StateRejected: true,
	StatePaid:     true,
}

// transitions lists the allowed next states for each state. Approved is not
// terminal: finance still marks approved expenses as paid.
var transitions = map[State][]State{
	StateDraft:           {StateSubmitted, StateWaitingApproval, StateApproved},
	StateSubmitted:       {StateWaitingApproval, StateApproved, StateRejected},
	StateWaitingApproval: {StateApproved, StateRejected},
	StateApproved:        {StatePaid},
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known lifecycle state.
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal returns true if no further transitions are allowed.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// CanTransition returns true if moving from s to next is a legal lifecycle
// transition.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
