package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a lifecycle transition is not allowed
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not a known lifecycle state
	ErrInvalidState = errors.New("invalid state")
)

// Transition validates a move from one state to another and returns the new
// state, or an error describing why the move is illegal.
func Transition(from, to State) (State, error) {
	if !from.IsValid() || !to.IsValid() {
		return from, ErrInvalidState
	}
	if !from.CanTransition(to) {
		return from, ErrInvalidTransition
	}
	return to, nil
}
