package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"draft to waiting approval", StateDraft, StateWaitingApproval, true},
		{"draft directly approved", StateDraft, StateApproved, true},
		{"waiting approval approved", StateWaitingApproval, StateApproved, true},
		{"waiting approval rejected", StateWaitingApproval, StateRejected, true},
		{"approved paid", StateApproved, StatePaid, true},
		{"draft cannot be rejected", StateDraft, StateRejected, false},
		{"rejected is terminal", StateRejected, StateWaitingApproval, false},
		{"paid is terminal", StatePaid, StateApproved, false},
		{"approved cannot go back", StateApproved, StateWaitingApproval, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestTransition(t *testing.T) {
	got, err := Transition(StateDraft, StateWaitingApproval)
	assert.NoError(t, err)
	assert.Equal(t, StateWaitingApproval, got)

	_, err = Transition(StatePaid, StateDraft)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Transition(State("BOGUS"), StateDraft)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestState_IsTerminal(t *testing.T) {
	assert.True(t, StateRejected.IsTerminal())
	assert.True(t, StatePaid.IsTerminal())
	assert.False(t, StateApproved.IsTerminal())
	assert.False(t, StateWaitingApproval.IsTerminal())
}
