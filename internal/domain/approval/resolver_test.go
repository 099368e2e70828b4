package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finly-app/expense-service/internal/domain/entity"
)

func TestResolve_FirstMatchByPriorityWins(t *testing.T) {
	r1 := &entity.ApprovalRule{ID: "rule-1", IsActive: true, Priority: 1}
	r2 := &entity.ApprovalRule{ID: "rule-2", IsActive: true, Priority: 2}
	submitter := &entity.User{ID: "usr-1"}

	// Both rules have no conditions, so both match; the first wins.
	got := Resolve([]*entity.ApprovalRule{r1, r2}, expenseWithBaseAmount("100"), submitter)
	assert.Equal(t, "rule-1", got.ID)
}

func TestResolve_SkipsNonMatchingAndInactive(t *testing.T) {
	highOnly := &entity.ApprovalRule{
		ID:       "rule-high",
		IsActive: true,
		Priority: 1,
		Conditions: entity.RuleConditions{
			MinAmount: decPtr("10000"),
		},
	}
	inactive := &entity.ApprovalRule{ID: "rule-off", IsActive: false, Priority: 2}
	catchAll := &entity.ApprovalRule{ID: "rule-any", IsActive: true, Priority: 3}
	submitter := &entity.User{ID: "usr-1"}

	got := Resolve([]*entity.ApprovalRule{highOnly, inactive, catchAll}, expenseWithBaseAmount("100"), submitter)
	assert.Equal(t, "rule-any", got.ID)
}

func TestResolve_NoMatchReturnsNil(t *testing.T) {
	rule := &entity.ApprovalRule{
		ID:         "rule-1",
		IsActive:   true,
		Conditions: entity.RuleConditions{MinAmount: decPtr("10000")},
	}
	submitter := &entity.User{ID: "usr-1"}

	assert.Nil(t, Resolve([]*entity.ApprovalRule{rule}, expenseWithBaseAmount("100"), submitter))
	assert.Nil(t, Resolve(nil, expenseWithBaseAmount("100"), submitter))
}

func TestMatchingRules_ReturnsAllMatchesInOrder(t *testing.T) {
	r1 := &entity.ApprovalRule{ID: "rule-1", IsActive: true, Priority: 1}
	r2 := &entity.ApprovalRule{
		ID:         "rule-2",
		IsActive:   true,
		Priority:   2,
		Conditions: entity.RuleConditions{MinAmount: decPtr("10000")},
	}
	r3 := &entity.ApprovalRule{ID: "rule-3", IsActive: true, Priority: 3}
	submitter := &entity.User{ID: "usr-1"}

	got := MatchingRules([]*entity.ApprovalRule{r1, r2, r3}, expenseWithBaseAmount("100"), submitter)
	assert.Len(t, got, 2)
	assert.Equal(t, "rule-1", got[0].ID)
	assert.Equal(t, "rule-3", got[1].ID)
}
