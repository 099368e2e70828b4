package approval

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finly-app/expense-service/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func expenseWithBaseAmount(amount string) *entity.Expense {
	return &entity.Expense{
		ID:        "exp-1",
		CompanyID: "com-1",
		Category:  entity.CategoryTravel,
		AmountInBaseCurrency: entity.BaseAmount{
			Value:        dec(amount),
			ExchangeRate: decimal.NewFromInt(1),
		},
	}
}

func TestMatches_UnconfiguredCriteriaMatchAnything(t *testing.T) {
	rule := &entity.ApprovalRule{IsActive: true}
	submitter := &entity.User{ID: "usr-1", Role: entity.RoleEmployee, Department: "Engineering"}

	assert.True(t, Matches(rule, expenseWithBaseAmount("0.01"), submitter))
	assert.True(t, Matches(rule, expenseWithBaseAmount("999999"), submitter))
}

func TestMatches_AmountBoundariesInclusive(t *testing.T) {
	rule := &entity.ApprovalRule{
		Conditions: entity.RuleConditions{
			MinAmount: decPtr("100"),
			MaxAmount: decPtr("500"),
		},
	}
	submitter := &entity.User{ID: "usr-1"}

	tests := []struct {
		amount string
		want   bool
	}{
		{"100", true},
		{"500", true},
		{"99.99", false},
		{"500.01", false},
		{"250", true},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(rule, expenseWithBaseAmount(tt.amount), submitter))
		})
	}
}

func TestMatches_AllConfiguredCriteriaMustHold(t *testing.T) {
	rule := &entity.ApprovalRule{
		Conditions: entity.RuleConditions{
			Categories:     []string{entity.CategoryTravel},
			Departments:    []string{"Engineering"},
			SubmitterRoles: []string{entity.RoleEmployee},
			SubmitterIDs:   []string{"usr-1"},
		},
	}

	expense := expenseWithBaseAmount("100")
	submitter := &entity.User{ID: "usr-1", Role: entity.RoleEmployee, Department: "Engineering"}
	assert.True(t, Matches(rule, expense, submitter))

	t.Run("wrong category", func(t *testing.T) {
		e := expenseWithBaseAmount("100")
		e.Category = entity.CategoryMeal
		assert.False(t, Matches(rule, e, submitter))
	})

	t.Run("wrong department", func(t *testing.T) {
		s := &entity.User{ID: "usr-1", Role: entity.RoleEmployee, Department: "Sales"}
		assert.False(t, Matches(rule, expense, s))
	})

	t.Run("wrong role", func(t *testing.T) {
		s := &entity.User{ID: "usr-1", Role: entity.RoleManager, Department: "Engineering"}
		assert.False(t, Matches(rule, expense, s))
	})

	t.Run("wrong submitter", func(t *testing.T) {
		s := &entity.User{ID: "usr-2", Role: entity.RoleEmployee, Department: "Engineering"}
		assert.False(t, Matches(rule, expense, s))
	})
}

func TestMatches_MissingSubmitterIsNonMatch(t *testing.T) {
	rule := &entity.ApprovalRule{IsActive: true}
	assert.False(t, Matches(rule, expenseWithBaseAmount("100"), nil))
}

func TestMatches_OnlyMinBound(t *testing.T) {
	rule := &entity.ApprovalRule{
		Conditions: entity.RuleConditions{MinAmount: decPtr("1000")},
	}
	submitter := &entity.User{ID: "usr-1"}

	assert.False(t, Matches(rule, expenseWithBaseAmount("999.99"), submitter))
	assert.True(t, Matches(rule, expenseWithBaseAmount("1000"), submitter))
	assert.True(t, Matches(rule, expenseWithBaseAmount("50000"), submitter))
}
