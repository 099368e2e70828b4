package approval

import (
	"github.com/finly-app/expense-service/internal/domain/entity"
)

// Matches evaluates one rule's conditions against one expense. It is a pure
// predicate: every configured criterion must hold, an unconfigured criterion
// is always satisfied. Amounts are compared in the company base currency.
// A missing submitter makes the expense a non-match rather than an error,
// keeping rule resolution total over malformed input.
func Matches(rule *entity.ApprovalRule, expense *entity.Expense, submitter *entity.User) bool {
	if rule == nil || expense == nil || submitter == nil {
		return false
	}

	amount := expense.AmountInBaseCurrency.Value
	if rule.Conditions.MinAmount != nil && amount.LessThan(*rule.Conditions.MinAmount) {
		return false
	}
	if rule.Conditions.MaxAmount != nil && amount.GreaterThan(*rule.Conditions.MaxAmount) {
		return false
	}

	if !containsOrEmpty(rule.Conditions.Categories, expense.Category) {
		return false
	}
	if !containsOrEmpty(rule.Conditions.Departments, submitter.Department) {
		return false
	}
	if !containsOrEmpty(rule.Conditions.SubmitterRoles, submitter.Role) {
		return false
	}
	if !containsOrEmpty(rule.Conditions.SubmitterIDs, submitter.ID) {
		return false
	}

	return true
}

// containsOrEmpty treats an empty criterion list as "any".
func containsOrEmpty(values []string, v string) bool {
	if len(values) == 0 {
		return true
	}
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
