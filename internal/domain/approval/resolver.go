package approval

import (
	"github.com/finly-app/expense-service/internal/domain/entity"
)

// Resolve returns the first rule in the given slice that matches the expense,
// or nil if none does. Callers must pass active rules already sorted by
// ascending priority: precedence is purely priority order, there is no
// "most specific wins" tie-break.
func Resolve(rules []*entity.ApprovalRule, expense *entity.Expense, submitter *entity.User) *entity.ApprovalRule {
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if Matches(rule, expense, submitter) {
			return rule
		}
	}
	return nil
}

// MatchingRules returns every active rule that matches the expense, in the
// order given. Used by the read-only preview endpoint.
func MatchingRules(rules []*entity.ApprovalRule, expense *entity.Expense, submitter *entity.User) []*entity.ApprovalRule {
	var matched []*entity.ApprovalRule
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if Matches(rule, expense, submitter) {
			matched = append(matched, rule)
		}
	}
	return matched
}
