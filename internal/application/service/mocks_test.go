package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finly-app/expense-service/internal/application/port"
	"github.com/finly-app/expense-service/internal/domain/approval"
	"github.com/finly-app/expense-service/internal/domain/entity"
)

// memExpenseRepo is an in-memory ExpenseRepository with the same
// compare-and-swap semantics as the SQLite implementation.
type memExpenseRepo struct {
	mu       sync.Mutex
	expenses map[string]*entity.Expense
}

func newMemExpenseRepo(expenses ...*entity.Expense) *memExpenseRepo {
	r := &memExpenseRepo{expenses: make(map[string]*entity.Expense)}
	for _, e := range expenses {
		r.expenses[e.ID] = copyExpense(e)
	}
	return r
}

func copyExpense(e *entity.Expense) *entity.Expense {
	clone := *e
	clone.ApprovalFlow = append([]entity.ApprovalStep(nil), e.ApprovalFlow...)
	return &clone
}

func (r *memExpenseRepo) Create(_ context.Context, e *entity.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses[e.ID] = copyExpense(e)
	return nil
}

func (r *memExpenseRepo) GetByID(_ context.Context, id string) (*entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok {
		return nil, nil
	}
	return copyExpense(e), nil
}

func (r *memExpenseRepo) Update(_ context.Context, e *entity.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.expenses[e.ID]
	if !ok {
		return approval.ErrNotFound
	}
	if stored.Version != e.Version {
		return approval.ErrConflict
	}
	e.Version++
	r.expenses[e.ID] = copyExpense(e)
	return nil
}

func (r *memExpenseRepo) ListByCompany(_ context.Context, companyID string, statuses []string, limit, offset int) ([]*entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Expense
	for _, e := range r.expenses {
		if e.CompanyID != companyID {
			continue
		}
		if len(statuses) > 0 && !containsString(statuses, e.Status) {
			continue
		}
		out = append(out, copyExpense(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memExpenseRepo) CountInFlightByRule(_ context.Context, ruleID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.expenses {
		if e.RuleID == ruleID && e.InFlight() {
			count++
		}
	}
	return count, nil
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// mockRuleRepo serves a fixed rule set.
type mockRuleRepo struct {
	rules      []*entity.ApprovalRule
	deleted    []string
	createFunc func(ctx context.Context, rule *entity.ApprovalRule) error
}

func (r *mockRuleRepo) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	if r.createFunc != nil {
		return r.createFunc(ctx, rule)
	}
	r.rules = append(r.rules, rule)
	return nil
}

func (r *mockRuleRepo) GetByID(_ context.Context, id string) (*entity.ApprovalRule, error) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, nil
}

func (r *mockRuleRepo) Update(_ context.Context, rule *entity.ApprovalRule) error {
	for i, existing := range r.rules {
		if existing.ID == rule.ID {
			r.rules[i] = rule
		}
	}
	return nil
}

func (r *mockRuleRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *mockRuleRepo) ListActiveByCompany(_ context.Context, companyID string) ([]*entity.ApprovalRule, error) {
	var out []*entity.ApprovalRule
	for _, rule := range r.rules {
		if rule.CompanyID == companyID && rule.IsActive {
			out = append(out, rule)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (r *mockRuleRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.ApprovalRule, error) {
	var out []*entity.ApprovalRule
	for _, rule := range r.rules {
		if rule.CompanyID == companyID {
			out = append(out, rule)
		}
	}
	return out, nil
}

// mockUserRepo serves a fixed user set.
type mockUserRepo struct {
	users map[string]*entity.User
}

func (r *mockUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.users[id], nil
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// mockCompanyRepo serves a fixed company set.
type mockCompanyRepo struct {
	companies map[string]*entity.Company
}

func (r *mockCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.companies[id], nil
}

// memHistoryRepo records history entries in memory.
type memHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.ApprovalHistory
}

func (r *memHistoryRepo) Create(_ context.Context, h *entity.ApprovalHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, h)
	return nil
}

func (r *memHistoryRepo) ListByExpense(_ context.Context, expenseID string) ([]*entity.ApprovalHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ApprovalHistory
	for _, h := range r.entries {
		if h.ExpenseID == expenseID {
			out = append(out, h)
		}
	}
	return out, nil
}

// nopTxManager runs the function without a real transaction.
type nopTxManager struct{}

func (nopTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// identityConverter converts 1:1 regardless of currency pair.
type identityConverter struct{}

func (identityConverter) Convert(_ context.Context, amount decimal.Decimal, _, _ string) (port.Conversion, error) {
	return port.Conversion{
		Value:     amount,
		Rate:      decimal.NewFromInt(1),
		Timestamp: time.Now().UTC(),
	}, nil
}
