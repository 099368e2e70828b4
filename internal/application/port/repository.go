package port

import (
	"context"

	"github.com/finly-app/expense-service/internal/domain/entity"
)

// ExpenseRepository defines persistence operations for Expense.
//
// Update is a compare-and-swap write: it matches on the expense's current
// Version, increments it, and fails with approval.ErrConflict when another
// writer got there first.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id string) (*entity.Expense, error)
	Update(ctx context.Context, expense *entity.Expense) error
	ListByCompany(ctx context.Context, companyID string, statuses []string, limit, offset int) ([]*entity.Expense, error)
	CountInFlightByRule(ctx context.Context, ruleID string) (int, error)
}

// RuleRepository defines persistence operations for ApprovalRule.
type RuleRepository interface {
	Create(ctx context.Context, rule *entity.ApprovalRule) error
	GetByID(ctx context.Context, id string) (*entity.ApprovalRule, error)
	Update(ctx context.Context, rule *entity.ApprovalRule) error
	Delete(ctx context.Context, id string) error
	// ListActiveByCompany returns active rules sorted by ascending priority,
	// the resolution order of the engine.
	ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.ApprovalRule, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.ApprovalRule, error)
}

// UserRepository defines read operations for User. User management is an
// external collaborator; the engine only looks users up.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// CompanyRepository defines read operations for Company.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

// HistoryRepository defines persistence operations for ApprovalHistory.
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.ApprovalHistory) error
	ListByExpense(ctx context.Context, expenseID string) ([]*entity.ApprovalHistory, error)
}

// TransactionManager handles database transactions. Repositories called with
// the context passed to fn join the same transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
