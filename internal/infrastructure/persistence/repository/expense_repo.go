package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/port"
	"github.com/finly-app/expense-service/internal/domain/approval"
	"github.com/finly-app/expense-service/internal/domain/entity"
	"github.com/finly-app/expense-service/internal/infrastructure/persistence/sqlite"
)

// ExpenseRepository implements port.ExpenseRepository
type ExpenseRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sqlite.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

const expenseColumns = `id, company_id, submitted_by, description, category,
	amount_value, amount_currency, base_amount_value, exchange_rate, converted_at,
	status, rule_id, approval_flow, rejection_reason,
	submitted_at, approved_at, paid_at, version, created_at, updated_at`

// Create inserts a new expense with its initial version.
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	flow, err := marshalFlow(expense.ApprovalFlow)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		expense.ID,
		expense.CompanyID,
		expense.SubmittedBy,
		expense.Description,
		expense.Category,
		expense.Amount.Value.String(),
		expense.Amount.Currency,
		expense.AmountInBaseCurrency.Value.String(),
		expense.AmountInBaseCurrency.ExchangeRate.String(),
		expense.AmountInBaseCurrency.ConvertedAt,
		expense.Status,
		expense.RuleID,
		flow,
		expense.RejectionReason,
		nullTime(expense.SubmittedAt),
		nullTime(expense.ApprovedAt),
		nullTime(expense.PaidAt),
		expense.Version,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.String("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// GetByID retrieves an expense by ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	expense, err := r.scanExpense(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get expense by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// Update writes an expense with a compare-and-swap on its version. A row that
// exists but no longer matches the caller's version means another writer got
// there first, reported as approval.ErrConflict.
func (r *ExpenseRepository) Update(ctx context.Context, expense *entity.Expense) error {
	flow, err := marshalFlow(expense.ApprovalFlow)
	if err != nil {
		return err
	}

	query := `
		UPDATE expenses SET
			description = ?, category = ?,
			amount_value = ?, amount_currency = ?,
			base_amount_value = ?, exchange_rate = ?, converted_at = ?,
			status = ?, rule_id = ?, approval_flow = ?, rejection_reason = ?,
			submitted_at = ?, approved_at = ?, paid_at = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	expense.UpdatedAt = time.Now()

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		expense.Description,
		expense.Category,
		expense.Amount.Value.String(),
		expense.Amount.Currency,
		expense.AmountInBaseCurrency.Value.String(),
		expense.AmountInBaseCurrency.ExchangeRate.String(),
		expense.AmountInBaseCurrency.ConvertedAt,
		expense.Status,
		expense.RuleID,
		flow,
		expense.RejectionReason,
		nullTime(expense.SubmittedAt),
		nullTime(expense.ApprovedAt),
		nullTime(expense.PaidAt),
		expense.UpdatedAt,
		expense.ID,
		expense.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", zap.String("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		err := r.db.Executor(ctx).QueryRowContext(ctx,
			`SELECT 1 FROM expenses WHERE id = ?`, expense.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("expense %s: %w", expense.ID, approval.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check expense existence: %w", err)
		}
		r.logger.Warn("Expense version conflict",
			zap.String("id", expense.ID),
			zap.Int64("version", expense.Version))
		return fmt.Errorf("expense %s was modified concurrently: %w", expense.ID, approval.ErrConflict)
	}

	expense.Version++
	return nil
}

// ListByCompany retrieves expenses for a company, optionally filtered by
// status, newest first.
func (r *ExpenseRepository) ListByCompany(ctx context.Context, companyID string, statuses []string, limit, offset int) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE company_id = ?`
	args := []interface{}{companyID}

	if len(statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(", ?", len(statuses)-1) + `)`
		for _, s := range statuses {
			args = append(args, s)
		}
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.String("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*entity.Expense
	for rows.Next() {
		expense, err := r.scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

// CountInFlightByRule counts expenses still moving through an approval flow
// that reference the given rule. Used by the rule deletion guard.
func (r *ExpenseRepository) CountInFlightByRule(ctx context.Context, ruleID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM expenses
		WHERE rule_id = ? AND status IN (?, ?)
	`

	var count int
	err := r.db.Executor(ctx).QueryRowContext(ctx, query,
		ruleID, entity.StatusSubmitted, entity.StatusWaitingApproval).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count in-flight expenses", zap.String("rule_id", ruleID), zap.Error(err))
		return 0, fmt.Errorf("failed to count in-flight expenses: %w", err)
	}

	return count, nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ExpenseRepository) scanExpense(row rowScanner) (*entity.Expense, error) {
	var (
		expense         entity.Expense
		amountValue     string
		baseValue       string
		exchangeRate    string
		convertedAt     sql.NullTime
		ruleID          sql.NullString
		flow            []byte
		rejectionReason sql.NullString
		submittedAt     sql.NullTime
		approvedAt      sql.NullTime
		paidAt          sql.NullTime
	)

	err := row.Scan(
		&expense.ID,
		&expense.CompanyID,
		&expense.SubmittedBy,
		&expense.Description,
		&expense.Category,
		&amountValue,
		&expense.Amount.Currency,
		&baseValue,
		&exchangeRate,
		&convertedAt,
		&expense.Status,
		&ruleID,
		&flow,
		&rejectionReason,
		&submittedAt,
		&approvedAt,
		&paidAt,
		&expense.Version,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	expense.Amount.Value, err = decimal.NewFromString(amountValue)
	if err != nil {
		return nil, fmt.Errorf("invalid amount value %q: %w", amountValue, err)
	}
	expense.AmountInBaseCurrency.Value, err = decimal.NewFromString(baseValue)
	if err != nil {
		return nil, fmt.Errorf("invalid base amount value %q: %w", baseValue, err)
	}
	expense.AmountInBaseCurrency.ExchangeRate, err = decimal.NewFromString(exchangeRate)
	if err != nil {
		return nil, fmt.Errorf("invalid exchange rate %q: %w", exchangeRate, err)
	}
	if convertedAt.Valid {
		expense.AmountInBaseCurrency.ConvertedAt = convertedAt.Time
	}

	expense.RuleID = ruleID.String
	expense.RejectionReason = rejectionReason.String

	if len(flow) > 0 {
		if err := json.Unmarshal(flow, &expense.ApprovalFlow); err != nil {
			return nil, fmt.Errorf("invalid approval flow: %w", err)
		}
	}

	if submittedAt.Valid {
		expense.SubmittedAt = &submittedAt.Time
	}
	if approvedAt.Valid {
		expense.ApprovedAt = &approvedAt.Time
	}
	if paidAt.Valid {
		expense.PaidAt = &paidAt.Time
	}

	return &expense, nil
}

func marshalFlow(flow []entity.ApprovalStep) ([]byte, error) {
	if flow == nil {
		flow = []entity.ApprovalStep{}
	}
	data, err := json.Marshal(flow)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal approval flow: %w", err)
	}
	return data, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
