package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/port"
	"github.com/finly-app/expense-service/internal/domain/entity"
	"github.com/finly-app/expense-service/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new approval history repository
func NewHistoryRepository(db *sqlite.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a history entry. Callers run this in the same transaction
// as the expense update it records.
func (r *HistoryRepository) Create(ctx context.Context, h *entity.ApprovalHistory) error {
	query := `
		INSERT INTO approval_history (expense_id, actor_id, from_status, to_status, action, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		h.ExpenseID,
		h.ActorID,
		h.FromStatus,
		h.ToStatus,
		h.Action,
		h.Comment,
		h.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry", zap.String("expense_id", h.ExpenseID), zap.Error(err))
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	h.ID = id
	return nil
}

// ListByExpense retrieves the history of an expense in the order it was
// written.
func (r *HistoryRepository) ListByExpense(ctx context.Context, expenseID string) ([]*entity.ApprovalHistory, error) {
	query := `
		SELECT id, expense_id, actor_id, from_status, to_status, action, comment, created_at
		FROM approval_history
		WHERE expense_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, expenseID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.String("expense_id", expenseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ApprovalHistory
	for rows.Next() {
		var h entity.ApprovalHistory
		err := rows.Scan(
			&h.ID,
			&h.ExpenseID,
			&h.ActorID,
			&h.FromStatus,
			&h.ToStatus,
			&h.Action,
			&h.Comment,
			&h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &h)
	}

	return entries, rows.Err()
}
