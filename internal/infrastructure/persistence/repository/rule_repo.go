package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/port"
	"github.com/finly-app/expense-service/internal/domain/approval"
	"github.com/finly-app/expense-service/internal/domain/entity"
	"github.com/finly-app/expense-service/internal/infrastructure/persistence/sqlite"
)

// RuleRepository implements port.RuleRepository
type RuleRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *sqlite.DB, logger *zap.Logger) port.RuleRepository {
	return &RuleRepository{
		db:     db,
		logger: logger,
	}
}

const ruleColumns = `id, company_id, name, is_active, priority, conditions, workflow, created_at, updated_at`

// Create inserts a new approval rule
func (r *RuleRepository) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	conditions, workflow, err := marshalRule(rule)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO approval_rules (` + ruleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		rule.ID,
		rule.CompanyID,
		rule.Name,
		rule.IsActive,
		rule.Priority,
		conditions,
		workflow,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create rule", zap.String("id", rule.ID), zap.Error(err))
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

// GetByID retrieves a rule by ID
func (r *RuleRepository) GetByID(ctx context.Context, id string) (*entity.ApprovalRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM approval_rules WHERE id = ?`

	rule, err := scanRule(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get rule by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return rule, nil
}

// Update rewrites a rule in place
func (r *RuleRepository) Update(ctx context.Context, rule *entity.ApprovalRule) error {
	conditions, workflow, err := marshalRule(rule)
	if err != nil {
		return err
	}

	query := `
		UPDATE approval_rules SET
			name = ?, is_active = ?, priority = ?, conditions = ?, workflow = ?, updated_at = ?
		WHERE id = ?
	`

	rule.UpdatedAt = time.Now()

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		rule.Name,
		rule.IsActive,
		rule.Priority,
		conditions,
		workflow,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update rule", zap.String("id", rule.ID), zap.Error(err))
		return fmt.Errorf("failed to update rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %s: %w", rule.ID, approval.ErrNotFound)
	}

	return nil
}

// Delete removes a rule permanently
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM approval_rules WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete rule", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %s: %w", id, approval.ErrNotFound)
	}

	return nil
}

// ListActiveByCompany retrieves active rules for a company in ascending
// priority order, the order the resolver evaluates them in.
func (r *RuleRepository) ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.ApprovalRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM approval_rules
		WHERE company_id = ? AND is_active = 1
		ORDER BY priority ASC, created_at ASC`

	return r.listRules(ctx, query, companyID)
}

// ListByCompany retrieves all rules for a company, active or not
func (r *RuleRepository) ListByCompany(ctx context.Context, companyID string) ([]*entity.ApprovalRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM approval_rules
		WHERE company_id = ?
		ORDER BY priority ASC, created_at ASC`

	return r.listRules(ctx, query, companyID)
}

func (r *RuleRepository) listRules(ctx context.Context, query string, args ...interface{}) ([]*entity.ApprovalRule, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list rules", zap.Error(err))
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []*entity.ApprovalRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func scanRule(row rowScanner) (*entity.ApprovalRule, error) {
	var (
		rule       entity.ApprovalRule
		conditions []byte
		workflow   []byte
	)

	err := row.Scan(
		&rule.ID,
		&rule.CompanyID,
		&rule.Name,
		&rule.IsActive,
		&rule.Priority,
		&conditions,
		&workflow,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("invalid rule conditions: %w", err)
	}
	if err := json.Unmarshal(workflow, &rule.Workflow); err != nil {
		return nil, fmt.Errorf("invalid rule workflow: %w", err)
	}

	return &rule, nil
}

func marshalRule(rule *entity.ApprovalRule) (conditions, workflow []byte, err error) {
	conditions, err = json.Marshal(rule.Conditions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal rule conditions: %w", err)
	}
	workflow, err = json.Marshal(rule.Workflow)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal rule workflow: %w", err)
	}
	return conditions, workflow, nil
}
