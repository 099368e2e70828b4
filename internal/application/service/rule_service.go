package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/port"
	"github.com/finly-app/expense-service/internal/domain/approval"
	"github.com/finly-app/expense-service/internal/domain/entity"
)

// ErrRuleInUse is returned when deleting a rule still referenced by an
// in-flight expense.
var ErrRuleInUse = errors.New("rule is referenced by in-flight expenses")

// RuleInput carries the editable fields of an approval rule.
type RuleInput struct {
	CompanyID  string
	Name       string
	IsActive   bool
	Priority   int
	Conditions entity.RuleConditions
	Workflow   entity.ApprovalWorkflow
}

// PreviewQuery describes a hypothetical expense for the read-only
// resolve-applicable-rules endpoint. Amount is in the company base currency.
type PreviewQuery struct {
	Amount        decimal.Decimal
	Category      string
	Department    string
	SubmitterRole string
	SubmitterID   string
}

// RuleService manages approval rules.
type RuleService interface {
	Create(ctx context.Context, input RuleInput) (*entity.ApprovalRule, error)
	Update(ctx context.Context, id string, input RuleInput) (*entity.ApprovalRule, error)
	Get(ctx context.Context, id string) (*entity.ApprovalRule, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.ApprovalRule, error)
	Delete(ctx context.Context, id string) error

	// ResolveApplicable returns every active rule that would match the
	// described expense, in priority order, without mutating anything.
	ResolveApplicable(ctx context.Context, companyID string, q PreviewQuery) ([]*entity.ApprovalRule, error)
}

type ruleServiceImpl struct {
	ruleRepo    port.RuleRepository
	expenseRepo port.ExpenseRepository
	logger      *zap.Logger
}

// NewRuleService creates a new RuleService.
func NewRuleService(ruleRepo port.RuleRepository, expenseRepo port.ExpenseRepository, logger *zap.Logger) RuleService {
	return &ruleServiceImpl{
		ruleRepo:    ruleRepo,
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

func (s *ruleServiceImpl) Create(ctx context.Context, input RuleInput) (*entity.ApprovalRule, error) {
	if err := validateRuleInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rule := &entity.ApprovalRule{
		ID:         uuid.NewString(),
		CompanyID:  input.CompanyID,
		Name:       input.Name,
		IsActive:   input.IsActive,
		Priority:   input.Priority,
		Conditions: input.Conditions,
		Workflow:   input.Workflow,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		s.logger.Error("Failed to create rule", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Approval rule created",
		zap.String("rule_id", rule.ID),
		zap.String("company_id", rule.CompanyID),
		zap.Int("priority", rule.Priority))
	return rule, nil
}

func (s *ruleServiceImpl) Update(ctx context.Context, id string, input RuleInput) (*entity.ApprovalRule, error) {
	if err := validateRuleInput(input); err != nil {
		return nil, err
	}

	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.Name = input.Name
	rule.IsActive = input.IsActive
	rule.Priority = input.Priority
	rule.Conditions = input.Conditions
	rule.Workflow = input.Workflow
	rule.UpdatedAt = time.Now().UTC()

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		s.logger.Error("Failed to update rule", zap.String("rule_id", id), zap.Error(err))
		return nil, err
	}
	return rule, nil
}

func (s *ruleServiceImpl) Get(ctx context.Context, id string) (*entity.ApprovalRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, fmt.Errorf("rule %s: %w", id, approval.ErrNotFound)
	}
	return rule, nil
}

func (s *ruleServiceImpl) ListByCompany(ctx context.Context, companyID string) ([]*entity.ApprovalRule, error) {
	return s.ruleRepo.ListByCompany(ctx, companyID)
}

// Delete removes a rule unless an expense with submitted or waiting-approval
// status still references it.
func (s *ruleServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	inFlight, err := s.expenseRepo.CountInFlightByRule(ctx, id)
	if err != nil {
		return fmt.Errorf("count in-flight expenses: %w", err)
	}
	if inFlight > 0 {
		return fmt.Errorf("%d expense(s) still in approval: %w", inFlight, ErrRuleInUse)
	}

	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete rule", zap.String("rule_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("Approval rule deleted", zap.String("rule_id", id))
	return nil
}

func (s *ruleServiceImpl) ResolveApplicable(ctx context.Context, companyID string, q PreviewQuery) ([]*entity.ApprovalRule, error) {
	rules, err := s.ruleRepo.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load approval rules: %w", err)
	}

	expense := &entity.Expense{
		CompanyID:            companyID,
		Category:             q.Category,
		AmountInBaseCurrency: entity.BaseAmount{Value: q.Amount},
	}
	submitter := &entity.User{
		ID:         q.SubmitterID,
		Role:       q.SubmitterRole,
		Department: q.Department,
	}

	return approval.MatchingRules(rules, expense, submitter), nil
}

// validateRuleInput rejects rules the flow builder cannot fully honor, in
// particular workflow levels referencing approver kinds with no resolution.
func validateRuleInput(input RuleInput) error {
	if input.CompanyID == "" {
		return fmt.Errorf("company id is required: %w", approval.ErrValidation)
	}
	if input.Name == "" {
		return fmt.Errorf("rule name is required: %w", approval.ErrValidation)
	}
	if input.Priority < 0 {
		return fmt.Errorf("priority must not be negative: %w", approval.ErrValidation)
	}

	min, max := input.Conditions.MinAmount, input.Conditions.MaxAmount
	if min != nil && max != nil && min.GreaterThan(*max) {
		return fmt.Errorf("min amount exceeds max amount: %w", approval.ErrValidation)
	}
	for _, category := range input.Conditions.Categories {
		if !entity.IsValidCategory(category) {
			return fmt.Errorf("unknown category %q: %w", category, approval.ErrValidation)
		}
	}

	for i, level := range input.Workflow.Levels {
		if len(level.Approvers) == 0 {
			return fmt.Errorf("workflow level %d has no approvers: %w", i+1, approval.ErrValidation)
		}
		for _, spec := range level.Approvers {
			switch spec.Kind {
			case entity.ApproverSpecificUser:
				if spec.UserID == "" {
					return fmt.Errorf("specific-user approver in level %d needs a user id: %w", i+1, approval.ErrValidation)
				}
			case entity.ApproverManager:
				// resolved from the submitter's reporting line at submit time
			default:
				return fmt.Errorf("approver kind %q is not supported: %w", spec.Kind, approval.ErrValidation)
			}
		}
	}
	return nil
}
