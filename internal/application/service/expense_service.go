package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/port"
	"github.com/finly-app/expense-service/internal/domain/approval"
	"github.com/finly-app/expense-service/internal/domain/entity"
	"github.com/finly-app/expense-service/internal/domain/workflow"
)

// CreateExpenseInput carries the fields of a new draft expense.
type CreateExpenseInput struct {
	CompanyID   string
	SubmittedBy string
	Description string
	Category    string
	Amount      decimal.Decimal
	Currency    string
}

// ExpenseService drives expenses through the approval lifecycle.
type ExpenseService interface {
	CreateDraft(ctx context.Context, input CreateExpenseInput) (*entity.Expense, error)
	Get(ctx context.Context, id string) (*entity.Expense, error)
	ListByCompany(ctx context.Context, companyID string, statuses []string, limit, offset int) ([]*entity.Expense, error)
	History(ctx context.Context, expenseID string) ([]*entity.ApprovalHistory, error)

	// Submit moves a draft expense into the approval flow: it resolves the
	// applicable rule, materializes the flow and decides the initial status.
	Submit(ctx context.Context, expenseID, actorID string) (*entity.Expense, error)

	// Act applies one approver's decision to an in-flight expense.
	Act(ctx context.Context, expenseID, actorID, action, comment string) (*entity.Expense, error)

	// MarkPaid finalizes an approved expense.
	MarkPaid(ctx context.Context, expenseID, actorID string) (*entity.Expense, error)
}

type expenseServiceImpl struct {
	expenseRepo port.ExpenseRepository
	ruleRepo    port.RuleRepository
	userRepo    port.UserRepository
	companyRepo port.CompanyRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	converter   port.CurrencyConverter
	logger      *zap.Logger
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(
	expenseRepo port.ExpenseRepository,
	ruleRepo port.RuleRepository,
	userRepo port.UserRepository,
	companyRepo port.CompanyRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	converter port.CurrencyConverter,
	logger *zap.Logger,
) ExpenseService {
	return &expenseServiceImpl{
		expenseRepo: expenseRepo,
		ruleRepo:    ruleRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		converter:   converter,
		logger:      logger,
	}
}

// CreateDraft validates the input, converts the amount into the company base
// currency and persists a new draft expense.
func (s *expenseServiceImpl) CreateDraft(ctx context.Context, input CreateExpenseInput) (*entity.Expense, error) {
	if !entity.IsValidCategory(input.Category) {
		return nil, fmt.Errorf("unknown category %q: %w", input.Category, approval.ErrValidation)
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive: %w", approval.ErrValidation)
	}

	company, err := s.companyRepo.GetByID(ctx, input.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("company %s: %w", input.CompanyID, approval.ErrNotFound)
	}

	conversion, err := s.converter.Convert(ctx, input.Amount, input.Currency, company.BaseCurrency)
	if err != nil {
		return nil, fmt.Errorf("convert amount to base currency: %w", err)
	}

	now := time.Now().UTC()
	expense := &entity.Expense{
		ID:          uuid.NewString(),
		CompanyID:   input.CompanyID,
		SubmittedBy: input.SubmittedBy,
		Description: input.Description,
		Category:    input.Category,
		Amount:      entity.Money{Value: input.Amount, Currency: input.Currency},
		AmountInBaseCurrency: entity.BaseAmount{
			Value:        conversion.Value,
			ExchangeRate: conversion.Rate,
			ConvertedAt:  conversion.Timestamp,
		},
		Status:    entity.StatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		s.logger.Error("Failed to create expense", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Expense draft created",
		zap.String("expense_id", expense.ID),
		zap.String("company_id", expense.CompanyID),
		zap.String("amount", expense.Amount.Value.String()),
		zap.String("currency", expense.Amount.Currency))
	return expense, nil
}

func (s *expenseServiceImpl) Get(ctx context.Context, id string) (*entity.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, fmt.Errorf("expense %s: %w", id, approval.ErrNotFound)
	}
	return expense, nil
}

func (s *expenseServiceImpl) ListByCompany(ctx context.Context, companyID string, statuses []string, limit, offset int) ([]*entity.Expense, error) {
	return s.expenseRepo.ListByCompany(ctx, companyID, statuses, limit, offset)
}

func (s *expenseServiceImpl) History(ctx context.Context, expenseID string) ([]*entity.ApprovalHistory, error) {
	return s.historyRepo.ListByExpense(ctx, expenseID)
}

// Submit implements the draft -> {waiting_approval, approved} transition.
func (s *expenseServiceImpl) Submit(ctx context.Context, expenseID, actorID string) (*entity.Expense, error) {
	expense, err := s.Get(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.SubmittedBy != actorID {
		return nil, fmt.Errorf("only the owner can submit an expense: %w", approval.ErrForbidden)
	}
	if expense.Status != entity.StatusDraft {
		return nil, fmt.Errorf("only draft expenses can be submitted: %w", approval.ErrInvalidState)
	}

	submitter, err := s.userRepo.GetByID(ctx, expense.SubmittedBy)
	if err != nil {
		return nil, fmt.Errorf("load submitter: %w", err)
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter %s: %w", expense.SubmittedBy, approval.ErrNotFound)
	}

	company, err := s.companyRepo.GetByID(ctx, expense.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("company %s: %w", expense.CompanyID, approval.ErrNotFound)
	}

	rules, err := s.ruleRepo.ListActiveByCompany(ctx, expense.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load approval rules: %w", err)
	}

	now := time.Now().UTC()
	rule := approval.Resolve(rules, expense, submitter)

	switch {
	case rule == nil:
		if err := s.applyNoRuleFallback(expense, submitter, company, now); err != nil {
			return nil, err
		}
	default:
		expense.RuleID = rule.ID
		expense.ApprovalFlow = approval.BuildFlow(rule, submitter)
		if len(expense.ApprovalFlow) == 0 {
			expense.Status = entity.StatusApproved
			expense.ApprovedAt = &now
		} else {
			expense.Status = entity.StatusWaitingApproval
		}
	}

	expense.SubmittedAt = &now
	expense.UpdatedAt = now

	if err := s.persistTransition(ctx, expense, &entity.ApprovalHistory{
		ExpenseID:  expense.ID,
		ActorID:    actorID,
		FromStatus: entity.StatusDraft,
		ToStatus:   expense.Status,
		Action:     entity.HistoryActionSubmit,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Expense submitted",
		zap.String("expense_id", expense.ID),
		zap.String("status", expense.Status),
		zap.String("rule_id", expense.RuleID),
		zap.Int("steps", len(expense.ApprovalFlow)))
	return expense, nil
}

// applyNoRuleFallback decides the outcome when no rule matches: auto-approve
// under the company limit, otherwise fall back to the submitter's manager.
func (s *expenseServiceImpl) applyNoRuleFallback(expense *entity.Expense, submitter *entity.User, company *entity.Company, now time.Time) error {
	if expense.AmountInBaseCurrency.Value.LessThanOrEqual(company.Settings.AutoApprovalLimit) {
		expense.Status = entity.StatusApproved
		expense.ApprovedAt = &now
		return nil
	}
	if submitter.ManagerID == "" {
		return fmt.Errorf("no manager assigned and no approval rules configured: %w", approval.ErrConfiguration)
	}
	expense.ApprovalFlow = []entity.ApprovalStep{{
		ApproverID: submitter.ManagerID,
		Level:      1,
		Status:     entity.StepStatusPending,
		IsRequired: true,
	}}
	expense.Status = entity.StatusWaitingApproval
	return nil
}

// Act implements the waiting_approval -> {waiting_approval, approved,
// rejected} transitions for a single approver decision.
func (s *expenseServiceImpl) Act(ctx context.Context, expenseID, actorID, action, comment string) (*entity.Expense, error) {
	if action != entity.ActionApprove && action != entity.ActionReject {
		return nil, fmt.Errorf("unsupported action %q: %w", action, approval.ErrValidation)
	}

	expense, err := s.Get(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	// Per-approver lookup in flow order; level is not an ordering gate.
	idx := approval.FirstPendingStepFor(expense.ApprovalFlow, actorID)
	if idx < 0 {
		return nil, fmt.Errorf("not authorized to approve this expense or it has already been processed: %w", approval.ErrForbidden)
	}

	now := time.Now().UTC()
	fromStatus := expense.Status
	step := &expense.ApprovalFlow[idx]
	step.Comments = comment
	step.ActionDate = &now

	var historyAction string
	if action == entity.ActionReject {
		// Remaining pending steps become moot but are left untouched.
		step.Status = entity.StepStatusRejected
		expense.Status = entity.StatusRejected
		expense.RejectionReason = comment
		historyAction = entity.HistoryActionReject
	} else {
		step.Status = entity.StepStatusApproved
		historyAction = entity.HistoryActionApprove
		if !approval.HasPending(expense.ApprovalFlow) {
			expense.Status = entity.StatusApproved
			if expense.ApprovedAt == nil {
				expense.ApprovedAt = &now
			}
		}
	}
	expense.UpdatedAt = now

	if err := s.persistTransition(ctx, expense, &entity.ApprovalHistory{
		ExpenseID:  expense.ID,
		ActorID:    actorID,
		FromStatus: fromStatus,
		ToStatus:   expense.Status,
		Action:     historyAction,
		Comment:    comment,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Approval action processed",
		zap.String("expense_id", expense.ID),
		zap.String("actor_id", actorID),
		zap.String("action", action),
		zap.String("status", expense.Status))
	return expense, nil
}

// MarkPaid implements the approved -> paid transition, restricted to finance
// and admin users.
func (s *expenseServiceImpl) MarkPaid(ctx context.Context, expenseID, actorID string) (*entity.Expense, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load actor: %w", err)
	}
	if actor == nil || (actor.Role != entity.RoleFinance && actor.Role != entity.RoleAdmin) {
		return nil, fmt.Errorf("only finance can mark expenses paid: %w", approval.ErrForbidden)
	}

	expense, err := s.Get(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.Status != entity.StatusApproved {
		return nil, fmt.Errorf("only approved expenses can be paid: %w", approval.ErrInvalidState)
	}

	now := time.Now().UTC()
	expense.Status = entity.StatusPaid
	if expense.PaidAt == nil {
		expense.PaidAt = &now
	}
	expense.UpdatedAt = now

	if err := s.persistTransition(ctx, expense, &entity.ApprovalHistory{
		ExpenseID:  expense.ID,
		ActorID:    actorID,
		FromStatus: entity.StatusApproved,
		ToStatus:   entity.StatusPaid,
		Action:     entity.HistoryActionPay,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Expense marked paid", zap.String("expense_id", expense.ID), zap.String("actor_id", actorID))
	return expense, nil
}

// persistTransition writes the mutated expense and its history entry in one
// transaction. The expense write is a compare-and-swap, so two approvers
// racing on the same flow surface as approval.ErrConflict instead of a lost
// update.
func (s *expenseServiceImpl) persistTransition(ctx context.Context, expense *entity.Expense, h *entity.ApprovalHistory) error {
	if h.FromStatus != h.ToStatus {
		if _, err := workflow.Transition(workflow.State(h.FromStatus), workflow.State(h.ToStatus)); err != nil {
			return fmt.Errorf("%s -> %s: %w", h.FromStatus, h.ToStatus, err)
		}
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.expenseRepo.Update(txCtx, expense); err != nil {
			return err
		}
		if err := s.historyRepo.Create(txCtx, h); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		return nil
	})
}
