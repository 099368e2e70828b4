package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is an amount in a specific currency, as entered by the submitter.
type Money struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// BaseAmount is the company-base-currency equivalent of an expense amount,
// computed by the currency converter at creation/update time.
type BaseAmount struct {
	Value        decimal.Decimal `json:"value"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	ConvertedAt  time.Time       `json:"converted_at"`
}

// ApprovalStep is one concrete approver's slot within an expense's approval
// flow. The slice order of steps is level order crossed with within-level
// approver order and must be preserved exactly by the storage layer.
type ApprovalStep struct {
	ApproverID string     `json:"approver_id"`
	Level      int        `json:"level"`
	Status     string     `json:"status"`
	IsRequired bool       `json:"is_required"`
	Comments   string     `json:"comments,omitempty"`
	ActionDate *time.Time `json:"action_date,omitempty"`
}

// Expense is a single reimbursement claim submitted by an employee.
type Expense struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	SubmittedBy string `json:"submitted_by"`
	Description string `json:"description"`
	Category    string `json:"category"`

	Amount               Money      `json:"amount"`
	AmountInBaseCurrency BaseAmount `json:"amount_in_base_currency"`

	Status          string         `json:"status"`
	RuleID          string         `json:"rule_id,omitempty"`
	ApprovalFlow    []ApprovalStep `json:"approval_flow"`
	RejectionReason string         `json:"rejection_reason,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`

	// Version is the optimistic-concurrency token checked on every write.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InFlight reports whether the expense is still moving through an approval
// flow. Rules referenced by in-flight expenses must not be deleted.
func (e *Expense) InFlight() bool {
	return e.Status == StatusSubmitted || e.Status == StatusWaitingApproval
}
