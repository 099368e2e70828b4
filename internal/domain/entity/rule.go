package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RuleConditions are the matching criteria of an approval rule. Every
// configured criterion must hold for the rule to match; an empty or nil
// criterion is always satisfied.
type RuleConditions struct {
	MinAmount      *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount      *decimal.Decimal `json:"max_amount,omitempty"`
	Categories     []string         `json:"categories,omitempty"`
	Departments    []string         `json:"departments,omitempty"`
	SubmitterRoles []string         `json:"submitter_roles,omitempty"`
	SubmitterIDs   []string         `json:"submitter_ids,omitempty"`
}

// ApproverSpec names one approver within a workflow level, either a specific
// user or a role to be resolved against the submitter's reporting line.
type ApproverSpec struct {
	Kind       string `json:"kind"`
	UserID     string `json:"user_id,omitempty"`
	IsRequired bool   `json:"is_required"`
}

// ApprovalLevel holds the ordered approver specifications of one level.
// The level number is the 1-based position of the level in the workflow.
type ApprovalLevel struct {
	Approvers []ApproverSpec `json:"approvers"`
}

// ApprovalWorkflow is the ordered list of levels a matching expense must
// pass through.
type ApprovalWorkflow struct {
	Levels []ApprovalLevel `json:"levels"`
}

// ApprovalRule is a company-configured policy selecting which approvers must
// sign off on expenses matching its conditions. Rules are evaluated in
// ascending priority order and the first match wins.
type ApprovalRule struct {
	ID         string           `json:"id"`
	CompanyID  string           `json:"company_id"`
	Name       string           `json:"name"`
	IsActive   bool             `json:"is_active"`
	Priority   int              `json:"priority"`
	Conditions RuleConditions   `json:"conditions"`
	Workflow   ApprovalWorkflow `json:"workflow"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
