package approval

import (
	"github.com/finly-app/expense-service/internal/domain/entity"
)

// BuildFlow materializes the ordered list of concrete approval steps for a
// matched rule. Levels are walked in order and within each level approver
// specifications are walked in order, so the resulting slice order is the
// "find my pending step" order.
//
// Only SPECIFIC_USER and MANAGER specifications resolve to a user. Other
// kinds, and specifications that resolve to nobody (a manager-less
// submitter), are omitted without error; the result can legitimately be
// empty, which callers must treat as "nothing left to approve".
func BuildFlow(rule *entity.ApprovalRule, submitter *entity.User) []entity.ApprovalStep {
	var steps []entity.ApprovalStep
	for i, level := range rule.Workflow.Levels {
		levelNumber := i + 1
		for _, spec := range level.Approvers {
			approverID := resolveApprover(spec, submitter)
			if approverID == "" {
				continue
			}
			steps = append(steps, entity.ApprovalStep{
				ApproverID: approverID,
				Level:      levelNumber,
				Status:     entity.StepStatusPending,
				IsRequired: spec.IsRequired,
			})
		}
	}
	return steps
}

func resolveApprover(spec entity.ApproverSpec, submitter *entity.User) string {
	switch spec.Kind {
	case entity.ApproverSpecificUser:
		return spec.UserID
	case entity.ApproverManager:
		if submitter == nil {
			return ""
		}
		return submitter.ManagerID
	default:
		// DEPARTMENT_HEAD, CFO and CEO are schema placeholders with no
		// resolution; they vanish from the generated flow.
		return ""
	}
}

// FirstPendingStepFor returns the index of the first step in flow order that
// is assigned to approverID and still pending, or -1. Level is deliberately
// not consulted: any assigned pending step may be acted on.
func FirstPendingStepFor(flow []entity.ApprovalStep, approverID string) int {
	for i, step := range flow {
		if step.ApproverID == approverID && step.Status == entity.StepStatusPending {
			return i
		}
	}
	return -1
}

// HasPending reports whether any step is still pending, irrespective of
// IsRequired: completion treats all generated steps as required.
func HasPending(flow []entity.ApprovalStep) bool {
	for _, step := range flow {
		if step.Status == entity.StepStatusPending {
			return true
		}
	}
	return false
}
