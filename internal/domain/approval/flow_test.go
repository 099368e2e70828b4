package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finly-app/expense-service/internal/domain/entity"
)

func TestBuildFlow_LevelOrderAndWithinLevelOrder(t *testing.T) {
	rule := &entity.ApprovalRule{
		Workflow: entity.ApprovalWorkflow{
			Levels: []entity.ApprovalLevel{
				{Approvers: []entity.ApproverSpec{
					{Kind: entity.ApproverManager, IsRequired: true},
					{Kind: entity.ApproverSpecificUser, UserID: "usr-finance", IsRequired: false},
				}},
				{Approvers: []entity.ApproverSpec{
					{Kind: entity.ApproverSpecificUser, UserID: "usr-director", IsRequired: true},
				}},
			},
		},
	}
	submitter := &entity.User{ID: "usr-1", ManagerID: "usr-manager"}

	flow := BuildFlow(rule, submitter)
	require.Len(t, flow, 3)

	assert.Equal(t, "usr-manager", flow[0].ApproverID)
	assert.Equal(t, 1, flow[0].Level)
	assert.True(t, flow[0].IsRequired)

	assert.Equal(t, "usr-finance", flow[1].ApproverID)
	assert.Equal(t, 1, flow[1].Level)
	assert.False(t, flow[1].IsRequired)

	assert.Equal(t, "usr-director", flow[2].ApproverID)
	assert.Equal(t, 2, flow[2].Level)

	for _, step := range flow {
		assert.Equal(t, entity.StepStatusPending, step.Status)
		assert.Nil(t, step.ActionDate)
	}
}

func TestBuildFlow_ManagerlessSubmitterOmitsStep(t *testing.T) {
	rule := &entity.ApprovalRule{
		Workflow: entity.ApprovalWorkflow{
			Levels: []entity.ApprovalLevel{
				{Approvers: []entity.ApproverSpec{{Kind: entity.ApproverManager, IsRequired: true}}},
			},
		},
	}
	submitter := &entity.User{ID: "usr-1"}

	flow := BuildFlow(rule, submitter)
	assert.Empty(t, flow)
}

func TestBuildFlow_UnsupportedKindsAreSkipped(t *testing.T) {
	rule := &entity.ApprovalRule{
		Workflow: entity.ApprovalWorkflow{
			Levels: []entity.ApprovalLevel{
				{Approvers: []entity.ApproverSpec{
					{Kind: entity.ApproverCFO, IsRequired: true},
					{Kind: entity.ApproverDepartmentHead, IsRequired: true},
					{Kind: entity.ApproverSpecificUser, UserID: "usr-2", IsRequired: true},
					{Kind: entity.ApproverCEO, IsRequired: true},
				}},
			},
		},
	}
	submitter := &entity.User{ID: "usr-1", ManagerID: "usr-manager"}

	flow := BuildFlow(rule, submitter)
	require.Len(t, flow, 1)
	assert.Equal(t, "usr-2", flow[0].ApproverID)
}

func TestFirstPendingStepFor(t *testing.T) {
	flow := []entity.ApprovalStep{
		{ApproverID: "usr-a", Level: 1, Status: entity.StepStatusApproved},
		{ApproverID: "usr-b", Level: 1, Status: entity.StepStatusPending},
		{ApproverID: "usr-a", Level: 2, Status: entity.StepStatusPending},
	}

	assert.Equal(t, 1, FirstPendingStepFor(flow, "usr-b"))
	// usr-a's level-1 step is already decided; the level-2 one is next.
	assert.Equal(t, 2, FirstPendingStepFor(flow, "usr-a"))
	assert.Equal(t, -1, FirstPendingStepFor(flow, "usr-c"))
	assert.Equal(t, -1, FirstPendingStepFor(nil, "usr-a"))
}

func TestHasPending_IgnoresIsRequired(t *testing.T) {
	flow := []entity.ApprovalStep{
		{ApproverID: "usr-a", Status: entity.StepStatusApproved, IsRequired: true},
		{ApproverID: "usr-b", Status: entity.StepStatusPending, IsRequired: false},
	}
	// The optional step still counts as pending.
	assert.True(t, HasPending(flow))

	flow[1].Status = entity.StepStatusApproved
	assert.False(t, HasPending(flow))
}
