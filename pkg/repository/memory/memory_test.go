package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/repository/memory"
)

func TestDecideCascadeFailureLeavesWorkflowPending(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Now().UTC()

	risk := &model.Risk{
		ID:             types.NewRiskID(),
		OrganizationID: "org-1",
		Title:          "vendor outage",
		Category:       types.RiskCategoryOperational,
		Impact:         types.SeverityHigh,
		Probability:    types.SeverityLow,
		Level:          types.SeverityMedium,
		Status:         types.RiskStatusOpen,
		OwnerID:        "owner-1",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err := repo.Risk().Create(ctx, risk)
	gt.NoError(t, err).Required()

	wf, err := repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", now))
	gt.NoError(t, err).Required()

	repo.DropRisk(risk.ID)

	d := model.NewDecision(wf.ID, types.WorkflowStatusApproved, "ok", now.Add(time.Minute))
	_, err = repo.ApprovalWorkflow().Decide(ctx, risk.OrganizationID, d)
	gt.Error(t, err).Is(memory.ErrNotFound)

	got, err := repo.ApprovalWorkflow().Get(ctx, risk.OrganizationID, wf.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.WorkflowStatusPending)
	gt.S(t, got.Comments).Equal("")
}
