package interfaces

import (
	"context"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// ApprovalWorkflowRepository stores approval workflows.
//
// Implementations guarantee that at most one pending workflow exists per risk
// and that a decision and its risk status cascade are applied atomically.
type ApprovalWorkflowRepository interface {
	// CreatePending stores a new pending workflow. It returns ErrPendingExists
	// if the risk already has one, and ErrNotFound if the risk is missing.
	CreatePending(ctx context.Context, wf *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error)

	// Get retrieves a workflow by ID
	Get(ctx context.Context, orgID types.OrganizationID, id types.WorkflowID) (*model.ApprovalWorkflow, error)

	// GetPending returns the pending workflow of the risk, or ErrNotFound
	GetPending(ctx context.Context, orgID types.OrganizationID, riskID types.RiskID) (*model.ApprovalWorkflow, error)

	// ListByRisk returns one page of the risk's workflows, newest first,
	// and the total number of workflows for the risk
	ListByRisk(ctx context.Context, orgID types.OrganizationID, riskID types.RiskID, page model.PageRequest) ([]*model.ApprovalWorkflow, int, error)

	// Decide moves a pending workflow to a terminal status. If the decision
	// carries a RiskStatus it is applied to the risk in the same unit of work.
	// It returns ErrNotPending when another decision won the race.
	Decide(ctx context.Context, orgID types.OrganizationID, d model.Decision) (*model.ApprovalWorkflow, error)
}
