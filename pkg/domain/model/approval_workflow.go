package model

import (
	"time"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// ApprovalWorkflow is a single request/decide cycle for accepting a risk.
// Once Status leaves pending no field changes again.
type ApprovalWorkflow struct {
	ID             types.WorkflowID
	RiskID         types.RiskID
	OrganizationID types.OrganizationID
	RequesterID    types.UserID
	ApproverID     types.UserID
	Status         types.WorkflowStatus
	Comments       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewApprovalWorkflow creates a pending workflow for the risk. The approver is
// fixed to the risk owner at the time of submission.
func NewApprovalWorkflow(risk *Risk, requesterID types.UserID, now time.Time) *ApprovalWorkflow {
	return &ApprovalWorkflow{
		ID:             types.NewWorkflowID(),
		RiskID:         risk.ID,
		OrganizationID: risk.OrganizationID,
		RequesterID:    requesterID,
		ApproverID:     risk.OwnerID,
		Status:         types.WorkflowStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsPending reports whether the workflow still awaits a decision
func (w *ApprovalWorkflow) IsPending() bool {
	return w != nil && w.Status == types.WorkflowStatusPending
}

// Copy returns a shallow copy of the workflow
func (w *ApprovalWorkflow) Copy() *ApprovalWorkflow {
	if w == nil {
		return nil
	}
	c := *w
	return &c
}

// Decision describes a pending -> terminal transition. When RiskStatus is
// set, the store must apply it to the workflow's risk in the same unit of
// work as the workflow update.
type Decision struct {
	WorkflowID types.WorkflowID
	Status     types.WorkflowStatus
	Comments   string
	DecidedAt  time.Time
	RiskStatus types.RiskStatus
}

// NewDecision builds the transition for the given outcome. Approval cascades
// the risk to accepted; rejection leaves the risk untouched.
func NewDecision(id types.WorkflowID, status types.WorkflowStatus, comments string, now time.Time) Decision {
	d := Decision{
		WorkflowID: id,
		Status:     status,
		Comments:   comments,
		DecidedAt:  now,
	}
	if status == types.WorkflowStatusApproved {
		d.RiskStatus = types.RiskStatusAccepted
	}
	return d
}

// Apply returns a copy of the workflow with the decision applied
func (d Decision) Apply(w *ApprovalWorkflow) *ApprovalWorkflow {
	updated := w.Copy()
	updated.Status = d.Status
	updated.Comments = d.Comments
	updated.UpdatedAt = d.DecidedAt
	return updated
}

// ApprovalHistoryEntry is a workflow with its requester and approver
// identities. Either member is nil when no longer known.
type ApprovalHistoryEntry struct {
	Workflow  *ApprovalWorkflow
	Requester *Member
	Approver  *Member
}
