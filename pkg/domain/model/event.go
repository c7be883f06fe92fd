package model

import (
	"time"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// WorkflowEvent is published to the notification subsystem on every workflow
// state change
type WorkflowEvent struct {
	ID             types.EventID        `json:"id"`
	Type           types.EventType      `json:"type"`
	OrganizationID types.OrganizationID `json:"organization_id"`
	RiskID         types.RiskID         `json:"risk_id"`
	WorkflowID     types.WorkflowID     `json:"workflow_id"`
	NewStatus      types.WorkflowStatus `json:"new_status"`
	RiskStatus     types.RiskStatus     `json:"risk_status,omitempty"`
	ActorID        types.UserID         `json:"actor_id"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

// NewSubmittedEvent builds the event emitted after a workflow is created
func NewSubmittedEvent(wf *ApprovalWorkflow, actorID types.UserID) *WorkflowEvent {
	return &WorkflowEvent{
		ID:             types.NewEventID(),
		Type:           types.EventTypeWorkflowSubmitted,
		OrganizationID: wf.OrganizationID,
		RiskID:         wf.RiskID,
		WorkflowID:     wf.ID,
		NewStatus:      wf.Status,
		ActorID:        actorID,
		OccurredAt:     wf.CreatedAt,
	}
}

// NewDecidedEvent builds the event emitted after a workflow reaches a terminal status
func NewDecidedEvent(wf *ApprovalWorkflow, riskStatus types.RiskStatus, actorID types.UserID) *WorkflowEvent {
	return &WorkflowEvent{
		ID:             types.NewEventID(),
		Type:           types.EventTypeWorkflowDecided,
		OrganizationID: wf.OrganizationID,
		RiskID:         wf.RiskID,
		WorkflowID:     wf.ID,
		NewStatus:      wf.Status,
		RiskStatus:     riskStatus,
		ActorID:        actorID,
		OccurredAt:     wf.UpdatedAt,
	}
}
