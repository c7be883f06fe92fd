package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/metrics"
)

// ApprovalUseCase runs the risk acceptance workflow. Admission rules live in
// the model access predicates; single-flight and decision exclusivity are
// enforced by the store, the checks here only short-circuit the common case.
type ApprovalUseCase struct {
	repo          interfaces.Repository
	members       *MemberUseCase
	notifier      interfaces.Notifier
	clock         func() time.Time
	dispatch      Dispatcher
	notifyTimeout time.Duration
}

// Submit opens a pending approval workflow for the risk. The approver is the
// risk owner at the time of submission.
func (uc *ApprovalUseCase) Submit(ctx context.Context, actorID types.UserID, riskID types.RiskID) (*model.ApprovalWorkflow, error) {
	wf, err := uc.submit(ctx, actorID, riskID)
	metrics.ObserveSubmission(resultLabel(err))
	return wf, err
}

func (uc *ApprovalUseCase) submit(ctx context.Context, actorID types.UserID, riskID types.RiskID) (*model.ApprovalWorkflow, error) {
	caller, err := uc.members.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	risk, err := uc.repo.Risk().Get(ctx, caller.OrganizationID, riskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}

	if !model.CanSubmitAcceptance(caller, risk) {
		if !model.HasSubmitRole(caller, risk) {
			return nil, goerr.Wrap(ErrInsufficientRole, "cannot submit risk acceptance",
				goerr.V(UserIDKey, caller.UserID), goerr.V("role", caller.Role))
		}
		return nil, goerr.Wrap(ErrRiskHasNoOwner, "cannot submit risk acceptance", goerr.V(RiskIDKey, riskID))
	}

	pending, err := uc.repo.ApprovalWorkflow().GetPending(ctx, caller.OrganizationID, riskID)
	if err == nil {
		return nil, goerr.Wrap(ErrApprovalPending, "risk already has a pending workflow",
			goerr.V(RiskIDKey, riskID), goerr.V(WorkflowIDKey, pending.ID))
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to check pending workflow", goerr.V(RiskIDKey, riskID))
	}

	wf := model.NewApprovalWorkflow(risk, caller.UserID, uc.clock())
	created, err := uc.repo.ApprovalWorkflow().CreatePending(ctx, wf)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrPendingExists):
			return nil, goerr.Wrap(ErrApprovalPending, "risk already has a pending workflow", goerr.V(RiskIDKey, riskID))
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
		}
		return nil, goerr.Wrap(err, "failed to create approval workflow", goerr.V(RiskIDKey, riskID))
	}

	logging.From(ctx).Info("Approval workflow submitted",
		"risk_id", riskID, "workflow_id", created.ID, "requester_id", caller.UserID, "approver_id", created.ApproverID)

	uc.publish(ctx, model.NewSubmittedEvent(created, caller.UserID))
	return created, nil
}

// Decide moves a pending workflow to approved or rejected. Only the
// designated approver may decide; approval marks the risk accepted in the
// same unit of work.
func (uc *ApprovalUseCase) Decide(ctx context.Context, actorID types.UserID, riskID types.RiskID, workflowID types.WorkflowID, decision types.WorkflowStatus, comments string) (*model.ApprovalWorkflow, error) {
	wf, err := uc.decide(ctx, actorID, riskID, workflowID, decision, comments)
	metrics.ObserveDecision(decision.String(), resultLabel(err))
	return wf, err
}

func (uc *ApprovalUseCase) decide(ctx context.Context, actorID types.UserID, riskID types.RiskID, workflowID types.WorkflowID, decision types.WorkflowStatus, comments string) (*model.ApprovalWorkflow, error) {
	if !decision.IsTerminal() {
		return nil, goerr.Wrap(ErrInvalidInput, "decision must be approved or rejected", goerr.V("decision", decision))
	}

	caller, err := uc.members.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	wf, err := uc.repo.ApprovalWorkflow().Get(ctx, caller.OrganizationID, workflowID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrWorkflowNotFound, "workflow not found", goerr.V(WorkflowIDKey, workflowID))
		}
		return nil, goerr.Wrap(err, "failed to get approval workflow", goerr.V(WorkflowIDKey, workflowID))
	}
	if wf.RiskID != riskID {
		return nil, goerr.Wrap(ErrWorkflowNotFound, "workflow does not belong to risk",
			goerr.V(WorkflowIDKey, workflowID), goerr.V(RiskIDKey, riskID))
	}

	if !model.CanDecideApproval(caller.UserID, wf) {
		return nil, goerr.Wrap(ErrNotApprover, "cannot decide approval workflow",
			goerr.V(UserIDKey, caller.UserID), goerr.V(WorkflowIDKey, workflowID))
	}

	if !wf.IsPending() {
		return nil, goerr.Wrap(ErrAlreadyDecided, "workflow already decided",
			goerr.V(WorkflowIDKey, workflowID), goerr.V("status", wf.Status))
	}

	d := model.NewDecision(wf.ID, decision, comments, uc.clock())
	updated, err := uc.repo.ApprovalWorkflow().Decide(ctx, caller.OrganizationID, d)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotPending):
			return nil, goerr.Wrap(ErrAlreadyDecided, "workflow already decided", goerr.V(WorkflowIDKey, workflowID))
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, goerr.Wrap(ErrWorkflowNotFound, "workflow or risk disappeared", goerr.V(WorkflowIDKey, workflowID))
		}
		return nil, goerr.Wrap(err, "failed to decide approval workflow", goerr.V(WorkflowIDKey, workflowID))
	}

	logging.From(ctx).Info("Approval workflow decided",
		"risk_id", updated.RiskID, "workflow_id", updated.ID, "status", updated.Status, "approver_id", caller.UserID)

	uc.publish(ctx, model.NewDecidedEvent(updated, d.RiskStatus, caller.UserID))
	return updated, nil
}

// History returns the risk's workflows newest first. Any member of the
// risk's organization may read it.
func (uc *ApprovalUseCase) History(ctx context.Context, actorID types.UserID, riskID types.RiskID, page model.PageRequest) (*model.Page[*model.ApprovalHistoryEntry], error) {
	caller, err := uc.members.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	risk, err := uc.repo.Risk().Get(ctx, caller.OrganizationID, riskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}
	if !model.CanViewRisk(caller, risk) {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
	}

	page = page.Normalize()
	workflows, total, err := uc.repo.ApprovalWorkflow().ListByRisk(ctx, caller.OrganizationID, riskID, page)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list approval workflows", goerr.V(RiskIDKey, riskID))
	}

	ids := make([]types.UserID, 0, len(workflows)*2)
	for _, wf := range workflows {
		ids = append(ids, wf.RequesterID, wf.ApproverID)
	}
	members, err := uc.members.lookupMembers(ctx, caller.OrganizationID, ids...)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.ApprovalHistoryEntry, len(workflows))
	for i, wf := range workflows {
		entries[i] = &model.ApprovalHistoryEntry{
			Workflow:  wf,
			Requester: members[wf.RequesterID],
			Approver:  members[wf.ApproverID],
		}
	}

	return model.NewPage(entries, total, page), nil
}

// publish hands the event to the notifier without blocking the caller
func (uc *ApprovalUseCase) publish(ctx context.Context, event *model.WorkflowEvent) {
	if uc.notifier == nil {
		return
	}

	uc.dispatch(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, uc.notifyTimeout)
		defer cancel()

		if err := uc.notifier.Notify(ctx, event); err != nil {
			metrics.ObserveEvent(event.Type.String(), metrics.ResultError)
			return goerr.Wrap(err, "failed to notify workflow event",
				goerr.V("event_id", event.ID),
				goerr.V("event_type", event.Type),
				goerr.V(WorkflowIDKey, event.WorkflowID))
		}
		metrics.ObserveEvent(event.Type.String(), metrics.ResultSuccess)
		return nil
	})
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrConflict):
		return metrics.ResultConflict
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
