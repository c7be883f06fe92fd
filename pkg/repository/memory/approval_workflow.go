package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// approvalWorkflowRepository keeps workflows and enforces single-flight per
// risk. Lock order is workflow mutex first, then the risk repository mutex.
type approvalWorkflowRepository struct {
	mu        sync.RWMutex
	workflows map[types.WorkflowID]*model.ApprovalWorkflow
	pending   map[types.RiskID]types.WorkflowID
	risks     *riskRepository
}

func newApprovalWorkflowRepository(risks *riskRepository) *approvalWorkflowRepository {
	return &approvalWorkflowRepository{
		workflows: make(map[types.WorkflowID]*model.ApprovalWorkflow),
		pending:   make(map[types.RiskID]types.WorkflowID),
		risks:     risks,
	}
}

func (r *approvalWorkflowRepository) CreatePending(ctx context.Context, wf *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.risks.mu.RLock()
	_, err := r.risks.getLocked(wf.OrganizationID, wf.RiskID)
	r.risks.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if existing, ok := r.pending[wf.RiskID]; ok {
		return nil, goerr.Wrap(interfaces.ErrPendingExists, "risk already has a pending workflow",
			goerr.V("risk_id", wf.RiskID), goerr.V("workflow_id", existing))
	}

	if _, exists := r.workflows[wf.ID]; exists {
		return nil, goerr.New("approval workflow already exists", goerr.V("id", wf.ID))
	}

	stored := wf.Copy()
	stored.Status = types.WorkflowStatusPending
	r.workflows[stored.ID] = stored
	r.pending[stored.RiskID] = stored.ID

	return stored.Copy(), nil
}

func (r *approvalWorkflowRepository) Get(ctx context.Context, orgID types.OrganizationID, id types.WorkflowID) (*model.ApprovalWorkflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wf, err := r.getLocked(orgID, id)
	if err != nil {
		return nil, err
	}
	return wf.Copy(), nil
}

func (r *approvalWorkflowRepository) getLocked(orgID types.OrganizationID, id types.WorkflowID) (*model.ApprovalWorkflow, error) {
	wf, exists := r.workflows[id]
	if !exists || wf.OrganizationID != orgID {
		return nil, goerr.Wrap(ErrNotFound, "approval workflow not found", goerr.V("id", id), goerr.V("organization_id", orgID))
	}
	return wf, nil
}

func (r *approvalWorkflowRepository) GetPending(ctx context.Context, orgID types.OrganizationID, riskID types.RiskID) (*model.ApprovalWorkflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.pending[riskID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "no pending approval workflow", goerr.V("risk_id", riskID))
	}
	wf, err := r.getLocked(orgID, id)
	if err != nil {
		return nil, err
	}
	return wf.Copy(), nil
}

func (r *approvalWorkflowRepository) ListByRisk(ctx context.Context, orgID types.OrganizationID, riskID types.RiskID, page model.PageRequest) ([]*model.ApprovalWorkflow, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.ApprovalWorkflow, 0)
	for _, wf := range r.workflows {
		if wf.RiskID == riskID && wf.OrganizationID == orgID {
			matched = append(matched, wf)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	window := model.Window(matched, page)
	result := make([]*model.ApprovalWorkflow, len(window))
	for i, wf := range window {
		result[i] = wf.Copy()
	}

	return result, len(matched), nil
}

func (r *approvalWorkflowRepository) Decide(ctx context.Context, orgID types.OrganizationID, d model.Decision) (*model.ApprovalWorkflow, error) {
	if !d.Status.IsTerminal() {
		return nil, goerr.New("decision must be terminal", goerr.V("status", d.Status))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	wf, err := r.getLocked(orgID, d.WorkflowID)
	if err != nil {
		return nil, err
	}
	if !wf.IsPending() {
		return nil, goerr.Wrap(interfaces.ErrNotPending, "approval workflow already decided",
			goerr.V("id", wf.ID), goerr.V("status", wf.Status))
	}

	if d.RiskStatus != "" {
		r.risks.mu.Lock()
		risk, err := r.risks.getLocked(orgID, wf.RiskID)
		if err != nil {
			r.risks.mu.Unlock()
			return nil, goerr.Wrap(err, "failed to cascade risk status", goerr.V("workflow_id", wf.ID))
		}
		updatedRisk := risk.Copy()
		updatedRisk.Status = d.RiskStatus
		updatedRisk.UpdatedAt = d.DecidedAt
		r.risks.risks[updatedRisk.ID] = updatedRisk
		r.risks.mu.Unlock()
	}

	updated := d.Apply(wf)
	r.workflows[updated.ID] = updated
	delete(r.pending, updated.RiskID)

	return updated.Copy(), nil
}
