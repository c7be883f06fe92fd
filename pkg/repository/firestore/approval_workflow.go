package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

type approvalWorkflowDocument struct {
	ID             string    `firestore:"id"`
	RiskID         string    `firestore:"risk_id"`
	OrganizationID string    `firestore:"organization_id"`
	RequesterID    string    `firestore:"requester_id"`
	ApproverID     string    `firestore:"approver_id"`
	Status         string    `firestore:"status"`
	Comments       string    `firestore:"comments"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func toApprovalWorkflowDocument(wf *model.ApprovalWorkflow) *approvalWorkflowDocument {
	return &approvalWorkflowDocument{
		ID:             wf.ID.String(),
		RiskID:         wf.RiskID.String(),
		OrganizationID: wf.OrganizationID.String(),
		RequesterID:    wf.RequesterID.String(),
		ApproverID:     wf.ApproverID.String(),
		Status:         wf.Status.String(),
		Comments:       wf.Comments,
		CreatedAt:      wf.CreatedAt,
		UpdatedAt:      wf.UpdatedAt,
	}
}

func (d *approvalWorkflowDocument) toModel() *model.ApprovalWorkflow {
	return &model.ApprovalWorkflow{
		ID:             types.WorkflowID(d.ID),
		RiskID:         types.RiskID(d.RiskID),
		OrganizationID: types.OrganizationID(d.OrganizationID),
		RequesterID:    types.UserID(d.RequesterID),
		ApproverID:     types.UserID(d.ApproverID),
		Status:         types.WorkflowStatus(d.Status),
		Comments:       d.Comments,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// approvalLockDocument marks the single pending workflow of a risk. The lock
// document ID is the risk ID, so creating a second one inside a transaction
// conflicts.
type approvalLockDocument struct {
	WorkflowID string    `firestore:"workflow_id"`
	CreatedAt  time.Time `firestore:"created_at"`
}

type approvalWorkflowRepository struct {
	collections
	client *firestore.Client
}

func (r *approvalWorkflowRepository) CreatePending(ctx context.Context, wf *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error) {
	riskRef := r.client.Collection(r.risks()).Doc(wf.RiskID.String())
	lockRef := r.client.Collection(r.locks()).Doc(wf.RiskID.String())
	wfRef := r.client.Collection(r.workflows()).Doc(wf.ID.String())

	stored := wf.Copy()
	stored.Status = types.WorkflowStatusPending

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		riskSnap, err := tx.Get(riskRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("risk_id", wf.RiskID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", wf.RiskID))
		}
		if _, err := decodeRisk(riskSnap, wf.OrganizationID); err != nil {
			return err
		}

		lockSnap, err := tx.Get(lockRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get approval lock", goerr.V("risk_id", wf.RiskID))
		}
		if err == nil && lockSnap.Exists() {
			return goerr.Wrap(interfaces.ErrPendingExists, "risk already has a pending workflow", goerr.V("risk_id", wf.RiskID))
		}

		if err := tx.Create(wfRef, toApprovalWorkflowDocument(stored)); err != nil {
			return goerr.Wrap(err, "failed to create approval workflow")
		}
		return tx.Set(lockRef, &approvalLockDocument{
			WorkflowID: stored.ID.String(),
			CreatedAt:  stored.CreatedAt,
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create pending workflow", goerr.V("risk_id", wf.RiskID))
	}

	return stored, nil
}

func (r *approvalWorkflowRepository) Get(ctx context.Context, orgID types.OrganizationID, id types.WorkflowID) (*model.ApprovalWorkflow, error) {
	doc, err := r.client.Collection(r.workflows()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "approval workflow not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get approval workflow", goerr.V("id", id))
	}
	return decodeWorkflow(doc, orgID)
}

func decodeWorkflow(doc *firestore.DocumentSnapshot, orgID types.OrganizationID) (*model.ApprovalWorkflow, error) {
	var wfDoc approvalWorkflowDocument
	if err := doc.DataTo(&wfDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal approval workflow", goerr.V("id", doc.Ref.ID))
	}
	if wfDoc.OrganizationID != orgID.String() {
		return nil, goerr.Wrap(ErrNotFound, "approval workflow not found", goerr.V("id", doc.Ref.ID), goerr.V("organization_id", orgID))
	}
	return wfDoc.toModel(), nil
}

func (r *approvalWorkflowRepository) GetPending(ctx context.Context, orgID types.OrganizationID, riskID types.RiskID) (*model.ApprovalWorkflow, error) {
	lockSnap, err := r.client.Collection(r.locks()).Doc(riskID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "no pending approval workflow", goerr.V("risk_id", riskID))
		}
		return nil, goerr.Wrap(err, "failed to get approval lock", goerr.V("risk_id", riskID))
	}

	var lock approvalLockDocument
	if err := lockSnap.DataTo(&lock); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal approval lock", goerr.V("risk_id", riskID))
	}

	return r.Get(ctx, orgID, types.WorkflowID(lock.WorkflowID))
}

func (r *approvalWorkflowRepository) ListByRisk(ctx context.Context, orgID types.OrganizationID, riskID types.RiskID, page model.PageRequest) ([]*model.ApprovalWorkflow, int, error) {
	iter := r.client.Collection(r.workflows()).
		Where("risk_id", "==", riskID.String()).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	matched := make([]*model.ApprovalWorkflow, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to iterate approval workflows", goerr.V("risk_id", riskID))
		}

		var wfDoc approvalWorkflowDocument
		if err := doc.DataTo(&wfDoc); err != nil {
			return nil, 0, goerr.Wrap(err, "failed to unmarshal approval workflow", goerr.V("id", doc.Ref.ID))
		}
		if wfDoc.OrganizationID != orgID.String() {
			continue
		}
		matched = append(matched, wfDoc.toModel())
	}

	// created_at ordering comes from the index; ties are broken here
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return model.Window(matched, page), len(matched), nil
}

func (r *approvalWorkflowRepository) Decide(ctx context.Context, orgID types.OrganizationID, d model.Decision) (*model.ApprovalWorkflow, error) {
	if !d.Status.IsTerminal() {
		return nil, goerr.New("decision must be terminal", goerr.V("status", d.Status))
	}

	wfRef := r.client.Collection(r.workflows()).Doc(d.WorkflowID.String())

	var updated *model.ApprovalWorkflow
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// all reads must precede writes in a firestore transaction
		wfSnap, err := tx.Get(wfRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "approval workflow not found", goerr.V("id", d.WorkflowID))
			}
			return goerr.Wrap(err, "failed to get approval workflow", goerr.V("id", d.WorkflowID))
		}
		wf, err := decodeWorkflow(wfSnap, orgID)
		if err != nil {
			return err
		}
		if !wf.IsPending() {
			return goerr.Wrap(interfaces.ErrNotPending, "approval workflow already decided",
				goerr.V("id", wf.ID), goerr.V("status", wf.Status))
		}

		riskRef := r.client.Collection(r.risks()).Doc(wf.RiskID.String())
		var risk *model.Risk
		if d.RiskStatus != "" {
			riskSnap, err := tx.Get(riskRef)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("risk_id", wf.RiskID))
				}
				return goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", wf.RiskID))
			}
			if risk, err = decodeRisk(riskSnap, orgID); err != nil {
				return err
			}
		}

		updated = d.Apply(wf)
		if err := tx.Set(wfRef, toApprovalWorkflowDocument(updated)); err != nil {
			return goerr.Wrap(err, "failed to update approval workflow")
		}

		if risk != nil {
			if err := tx.Update(riskRef, []firestore.Update{
				{Path: "status", Value: d.RiskStatus.String()},
				{Path: "updated_at", Value: d.DecidedAt},
			}); err != nil {
				return goerr.Wrap(err, "failed to cascade risk status")
			}
		}

		return tx.Delete(r.client.Collection(r.locks()).Doc(wf.RiskID.String()))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decide approval workflow", goerr.V("id", d.WorkflowID))
	}

	return updated, nil
}
