package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

const workflowColumns = `id, risk_id, organization_id, requester_id, approver_id, status, comments, created_at, updated_at`

type workflowRow struct {
	ID             string
	RiskID         string
	OrganizationID string
	RequesterID    string
	ApproverID     string
	Status         string
	Comments       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *workflowRow) dest() []any {
	return []any{
		&r.ID, &r.RiskID, &r.OrganizationID, &r.RequesterID, &r.ApproverID,
		&r.Status, &r.Comments, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *workflowRow) toModel() *model.ApprovalWorkflow {
	return &model.ApprovalWorkflow{
		ID:             types.WorkflowID(r.ID),
		RiskID:         types.RiskID(r.RiskID),
		OrganizationID: types.OrganizationID(r.OrganizationID),
		RequesterID:    types.UserID(r.RequesterID),
		ApproverID:     types.UserID(r.ApproverID),
		Status:         types.WorkflowStatus(r.Status),
		Comments:       r.Comments,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type approvalWorkflowRepository struct {
	db DB
}

// CreatePending inserts the workflow only if the risk exists in the
// organization. The partial unique index on pending rows rejects a second
// pending workflow for the same risk.
func (r *approvalWorkflowRepository) CreatePending(ctx context.Context, wf *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error) {
	stored := wf.Copy()
	stored.Status = types.WorkflowStatusPending

	tag, err := r.db.Exec(ctx,
		`INSERT INTO approval_workflows (`+workflowColumns+`)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE EXISTS (SELECT 1 FROM risks WHERE id = $2 AND organization_id = $3)`,
		stored.ID.String(), stored.RiskID.String(), stored.OrganizationID.String(),
		stored.RequesterID.String(), stored.ApproverID.String(), stored.Status.String(),
		stored.Comments, stored.CreatedAt, stored.UpdatedAt,
	)
	if err != nil {
		return nil, goerr.Wrap(mapPostgresError(err), "failed to create pending workflow", goerr.V("risk_id", wf.RiskID))
	}
	if tag.RowsAffected() == 0 {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("risk_id", wf.RiskID))
	}

	return stored, nil
}

func (r *approvalWorkflowRepository) Get(ctx context.Context, orgID types.OrganizationID, id types.WorkflowID) (*model.ApprovalWorkflow, error) {
	var row workflowRow
	err := r.db.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM approval_workflows WHERE id = $1 AND organization_id = $2`,
		id.String(), orgID.String(),
	).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "approval workflow not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(mapPostgresError(err), "failed to get approval workflow", goerr.V("id", id))
	}
	return row.toModel(), nil
}

func (r *approvalWorkflowRepository) GetPending(ctx context.Context, orgID types.OrganizationID, riskID types.RiskID) (*model.ApprovalWorkflow, error) {
	var row workflowRow
	err := r.db.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM approval_workflows
		WHERE risk_id = $1 AND organization_id = $2 AND status = 'pending'`,
		riskID.String(), orgID.String(),
	).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "no pending approval workflow", goerr.V("risk_id", riskID))
		}
		return nil, goerr.Wrap(mapPostgresError(err), "failed to get pending workflow", goerr.V("risk_id", riskID))
	}
	return row.toModel(), nil
}

func (r *approvalWorkflowRepository) ListByRisk(ctx context.Context, orgID types.OrganizationID, riskID types.RiskID, page model.PageRequest) ([]*model.ApprovalWorkflow, int, error) {
	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM approval_workflows WHERE risk_id = $1 AND organization_id = $2`,
		riskID.String(), orgID.String(),
	).Scan(&total); err != nil {
		return nil, 0, goerr.Wrap(mapPostgresError(err), "failed to count approval workflows", goerr.V("risk_id", riskID))
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+workflowColumns+` FROM approval_workflows
		WHERE risk_id = $1 AND organization_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		riskID.String(), orgID.String(), page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, goerr.Wrap(mapPostgresError(err), "failed to list approval workflows", goerr.V("risk_id", riskID))
	}
	defer rows.Close()

	workflows := make([]*model.ApprovalWorkflow, 0)
	for rows.Next() {
		var row workflowRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, 0, goerr.Wrap(err, "failed to scan approval workflow")
		}
		workflows = append(workflows, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, goerr.Wrap(mapPostgresError(err), "failed to iterate approval workflows")
	}

	return workflows, int(total), nil
}

// Decide updates the workflow with a status guard so only one concurrent
// decision can succeed, then cascades the risk status in the same transaction.
func (r *approvalWorkflowRepository) Decide(ctx context.Context, orgID types.OrganizationID, d model.Decision) (*model.ApprovalWorkflow, error) {
	if !d.Status.IsTerminal() {
		return nil, goerr.New("decision must be terminal", goerr.V("status", d.Status))
	}

	var updated *model.ApprovalWorkflow
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		var row workflowRow
		err := tx.QueryRow(ctx,
			`UPDATE approval_workflows SET status = $1, comments = $2, updated_at = $3
			WHERE id = $4 AND organization_id = $5 AND status = 'pending'
			RETURNING `+workflowColumns,
			d.Status.String(), d.Comments, d.DecidedAt, d.WorkflowID.String(), orgID.String(),
		).Scan(row.dest()...)
		if errors.Is(err, pgx.ErrNoRows) {
			return explainNotDecided(ctx, tx, orgID, d.WorkflowID)
		}
		if err != nil {
			return goerr.Wrap(mapPostgresError(err), "failed to update approval workflow")
		}
		updated = row.toModel()

		if d.RiskStatus == "" {
			return nil
		}

		tag, err := tx.Exec(ctx,
			`UPDATE risks SET status = $1, updated_at = $2 WHERE id = $3 AND organization_id = $4`,
			d.RiskStatus.String(), d.DecidedAt, updated.RiskID.String(), orgID.String(),
		)
		if err != nil {
			return goerr.Wrap(mapPostgresError(err), "failed to cascade risk status")
		}
		if tag.RowsAffected() == 0 {
			return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("risk_id", updated.RiskID))
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decide approval workflow", goerr.V("id", d.WorkflowID))
	}

	return updated, nil
}

// explainNotDecided distinguishes a missing workflow from one that already left pending
func explainNotDecided(ctx context.Context, q querier, orgID types.OrganizationID, id types.WorkflowID) error {
	var current string
	err := q.QueryRow(ctx,
		`SELECT status FROM approval_workflows WHERE id = $1 AND organization_id = $2`,
		id.String(), orgID.String(),
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return goerr.Wrap(ErrNotFound, "approval workflow not found", goerr.V("id", id))
	}
	if err != nil {
		return goerr.Wrap(mapPostgresError(err), "failed to read approval workflow", goerr.V("id", id))
	}
	return goerr.Wrap(interfaces.ErrNotPending, "approval workflow already decided",
		goerr.V("id", id), goerr.V("status", current))
}
