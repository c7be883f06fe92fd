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

const riskColumns = `id, organization_id, title, description, category, impact, probability, level, status, owner_id, created_at, updated_at`

type riskRow struct {
	ID             string
	OrganizationID string
	Title          string
	Description    string
	Category       string
	Impact         string
	Probability    string
	Level          string
	Status         string
	OwnerID        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *riskRow) dest() []any {
	return []any{
		&r.ID, &r.OrganizationID, &r.Title, &r.Description, &r.Category,
		&r.Impact, &r.Probability, &r.Level, &r.Status, &r.OwnerID,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *riskRow) toModel() *model.Risk {
	return &model.Risk{
		ID:             types.RiskID(r.ID),
		OrganizationID: types.OrganizationID(r.OrganizationID),
		Title:          r.Title,
		Description:    r.Description,
		Category:       types.RiskCategory(r.Category),
		Impact:         types.Severity(r.Impact),
		Probability:    types.Severity(r.Probability),
		Level:          types.Severity(r.Level),
		Status:         types.RiskStatus(r.Status),
		OwnerID:        types.UserID(r.OwnerID),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type riskRepository struct {
	db DB
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO risks (`+riskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		risk.ID.String(), risk.OrganizationID.String(), risk.Title, risk.Description,
		risk.Category.String(), risk.Impact.String(), risk.Probability.String(), risk.Level.String(),
		risk.Status.String(), risk.OwnerID.String(), risk.CreatedAt, risk.UpdatedAt,
	)
	if err != nil {
		return nil, goerr.Wrap(mapPostgresError(err), "failed to create risk", goerr.V("id", risk.ID))
	}
	return risk.Copy(), nil
}

func (r *riskRepository) Get(ctx context.Context, orgID types.OrganizationID, id types.RiskID) (*model.Risk, error) {
	return getRisk(ctx, r.db, orgID, id)
}

func getRisk(ctx context.Context, q querier, orgID types.OrganizationID, id types.RiskID) (*model.Risk, error) {
	var row riskRow
	err := q.QueryRow(ctx,
		`SELECT `+riskColumns+` FROM risks WHERE id = $1 AND organization_id = $2`,
		id.String(), orgID.String(),
	).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id), goerr.V("organization_id", orgID))
		}
		return nil, goerr.Wrap(mapPostgresError(err), "failed to get risk", goerr.V("id", id))
	}
	return row.toModel(), nil
}

func (r *riskRepository) List(ctx context.Context, orgID types.OrganizationID) ([]*model.Risk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+riskColumns+` FROM risks WHERE organization_id = $1 ORDER BY created_at, id`,
		orgID.String(),
	)
	if err != nil {
		return nil, goerr.Wrap(mapPostgresError(err), "failed to list risks")
	}
	defer rows.Close()

	risks := make([]*model.Risk, 0)
	for rows.Next() {
		var row riskRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, goerr.Wrap(err, "failed to scan risk")
		}
		risks = append(risks, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(mapPostgresError(err), "failed to iterate risks")
	}

	return risks, nil
}

// Update writes the editable columns. The status column is left alone when
// risk.Status is empty and is otherwise guarded by the expected status, so a
// concurrent approval cascade cannot be overwritten.
func (r *riskRepository) Update(ctx context.Context, risk *model.Risk, expected types.RiskStatus) (*model.Risk, error) {
	var createdAt time.Time
	var status string
	err := r.db.QueryRow(ctx,
		`UPDATE risks SET title = $1, description = $2, category = $3, impact = $4, probability = $5,
			level = $6, status = COALESCE(NULLIF($7, ''), status), owner_id = $8, updated_at = $9
		WHERE id = $10 AND organization_id = $11 AND ($7 = '' OR status = $12)
		RETURNING created_at, status`,
		risk.Title, risk.Description, risk.Category.String(), risk.Impact.String(), risk.Probability.String(),
		risk.Level.String(), risk.Status.String(), risk.OwnerID.String(), risk.UpdatedAt,
		risk.ID.String(), risk.OrganizationID.String(), expected.String(),
	).Scan(&createdAt, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, explainNotUpdated(ctx, r.db, risk.OrganizationID, risk.ID, expected)
	}
	if err != nil {
		return nil, goerr.Wrap(mapPostgresError(err), "failed to update risk", goerr.V("id", risk.ID))
	}

	updated := risk.Copy()
	updated.CreatedAt = createdAt
	updated.Status = types.RiskStatus(status)
	return updated, nil
}

// explainNotUpdated distinguishes a missing risk from one whose status moved
func explainNotUpdated(ctx context.Context, q querier, orgID types.OrganizationID, id types.RiskID, expected types.RiskStatus) error {
	var current string
	err := q.QueryRow(ctx,
		`SELECT status FROM risks WHERE id = $1 AND organization_id = $2`,
		id.String(), orgID.String(),
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}
	if err != nil {
		return goerr.Wrap(mapPostgresError(err), "failed to read risk", goerr.V("id", id))
	}
	return goerr.Wrap(interfaces.ErrStatusChanged, "risk status changed",
		goerr.V("id", id), goerr.V("expected", expected), goerr.V("actual", current))
}
