package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

type memberRepository struct {
	db DB
}

func scanMember(row pgx.Row) (*model.Member, error) {
	var userID, orgID, role, name, email string
	if err := row.Scan(&userID, &orgID, &role, &name, &email); err != nil {
		return nil, err
	}
	return &model.Member{
		UserID:         types.UserID(userID),
		OrganizationID: types.OrganizationID(orgID),
		Role:           types.Role(role),
		Name:           name,
		Email:          email,
	}, nil
}

func (r *memberRepository) Get(ctx context.Context, userID types.UserID) (*model.Member, error) {
	m, err := scanMember(r.db.QueryRow(ctx,
		`SELECT user_id, organization_id, role, name, email FROM members WHERE user_id = $1`,
		userID.String(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "member not found", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(mapPostgresError(err), "failed to get member", goerr.V("user_id", userID))
	}
	return m, nil
}

func (r *memberRepository) Put(ctx context.Context, member *model.Member) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO members (user_id, organization_id, role, name, email)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			organization_id = EXCLUDED.organization_id,
			role = EXCLUDED.role,
			name = EXCLUDED.name,
			email = EXCLUDED.email`,
		member.UserID.String(), member.OrganizationID.String(), member.Role.String(), member.Name, member.Email,
	)
	if err != nil {
		return goerr.Wrap(mapPostgresError(err), "failed to put member", goerr.V("user_id", member.UserID))
	}
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, userID types.UserID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM members WHERE user_id = $1`, userID.String()); err != nil {
		return goerr.Wrap(mapPostgresError(err), "failed to delete member", goerr.V("user_id", userID))
	}
	return nil
}

func (r *memberRepository) List(ctx context.Context, orgID types.OrganizationID) ([]*model.Member, error) {
	return r.query(ctx,
		`SELECT user_id, organization_id, role, name, email FROM members WHERE organization_id = $1 ORDER BY user_id`,
		orgID.String(),
	)
}

func (r *memberRepository) ListAll(ctx context.Context) ([]*model.Member, error) {
	return r.query(ctx, `SELECT user_id, organization_id, role, name, email FROM members ORDER BY user_id`)
}

func (r *memberRepository) query(ctx context.Context, sql string, args ...any) ([]*model.Member, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, goerr.Wrap(mapPostgresError(err), "failed to list members")
	}
	defer rows.Close()

	members := make([]*model.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan member")
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(mapPostgresError(err), "failed to iterate members")
	}
	return members, nil
}
