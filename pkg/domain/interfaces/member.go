package interfaces

import (
	"context"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// MemberRepository stores organization memberships
type MemberRepository interface {
	// Get retrieves the membership of a user
	Get(ctx context.Context, userID types.UserID) (*model.Member, error)

	// Put creates or replaces a membership
	Put(ctx context.Context, member *model.Member) error

	// List retrieves all members of the organization
	List(ctx context.Context, orgID types.OrganizationID) ([]*model.Member, error)

	// ListAll retrieves every membership across organizations
	ListAll(ctx context.Context) ([]*model.Member, error)

	// Delete removes a membership. Deleting an unknown user is not an error.
	Delete(ctx context.Context, userID types.UserID) error
}
