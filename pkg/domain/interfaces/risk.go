package interfaces

import (
	"context"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// RiskRepository stores risks. Every read is scoped to an organization;
// a risk of another organization is reported as ErrNotFound.
type RiskRepository interface {
	// Create stores a new risk. ID and timestamps must be set by the caller.
	Create(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID
	Get(ctx context.Context, orgID types.OrganizationID, id types.RiskID) (*model.Risk, error)

	// List retrieves all risks of the organization ordered by creation time
	List(ctx context.Context, orgID types.OrganizationID) ([]*model.Risk, error)

	// Update replaces the editable fields of an existing risk. An empty
	// risk.Status keeps the stored status untouched. Otherwise the status is
	// written only while the stored one still equals expected, and
	// ErrStatusChanged is returned when it does not.
	Update(ctx context.Context, risk *model.Risk, expected types.RiskStatus) (*model.Risk, error)
}
