package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// RiskInput carries the caller-editable fields of a risk
type RiskInput struct {
	Title       string
	Description string
	Category    types.RiskCategory
	Impact      types.Severity
	Probability types.Severity
	Status      types.RiskStatus
	OwnerID     types.UserID
}

type RiskUseCase struct {
	repo    interfaces.Repository
	members *MemberUseCase
	matrix  *model.RiskMatrix
	clock   func() time.Time
}

// Classify exposes the configured risk level matrix
func (uc *RiskUseCase) Classify(impact, probability types.Severity) types.Severity {
	return uc.matrix.Classify(impact, probability)
}

// CreateRisk stores a new risk in the caller's organization
func (uc *RiskUseCase) CreateRisk(ctx context.Context, actorID types.UserID, input RiskInput) (*model.Risk, error) {
	caller, err := uc.members.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if input.Status == types.RiskStatusAccepted {
		return nil, goerr.Wrap(ErrInvalidInput, "risk can only become accepted through an approved workflow")
	}
	if err := uc.validateOwner(ctx, caller.OrganizationID, input.OwnerID); err != nil {
		return nil, err
	}

	now := uc.clock()
	risk := &model.Risk{
		ID:             types.NewRiskID(),
		OrganizationID: caller.OrganizationID,
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		Impact:         input.Impact,
		Probability:    input.Probability,
		Status:         input.Status.Normalize(),
		OwnerID:        input.OwnerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := risk.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error())
	}
	risk.Classify(uc.matrix)

	created, err := uc.repo.Risk().Create(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}
	return created, nil
}

// GetRisk returns a risk of the caller's organization
func (uc *RiskUseCase) GetRisk(ctx context.Context, actorID types.UserID, riskID types.RiskID) (*model.Risk, error) {
	caller, err := uc.members.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return uc.getRisk(ctx, caller.OrganizationID, riskID)
}

func (uc *RiskUseCase) getRisk(ctx context.Context, orgID types.OrganizationID, riskID types.RiskID) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, orgID, riskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}
	return risk, nil
}

// ListRisks returns one page of the caller organization's risks, oldest first
func (uc *RiskUseCase) ListRisks(ctx context.Context, actorID types.UserID, page model.PageRequest) (*model.Page[*model.Risk], error) {
	caller, err := uc.members.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	risks, err := uc.repo.Risk().List(ctx, caller.OrganizationID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks", goerr.V(OrgIDKey, caller.OrganizationID))
	}

	return model.NewPage(model.Window(risks, page), len(risks), page), nil
}

// UpdateRisk replaces the editable fields of a risk and recomputes its level
func (uc *RiskUseCase) UpdateRisk(ctx context.Context, actorID types.UserID, riskID types.RiskID, input RiskInput) (*model.Risk, error) {
	caller, err := uc.members.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.getRisk(ctx, caller.OrganizationID, riskID)
	if err != nil {
		return nil, err
	}

	status := input.Status.Normalize()
	if input.Status == "" {
		status = existing.Status
	}
	if status == types.RiskStatusAccepted && existing.Status != types.RiskStatusAccepted {
		return nil, goerr.Wrap(ErrInvalidInput, "risk can only become accepted through an approved workflow",
			goerr.V(RiskIDKey, riskID))
	}
	if err := uc.validateOwner(ctx, caller.OrganizationID, input.OwnerID); err != nil {
		return nil, err
	}

	updated := existing.Copy()
	updated.Title = input.Title
	updated.Description = input.Description
	updated.Category = input.Category
	updated.Impact = input.Impact
	updated.Probability = input.Probability
	updated.Status = status
	updated.OwnerID = input.OwnerID
	updated.UpdatedAt = uc.clock()

	if err := updated.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(RiskIDKey, riskID))
	}
	updated.Classify(uc.matrix)

	// An omitted status is not written back, so an approval that lands
	// between the read above and this write keeps its cascade.
	if input.Status == "" {
		updated.Status = ""
	}

	saved, err := uc.repo.Risk().Update(ctx, updated, existing.Status)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
		}
		if errors.Is(err, interfaces.ErrStatusChanged) {
			return nil, goerr.Wrap(ErrStatusChanged, "risk status changed while updating",
				goerr.V(RiskIDKey, riskID), goerr.V("expected", existing.Status))
		}
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V(RiskIDKey, riskID))
	}
	return saved, nil
}

// validateOwner requires a non-empty owner to be a member of the organization
func (uc *RiskUseCase) validateOwner(ctx context.Context, orgID types.OrganizationID, ownerID types.UserID) error {
	if ownerID == "" {
		return nil
	}

	owner, err := uc.repo.Member().Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrInvalidInput, "owner is not a member of the organization", goerr.V(UserIDKey, ownerID))
		}
		return goerr.Wrap(err, "failed to get owner", goerr.V(UserIDKey, ownerID))
	}
	if owner.OrganizationID != orgID {
		return goerr.Wrap(ErrInvalidInput, "owner is not a member of the organization", goerr.V(UserIDKey, ownerID))
	}
	return nil
}
