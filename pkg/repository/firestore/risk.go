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

type riskDocument struct {
	ID             string    `firestore:"id"`
	OrganizationID string    `firestore:"organization_id"`
	Title          string    `firestore:"title"`
	Description    string    `firestore:"description"`
	Category       string    `firestore:"category"`
	Impact         string    `firestore:"impact"`
	Probability    string    `firestore:"probability"`
	Level          string    `firestore:"level"`
	Status         string    `firestore:"status"`
	OwnerID        string    `firestore:"owner_id"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func toRiskDocument(r *model.Risk) *riskDocument {
	return &riskDocument{
		ID:             r.ID.String(),
		OrganizationID: r.OrganizationID.String(),
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category.String(),
		Impact:         r.Impact.String(),
		Probability:    r.Probability.String(),
		Level:          r.Level.String(),
		Status:         r.Status.String(),
		OwnerID:        r.OwnerID.String(),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (d *riskDocument) toModel() *model.Risk {
	return &model.Risk{
		ID:             types.RiskID(d.ID),
		OrganizationID: types.OrganizationID(d.OrganizationID),
		Title:          d.Title,
		Description:    d.Description,
		Category:       types.RiskCategory(d.Category),
		Impact:         types.Severity(d.Impact),
		Probability:    types.Severity(d.Probability),
		Level:          types.Severity(d.Level),
		Status:         types.RiskStatus(d.Status),
		OwnerID:        types.UserID(d.OwnerID),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type riskRepository struct {
	collections
	client *firestore.Client
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	docRef := r.client.Collection(r.risks()).Doc(risk.ID.String())
	if _, err := docRef.Create(ctx, toRiskDocument(risk)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(err, "risk already exists", goerr.V("id", risk.ID))
		}
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V("id", risk.ID))
	}

	return risk.Copy(), nil
}

func (r *riskRepository) Get(ctx context.Context, orgID types.OrganizationID, id types.RiskID) (*model.Risk, error) {
	doc, err := r.client.Collection(r.risks()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	return decodeRisk(doc, orgID)
}

// decodeRisk unmarshals a risk snapshot and hides risks of other organizations
func decodeRisk(doc *firestore.DocumentSnapshot, orgID types.OrganizationID) (*model.Risk, error) {
	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", doc.Ref.ID))
	}
	if riskDoc.OrganizationID != orgID.String() {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", doc.Ref.ID), goerr.V("organization_id", orgID))
	}
	return riskDoc.toModel(), nil
}

func (r *riskRepository) List(ctx context.Context, orgID types.OrganizationID) ([]*model.Risk, error) {
	iter := r.client.Collection(r.risks()).
		Where("organization_id", "==", orgID.String()).
		Documents(ctx)
	defer iter.Stop()

	risks := make([]*model.Risk, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", doc.Ref.ID))
		}
		risks = append(risks, riskDoc.toModel())
	}

	sort.Slice(risks, func(i, j int) bool {
		if risks[i].CreatedAt.Equal(risks[j].CreatedAt) {
			return risks[i].ID < risks[j].ID
		}
		return risks[i].CreatedAt.Before(risks[j].CreatedAt)
	})

	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk, expected types.RiskStatus) (*model.Risk, error) {
	docRef := r.client.Collection(r.risks()).Doc(risk.ID.String())

	var updated *model.Risk
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", risk.ID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V("id", risk.ID))
		}

		existing, err := decodeRisk(doc, risk.OrganizationID)
		if err != nil {
			return err
		}

		updated = risk.Copy()
		updated.CreatedAt = existing.CreatedAt
		if updated.Status == "" {
			updated.Status = existing.Status
		} else if existing.Status != expected {
			return goerr.Wrap(interfaces.ErrStatusChanged, "risk status changed",
				goerr.V("id", risk.ID), goerr.V("expected", expected), goerr.V("actual", existing.Status))
		}
		return tx.Set(docRef, toRiskDocument(updated))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V("id", risk.ID))
	}

	return updated, nil
}
