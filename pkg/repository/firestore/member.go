package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

type memberDocument struct {
	UserID         string `firestore:"user_id"`
	OrganizationID string `firestore:"organization_id"`
	Role           string `firestore:"role"`
	Name           string `firestore:"name"`
	Email          string `firestore:"email"`
}

func (d *memberDocument) toModel() *model.Member {
	return &model.Member{
		UserID:         types.UserID(d.UserID),
		OrganizationID: types.OrganizationID(d.OrganizationID),
		Role:           types.Role(d.Role),
		Name:           d.Name,
		Email:          d.Email,
	}
}

type memberRepository struct {
	collections
	client *firestore.Client
}

func (r *memberRepository) Get(ctx context.Context, userID types.UserID) (*model.Member, error) {
	doc, err := r.client.Collection(r.members()).Doc(userID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "member not found", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get member", goerr.V("user_id", userID))
	}

	var memberDoc memberDocument
	if err := doc.DataTo(&memberDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal member", goerr.V("user_id", userID))
	}
	return memberDoc.toModel(), nil
}

func (r *memberRepository) Put(ctx context.Context, member *model.Member) error {
	doc := &memberDocument{
		UserID:         member.UserID.String(),
		OrganizationID: member.OrganizationID.String(),
		Role:           member.Role.String(),
		Name:           member.Name,
		Email:          member.Email,
	}
	if _, err := r.client.Collection(r.members()).Doc(doc.UserID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put member", goerr.V("user_id", member.UserID))
	}
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, userID types.UserID) error {
	if _, err := r.client.Collection(r.members()).Doc(userID.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete member", goerr.V("user_id", userID))
	}
	return nil
}

func (r *memberRepository) List(ctx context.Context, orgID types.OrganizationID) ([]*model.Member, error) {
	return r.collect(r.client.Collection(r.members()).
		Where("organization_id", "==", orgID.String()).
		Documents(ctx))
}

func (r *memberRepository) ListAll(ctx context.Context) ([]*model.Member, error) {
	return r.collect(r.client.Collection(r.members()).Documents(ctx))
}

func (r *memberRepository) collect(iter *firestore.DocumentIterator) ([]*model.Member, error) {
	defer iter.Stop()

	members := make([]*model.Member, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate members")
		}

		var memberDoc memberDocument
		if err := doc.DataTo(&memberDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal member", goerr.V("id", doc.Ref.ID))
		}
		members = append(members, memberDoc.toModel())
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].UserID < members[j].UserID
	})
	return members, nil
}
