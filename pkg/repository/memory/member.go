package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

type memberRepository struct {
	mu      sync.RWMutex
	members map[types.UserID]*model.Member
}

func newMemberRepository() *memberRepository {
	return &memberRepository{
		members: make(map[types.UserID]*model.Member),
	}
}

func (r *memberRepository) Get(ctx context.Context, userID types.UserID) (*model.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[userID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "member not found", goerr.V("user_id", userID))
	}
	return m.Copy(), nil
}

func (r *memberRepository) Put(ctx context.Context, member *model.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[member.UserID] = member.Copy()
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, userID types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, userID)
	return nil
}

func (r *memberRepository) List(ctx context.Context, orgID types.OrganizationID) ([]*model.Member, error) {
	return r.filter(func(m *model.Member) bool { return m.OrganizationID == orgID }), nil
}

func (r *memberRepository) ListAll(ctx context.Context) ([]*model.Member, error) {
	return r.filter(func(*model.Member) bool { return true }), nil
}

func (r *memberRepository) filter(match func(*model.Member) bool) []*model.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*model.Member, 0)
	for _, m := range r.members {
		if match(m) {
			members = append(members, m.Copy())
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].UserID < members[j].UserID
	})
	return members
}
