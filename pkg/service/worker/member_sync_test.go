package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/repository/memory"
	"github.com/WilderMartins/GRC-sub003/pkg/service/worker"
	"github.com/WilderMartins/GRC-sub003/pkg/usecase"
)

type mockSource struct {
	mu      sync.Mutex
	members []*model.Member
	err     error
	calls   int
}

func (s *mockSource) set(members []*model.Member, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = members
	s.err = err
}

func (s *mockSource) Members() ([]*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*model.Member, len(s.members))
	for i, m := range s.members {
		out[i] = m.Copy()
	}
	return out, nil
}

func (s *mockSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestMemberSyncWorker(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)

	source := &mockSource{}
	source.set([]*model.Member{
		{UserID: "U1", OrganizationID: "O1", Role: types.RoleUser},
	}, nil)

	w := worker.NewMemberSyncWorker(source, uc.Member, 20*time.Millisecond)
	gt.NoError(t, w.Start(ctx)).Required()
	defer w.Stop()

	m, err := repo.Member().Get(ctx, "U1")
	gt.NoError(t, err).Required()
	gt.Value(t, m.Role).Equal(types.RoleUser)

	t.Run("failed reload keeps previous members", func(t *testing.T) {
		source.set(nil, errors.New("file is being rewritten"))
		calls := source.Calls()
		for source.Calls() < calls+2 {
			time.Sleep(5 * time.Millisecond)
		}

		m, err := repo.Member().Get(ctx, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, m.Role).Equal(types.RoleUser)
	})

	t.Run("role change is applied", func(t *testing.T) {
		source.set([]*model.Member{
			{UserID: "U1", OrganizationID: "O1", Role: types.RoleManager},
		}, nil)

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			m, err := repo.Member().Get(ctx, "U1")
			gt.NoError(t, err).Required()
			if m.Role == types.RoleManager {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Fatal("role change was not applied")
	})
}

func TestMemberSyncWorkerInitialFailure(t *testing.T) {
	source := &mockSource{}
	source.set([]*model.Member{{UserID: "U1", OrganizationID: "O1", Role: "owner"}}, nil)

	w := worker.NewMemberSyncWorker(source, usecase.New(memory.New()).Member, time.Minute)
	gt.Error(t, w.Start(context.Background())).Is(usecase.ErrInvalidInput)
}

func TestMemberSyncWorkerRejectsZeroInterval(t *testing.T) {
	w := worker.NewMemberSyncWorker(&mockSource{}, usecase.New(memory.New()).Member, 0)
	gt.Error(t, w.Start(context.Background()))
}
