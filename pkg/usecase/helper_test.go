package usecase_test

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
	"github.com/WilderMartins/GRC-sub003/pkg/usecase"
)

// recordingNotifier keeps every event it receives
type recordingNotifier struct {
	mu     sync.Mutex
	events []*model.WorkflowEvent
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, ev *model.WorkflowEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) Events() []*model.WorkflowEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*model.WorkflowEvent(nil), n.events...)
}

func syncDispatch(ctx context.Context, fn func(ctx context.Context) error) {
	_ = fn(ctx)
}

type fixture struct {
	repo     *memory.Memory
	uc       *usecase.UseCases
	notifier *recordingNotifier

	clockMu sync.Mutex
	now     time.Time
}

const (
	org1 types.OrganizationID = "O1"
	org2 types.OrganizationID = "O2"

	adminA   types.UserID = "A"
	managerM types.UserID = "M"
	ownerU1  types.UserID = "U1"
	userU2   types.UserID = "U2"
	adminX   types.UserID = "X" // admin of another organization
)

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		repo:     memory.New(),
		notifier: &recordingNotifier{},
		now:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	members := []*model.Member{
		{UserID: adminA, OrganizationID: org1, Role: types.RoleAdmin, Name: "Alice", Email: "alice@o1.example"},
		{UserID: managerM, OrganizationID: org1, Role: types.RoleManager, Name: "Marco"},
		{UserID: ownerU1, OrganizationID: org1, Role: types.RoleUser, Name: "Uma", Email: "uma@o1.example"},
		{UserID: userU2, OrganizationID: org1, Role: types.RoleUser, Name: "Ugo"},
		{UserID: adminX, OrganizationID: org2, Role: types.RoleAdmin, Name: "Xena"},
	}
	for _, m := range members {
		gt.NoError(t, f.repo.Member().Put(ctx, m)).Required()
	}

	base := []usecase.Option{
		usecase.WithNotifier(f.notifier),
		usecase.WithDispatcher(syncDispatch),
		usecase.WithClock(func() time.Time {
			f.clockMu.Lock()
			defer f.clockMu.Unlock()
			f.now = f.now.Add(time.Second)
			return f.now
		}),
	}
	f.uc = usecase.New(f.repo, append(base, opts...)...)
	return f
}

func (f *fixture) createRisk(t *testing.T, owner types.UserID) *model.Risk {
	t.Helper()
	risk, err := f.uc.Risk.CreateRisk(context.Background(), userU2, usecase.RiskInput{
		Title:       "Ransomware on file server",
		Category:    types.RiskCategoryTechnological,
		Impact:      types.SeverityHigh,
		Probability: types.SeverityMedium,
		OwnerID:     owner,
	})
	gt.NoError(t, err).Required()
	return risk
}

// isOnly asserts err matches want and none of the other taxonomy roots
func isOnly(t *testing.T, err error, want error) {
	t.Helper()
	gt.Error(t, err).Is(want)
	for _, root := range []error{
		usecase.ErrForbidden, usecase.ErrInvalidState, usecase.ErrConflict,
		usecase.ErrNotFound, usecase.ErrInvalidInput,
	} {
		if errors.Is(want, root) {
			continue
		}
		gt.B(t, errors.Is(err, root)).False()
	}
}
