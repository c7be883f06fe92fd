package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/async"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

const defaultNotifyTimeout = 10 * time.Second

// Dispatcher runs fn outside the caller's request
type Dispatcher func(ctx context.Context, fn func(ctx context.Context) error)

type UseCases struct {
	repo          interfaces.Repository
	matrix        *model.RiskMatrix
	notifier      interfaces.Notifier
	clock         func() time.Time
	dispatch      Dispatcher
	notifyTimeout time.Duration

	Risk     *RiskUseCase
	Approval *ApprovalUseCase
	Member   *MemberUseCase
}

type Option func(*UseCases)

// WithRiskMatrix overrides the default risk level matrix
func WithRiskMatrix(m *model.RiskMatrix) Option {
	return func(uc *UseCases) {
		uc.matrix = m
	}
}

// WithNotifier sets the destination of workflow events
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithDispatcher replaces async.Dispatch for event delivery
func WithDispatcher(d Dispatcher) Option {
	return func(uc *UseCases) {
		uc.dispatch = d
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.notifyTimeout = d
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:          repo,
		matrix:        model.DefaultRiskMatrix(),
		clock:         func() time.Time { return time.Now().UTC() },
		dispatch:      async.Dispatch,
		notifyTimeout: defaultNotifyTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Member = &MemberUseCase{repo: repo}
	uc.Risk = &RiskUseCase{
		repo:    repo,
		members: uc.Member,
		matrix:  uc.matrix,
		clock:   uc.clock,
	}
	uc.Approval = &ApprovalUseCase{
		repo:          repo,
		members:       uc.Member,
		notifier:      uc.notifier,
		clock:         uc.clock,
		dispatch:      uc.dispatch,
		notifyTimeout: uc.notifyTimeout,
	}

	return uc
}

// MemberUseCase resolves caller identities into organization memberships
type MemberUseCase struct {
	repo interfaces.Repository
}

// Resolve returns the membership of the caller
func (uc *MemberUseCase) Resolve(ctx context.Context, userID types.UserID) (*model.Member, error) {
	if userID == "" {
		return nil, goerr.Wrap(ErrNotMember, "empty caller identity")
	}

	member, err := uc.repo.Member().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrNotMember, "caller has no membership", goerr.V(UserIDKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to get member", goerr.V(UserIDKey, userID))
	}
	return member, nil
}

// Import makes the stored memberships match members exactly. Users absent
// from members lose their membership and with it every role.
func (uc *MemberUseCase) Import(ctx context.Context, members []*model.Member) error {
	keep := make(map[types.UserID]struct{}, len(members))
	for _, m := range members {
		if err := m.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(UserIDKey, m.UserID))
		}
		keep[m.UserID] = struct{}{}
	}
	for _, m := range members {
		if err := uc.repo.Member().Put(ctx, m); err != nil {
			return goerr.Wrap(err, "failed to put member", goerr.V(UserIDKey, m.UserID))
		}
	}

	stored, err := uc.repo.Member().ListAll(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list members")
	}
	for _, m := range stored {
		if _, ok := keep[m.UserID]; ok {
			continue
		}
		if err := uc.repo.Member().Delete(ctx, m.UserID); err != nil {
			return goerr.Wrap(err, "failed to revoke member", goerr.V(UserIDKey, m.UserID))
		}
		logging.From(ctx).Info("Membership revoked",
			"user_id", m.UserID, "organization_id", m.OrganizationID)
	}
	return nil
}

// lookupMembers fetches members of orgID by ID, skipping unknown ones and
// members of other organizations
func (uc *MemberUseCase) lookupMembers(ctx context.Context, orgID types.OrganizationID, ids ...types.UserID) (map[types.UserID]*model.Member, error) {
	found := make(map[types.UserID]*model.Member, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := found[id]; ok {
			continue
		}
		m, err := uc.repo.Member().Get(ctx, id)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return nil, goerr.Wrap(err, "failed to get member", goerr.V(UserIDKey, id))
		}
		if m.OrganizationID != orgID {
			continue
		}
		found[id] = m
	}
	return found, nil
}
