package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/repository/firestore"
	"github.com/WilderMartins/GRC-sub003/pkg/repository/memory"
	"github.com/WilderMartins/GRC-sub003/pkg/repository/postgres"
)

func newRisk(orgID types.OrganizationID, owner types.UserID, at time.Time) *model.Risk {
	return &model.Risk{
		ID:             types.NewRiskID(),
		OrganizationID: orgID,
		Title:          "Data center single power feed",
		Description:    "no redundant power line",
		Category:       types.RiskCategoryOperational,
		Impact:         types.SeverityHigh,
		Probability:    types.SeverityMedium,
		Level:          types.SeverityHigh,
		Status:         types.RiskStatusOpen,
		OwnerID:        owner,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

// uniqueOrg isolates test data when a shared backend is used
func uniqueOrg(name string) types.OrganizationID {
	return types.OrganizationID(fmt.Sprintf("%s-%d", name, time.Now().UnixNano()))
}

func runRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Risk Create and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		now := time.Now().UTC().Truncate(time.Millisecond)

		risk := newRisk(org, "owner-1", now)
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()

		got, err := repo.Risk().Get(ctx, org, risk.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal(risk.Title)
		gt.Value(t, got.Level).Equal(types.SeverityHigh)
		gt.Value(t, got.OwnerID).Equal(types.UserID("owner-1"))
		gt.B(t, got.CreatedAt.Equal(now)).True()
	})

	t.Run("Risk Get from another organization is not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")

		risk := newRisk(org, "owner-1", time.Now().UTC())
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()

		_, err = repo.Risk().Get(ctx, uniqueOrg("other"), risk.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Risk Update replaces fields and keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		created := time.Now().UTC().Truncate(time.Millisecond)

		risk := newRisk(org, "owner-1", created)
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()

		update := risk.Copy()
		update.Title = "updated"
		update.Status = types.RiskStatusInProgress
		update.CreatedAt = time.Time{}
		update.UpdatedAt = created.Add(time.Minute)

		updated, err := repo.Risk().Update(ctx, update, types.RiskStatusOpen)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Title).Equal("updated")
		gt.B(t, updated.CreatedAt.Equal(created)).True()

		got, err := repo.Risk().Get(ctx, org, risk.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.RiskStatusInProgress)
	})

	t.Run("Risk Update of missing risk", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Risk().Update(context.Background(), newRisk(uniqueOrg("org"), "", time.Now().UTC()), types.RiskStatusOpen)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Risk Update with empty status keeps the stored status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		created := time.Now().UTC().Truncate(time.Millisecond)

		risk := newRisk(org, "owner-1", created)
		risk.Status = types.RiskStatusAccepted
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()

		update := risk.Copy()
		update.Title = "renamed"
		update.Status = ""
		update.UpdatedAt = created.Add(time.Minute)

		updated, err := repo.Risk().Update(ctx, update, types.RiskStatusOpen)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.RiskStatusAccepted)

		got, err := repo.Risk().Get(ctx, org, risk.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("renamed")
		gt.Value(t, got.Status).Equal(types.RiskStatusAccepted)
	})

	t.Run("Risk Update rejects a stale expected status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		created := time.Now().UTC().Truncate(time.Millisecond)

		risk := newRisk(org, "owner-1", created)
		risk.Status = types.RiskStatusAccepted
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()

		update := risk.Copy()
		update.Title = "renamed"
		update.Status = types.RiskStatusInProgress

		_, err = repo.Risk().Update(ctx, update, types.RiskStatusOpen)
		gt.Error(t, err).Is(interfaces.ErrStatusChanged)

		got, err := repo.Risk().Get(ctx, org, risk.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal(risk.Title)
		gt.Value(t, got.Status).Equal(types.RiskStatusAccepted)
	})

	t.Run("Risk List is scoped and ordered", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		base := time.Now().UTC().Truncate(time.Millisecond)

		first := newRisk(org, "", base)
		second := newRisk(org, "", base.Add(time.Second))
		foreign := newRisk(uniqueOrg("other"), "", base)
		for _, r := range []*model.Risk{second, foreign, first} {
			_, err := repo.Risk().Create(ctx, r)
			gt.NoError(t, err).Required()
		}

		risks, err := repo.Risk().List(ctx, org)
		gt.NoError(t, err).Required()
		gt.A(t, risks).Length(2)
		gt.Value(t, risks[0].ID).Equal(first.ID)
		gt.Value(t, risks[1].ID).Equal(second.ID)
	})

	t.Run("Member Put Get List", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		userID := types.UserID(fmt.Sprintf("user-%d", time.Now().UnixNano()))

		gt.NoError(t, repo.Member().Put(ctx, &model.Member{
			UserID: userID, OrganizationID: org, Role: types.RoleUser, Name: "Bia",
		})).Required()
		gt.NoError(t, repo.Member().Put(ctx, &model.Member{
			UserID: userID, OrganizationID: org, Role: types.RoleManager, Name: "Bia",
		})).Required()

		got, err := repo.Member().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Role).Equal(types.RoleManager)

		members, err := repo.Member().List(ctx, org)
		gt.NoError(t, err).Required()
		gt.A(t, members).Length(1)

		_, err = repo.Member().Get(ctx, "nobody")
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Member Delete and ListAll", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		suffix := time.Now().UnixNano()
		kept := types.UserID(fmt.Sprintf("kept-%d", suffix))
		gone := types.UserID(fmt.Sprintf("gone-%d", suffix))

		gt.NoError(t, repo.Member().Put(ctx, &model.Member{
			UserID: kept, OrganizationID: uniqueOrg("org"), Role: types.RoleAdmin,
		})).Required()
		gt.NoError(t, repo.Member().Put(ctx, &model.Member{
			UserID: gone, OrganizationID: uniqueOrg("other"), Role: types.RoleUser,
		})).Required()

		gt.NoError(t, repo.Member().Delete(ctx, gone)).Required()
		gt.NoError(t, repo.Member().Delete(ctx, gone))

		_, err := repo.Member().Get(ctx, gone)
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		all, err := repo.Member().ListAll(ctx)
		gt.NoError(t, err).Required()
		seen := map[types.UserID]bool{}
		for _, m := range all {
			seen[m.UserID] = true
		}
		gt.B(t, seen[kept]).True()
		gt.B(t, seen[gone]).False()
	})

	t.Run("CreatePending enforces a single pending workflow", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		now := time.Now().UTC().Truncate(time.Millisecond)

		risk := newRisk(org, "owner-1", now)
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()

		wf, err := repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", now))
		gt.NoError(t, err).Required()
		gt.Value(t, wf.ApproverID).Equal(types.UserID("owner-1"))

		_, err = repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-2", now))
		gt.Error(t, err).Is(interfaces.ErrPendingExists)

		pending, err := repo.ApprovalWorkflow().GetPending(ctx, org, risk.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, pending.ID).Equal(wf.ID)
	})

	t.Run("CreatePending for missing risk", func(t *testing.T) {
		repo := newRepo(t)
		risk := newRisk(uniqueOrg("org"), "owner-1", time.Now().UTC())
		_, err := repo.ApprovalWorkflow().CreatePending(context.Background(), model.NewApprovalWorkflow(risk, "m", time.Now().UTC()))
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("concurrent CreatePending admits exactly one", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		now := time.Now().UTC().Truncate(time.Millisecond)

		risk := newRisk(org, "owner-1", now)
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()

		const workers = 10
		var wg sync.WaitGroup
		results := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", now))
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
				continue
			}
			// firestore may surface contention as an aborted transaction instead
			if !errors.Is(err, interfaces.ErrPendingExists) {
				t.Logf("CreatePending failed: %v", err)
			}
		}
		gt.Number(t, succeeded).Equal(1)
	})

	t.Run("Decide approve cascades risk to accepted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		now := time.Now().UTC().Truncate(time.Millisecond)

		risk := newRisk(org, "owner-1", now)
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()
		wf, err := repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", now))
		gt.NoError(t, err).Required()

		decidedAt := now.Add(time.Minute)
		d := model.NewDecision(wf.ID, types.WorkflowStatusApproved, "residual risk acceptable", decidedAt)
		decided, err := repo.ApprovalWorkflow().Decide(ctx, org, d)
		gt.NoError(t, err).Required()
		gt.Value(t, decided.Status).Equal(types.WorkflowStatusApproved)
		gt.Value(t, decided.Comments).Equal("residual risk acceptable")
		gt.B(t, decided.UpdatedAt.Equal(decidedAt)).True()

		got, err := repo.Risk().Get(ctx, org, risk.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.RiskStatusAccepted)

		_, err = repo.ApprovalWorkflow().GetPending(ctx, org, risk.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		// terminal workflows never change again
		_, err = repo.ApprovalWorkflow().Decide(ctx, org, model.NewDecision(wf.ID, types.WorkflowStatusRejected, "", decidedAt))
		gt.Error(t, err).Is(interfaces.ErrNotPending)
	})

	t.Run("Decide reject leaves risk status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		now := time.Now().UTC().Truncate(time.Millisecond)

		risk := newRisk(org, "owner-1", now)
		risk.Status = types.RiskStatusInProgress
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()
		wf, err := repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", now))
		gt.NoError(t, err).Required()

		_, err = repo.ApprovalWorkflow().Decide(ctx, org, model.NewDecision(wf.ID, types.WorkflowStatusRejected, "", now))
		gt.NoError(t, err).Required()

		got, err := repo.Risk().Get(ctx, org, risk.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.RiskStatusInProgress)

		// a new cycle may start after rejection
		_, err = repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", now.Add(time.Second)))
		gt.NoError(t, err)
	})

	t.Run("Decide in another organization is not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		now := time.Now().UTC()

		risk := newRisk(org, "owner-1", now)
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()
		wf, err := repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", now))
		gt.NoError(t, err).Required()

		_, err = repo.ApprovalWorkflow().Decide(ctx, uniqueOrg("other"), model.NewDecision(wf.ID, types.WorkflowStatusApproved, "", now))
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("ListByRisk is newest first and paginated", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		org := uniqueOrg("org")
		base := time.Now().UTC().Truncate(time.Millisecond)

		risk := newRisk(org, "owner-1", base)
		_, err := repo.Risk().Create(ctx, risk)
		gt.NoError(t, err).Required()

		var ids []types.WorkflowID
		for i := 0; i < 3; i++ {
			at := base.Add(time.Duration(i) * time.Minute)
			wf, err := repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", at))
			gt.NoError(t, err).Required()
			_, err = repo.ApprovalWorkflow().Decide(ctx, org, model.NewDecision(wf.ID, types.WorkflowStatusRejected, "", at))
			gt.NoError(t, err).Required()
			ids = append(ids, wf.ID)
		}

		page1, total, err := repo.ApprovalWorkflow().ListByRisk(ctx, org, risk.ID, model.PageRequest{Page: 1, PageSize: 2})
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(3)
		gt.A(t, page1).Length(2)
		gt.Value(t, page1[0].ID).Equal(ids[2])
		gt.Value(t, page1[1].ID).Equal(ids[1])

		page2, _, err := repo.ApprovalWorkflow().ListByRisk(ctx, org, risk.ID, model.PageRequest{Page: 2, PageSize: 2})
		gt.NoError(t, err).Required()
		gt.A(t, page2).Length(1)
		gt.Value(t, page2[0].ID).Equal(ids[0])

		empty, total, err := repo.ApprovalWorkflow().ListByRisk(ctx, org, types.NewRiskID(), model.PageRequest{})
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(0)
		gt.A(t, empty).Length(0)
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	repo, err := firestore.New(ctx, projectID, databaseID,
		firestore.WithCollectionPrefix(fmt.Sprintf("test_%d", time.Now().UnixNano())))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	repo, err := postgres.New(ctx, &postgres.PoolConfig{ConnString: url})
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Migrate(ctx)).Required()
	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreRepository(t *testing.T) {
	runRepositoryTest(t, newFirestoreRepository)
}

func TestPostgresRepository(t *testing.T) {
	runRepositoryTest(t, newPostgresRepository)
}
